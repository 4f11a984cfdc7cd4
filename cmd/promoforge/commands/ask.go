package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/answer"
	"github.com/promoforge/promoforge/internal/completion"
	"github.com/promoforge/promoforge/internal/logging"
	"github.com/promoforge/promoforge/internal/search"
)

// NewAskCmd constructs the `promoforge ask` command, which answers a natural
// language question using stored promos as retrieved context.
func NewAskCmd() *cobra.Command {
	var exact bool
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about stored promos",
		Long: `Ask a natural language question about the stored promotional offers.

The question is embedded, the closest promos are retrieved via vector
search, and the model answers using only the retrieved context.

Examples:
  promoforge ask "which promos offer free shipping?"
  promoforge ask --exact "is there a discount on summer items in New York?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			llm, err := completion.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer func() { _ = store.Close(ctx) }()

			searcher := search.NewService(store, vectorIndexName(), log)

			svc, err := answer.NewService(&answer.Config{
				LLM:      llm,
				Embedder: emb,
				Search:   searcher,
				Exact:    exact,
				Logger:   log,
			})
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			resp, err := svc.Ask(ctx, args[0])
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Println(resp.Answer)

			if showSources && len(resp.Sources) > 0 {
				fmt.Fprintln(os.Stderr, "\nSources:")
				for _, src := range resp.Sources {
					fmt.Fprintf(os.Stderr, "  %s  %s (score %.3f)\n", src.ID.Hex(), src.Fields.Headline(), src.Score)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "Use exact nearest-neighbour search instead of approximate")
	cmd.Flags().BoolVar(&showSources, "sources", false, "Print the retrieved promos used as context")

	return cmd
}
