package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/completion"
	"github.com/promoforge/promoforge/internal/enrich"
	"github.com/promoforge/promoforge/internal/logging"
	"github.com/promoforge/promoforge/internal/pipeline"
	"github.com/promoforge/promoforge/internal/search"
)

// NewProcessCmd constructs the `promoforge process` command, which runs the
// full pipeline against a single promo text and prints the enriched result.
func NewProcessCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "process [promo text]",
		Short: "Process one promo text through the full pipeline",
		Long: `Run a single promo text through the full pipeline: field extraction,
template generation, translation, embedding, storage, and similar-promo
lookup. The enriched result is printed as JSON.

Examples:
  promoforge process "Get 20% off all summer items. Valid until June 30."
  promoforge process --file promo.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			var promoText string
			switch {
			case file != "":
				content, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("process: read %s: %w", file, err)
				}
				promoText = strings.TrimSpace(string(content))
			case len(args) == 1:
				promoText = strings.TrimSpace(args[0])
			default:
				return fmt.Errorf("process: promo text argument or --file is required")
			}
			if promoText == "" {
				return fmt.Errorf("process: promo text is empty")
			}

			llm, err := completion.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("process: failed to initialise model provider: %w", err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("process: %w", err)
			}

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("process: %w", err)
			}
			defer func() { _ = store.Close(ctx) }()

			enricher, err := enrich.NewService(llm)
			if err != nil {
				return fmt.Errorf("process: %w", err)
			}
			searcher := search.NewService(store, vectorIndexName(), log)

			pipe, err := pipeline.New(&pipeline.Config{
				Extractor:  enricher,
				Templater:  enricher,
				Translator: enricher,
				Embedder:   emb,
				Store:      store,
				Search:     searcher,
				Logger:     log,
			})
			if err != nil {
				return fmt.Errorf("process: failed to create pipeline: %w", err)
			}

			result, err := pipe.Process(ctx, promoText)
			if err != nil {
				return fmt.Errorf("process: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read promo text from a file instead of the argument")

	return cmd
}
