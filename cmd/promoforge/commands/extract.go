package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/completion"
	"github.com/promoforge/promoforge/internal/enrich"
	"github.com/promoforge/promoforge/internal/ingest"
	"github.com/promoforge/promoforge/internal/logging"
)

// NewExtractCmd constructs the `promoforge extract` command, which extracts
// structured fields for every stored promo that does not have them yet.
func NewExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract structured fields for promos missing them",
		Long: `Scan the collection for promos that have raw text but no extracted
headline, and run field extraction on each. Already-extracted promos are
skipped, so the command is safe to re-run after partial failures.

Examples:
  promoforge extract
  MODEL_PROVIDER=ollama promoforge extract`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			llm, err := completion.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("extract: failed to initialise model provider: %w", err)
			}
			enricher, err := enrich.NewService(llm)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			defer func() { _ = store.Close(ctx) }()

			summary, err := ingest.NewBatcher(store, log).ExtractMissing(ctx, enricher)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}

			log.Info("extract: complete",
				slog.Int("scanned", summary.Scanned),
				slog.Int("processed", summary.Processed),
				slog.Int("failed", summary.Failed),
			)
			return nil
		},
	}
}
