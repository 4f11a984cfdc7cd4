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

// NewTranslateCmd constructs the `promoforge translate` command, which
// translates extracted fields for promos missing translations.
func NewTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate",
		Short: "Translate extracted fields for promos missing translations",
		Long: `Scan the collection for promos with extracted fields but no translations,
and translate the fields into Spanish, French, and Chinese. Languages are
handled independently: if one translation fails, the others are still
stored. Already-translated promos are skipped.

Examples:
  promoforge translate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			llm, err := completion.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("translate: failed to initialise model provider: %w", err)
			}
			enricher, err := enrich.NewService(llm)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}
			defer func() { _ = store.Close(ctx) }()

			summary, err := ingest.NewBatcher(store, log).TranslateMissing(ctx, enricher)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}

			log.Info("translate: complete",
				slog.Int("scanned", summary.Scanned),
				slog.Int("processed", summary.Processed),
				slog.Int("failed", summary.Failed),
			)
			return nil
		},
	}
}
