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

// NewTemplatesCmd constructs the `promoforge templates` command, which
// generates Handlebars banner templates for promos missing them.
func NewTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "Generate banner templates for promos missing them",
		Long: `Scan the collection for promos with extracted fields but no Handlebars
banner template, and generate one for each. Already-templated promos are
skipped, so the command is safe to re-run after partial failures.

Examples:
  promoforge templates`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			llm, err := completion.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("templates: failed to initialise model provider: %w", err)
			}
			enricher, err := enrich.NewService(llm)
			if err != nil {
				return fmt.Errorf("templates: %w", err)
			}

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("templates: %w", err)
			}
			defer func() { _ = store.Close(ctx) }()

			summary, err := ingest.NewBatcher(store, log).TemplatesMissing(ctx, enricher)
			if err != nil {
				return fmt.Errorf("templates: %w", err)
			}

			log.Info("templates: complete",
				slog.Int("scanned", summary.Scanned),
				slog.Int("processed", summary.Processed),
				slog.Int("failed", summary.Failed),
			)
			return nil
		},
	}
}
