package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/ingest"
	"github.com/promoforge/promoforge/internal/logging"
)

// NewEmbedCmd constructs the `promoforge embed` command, which computes
// embeddings for promos missing them.
func NewEmbedCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Compute embeddings for promos missing them",
		Long: `Scan the collection for promos with extracted fields but no embedding,
and embed the composite of headline, description, and promo type. Records
are embedded concurrently with a bounded worker pool. Already-embedded
promos are skipped.

Required environment variables:
  EMBEDDING_PROVIDER   Embedding backend: openai, voyage, ollama (default: openai)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  promoforge embed
  promoforge embed --concurrency 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("embed: %w", err)
			}

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("embed: %w", err)
			}
			defer func() { _ = store.Close(ctx) }()

			summary, err := ingest.NewBatcher(store, log).EmbedMissing(ctx, emb, concurrency)
			if err != nil {
				return fmt.Errorf("embed: %w", err)
			}

			log.Info("embed: complete",
				slog.Int("scanned", summary.Scanned),
				slog.Int("processed", summary.Processed),
				slog.Int("failed", summary.Failed),
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", ingest.DefaultEmbedConcurrency, "Number of concurrent embedding requests")

	return cmd
}
