package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/ingest"
	"github.com/promoforge/promoforge/internal/logging"
)

// NewIngestCmd constructs the `promoforge ingest` command, which loads raw
// promo texts from a file into MongoDB for batch enrichment.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Load raw promo texts from a file into MongoDB",
		Long: `Load raw promo texts into the MongoDB collection.

The input file holds one promo per paragraph: promos are separated by blank
lines, and surrounding whitespace is trimmed. Each promo is stored as a bare
record carrying only the raw text; the batch enrichment commands (extract,
templates, translate, embed) fill in the rest.

Required environment variables:
  MONGODB_URI          MongoDB Atlas connection string
  MONGODB_DATABASE     Database name (default: promoforge)
  MONGODB_COLLECTION   Collection name (default: promos)

Examples:
  promoforge ingest promos.txt
  MONGODB_DATABASE=staging promoforge ingest promos.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("ingest: read %s: %w", args[0], err)
			}

			texts := ingest.SplitPromos(string(content))
			if len(texts) == 0 {
				return fmt.Errorf("ingest: no promo texts found in %s", args[0])
			}
			log.Info("ingest: promos parsed", slog.Int("count", len(texts)))

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer func() { _ = store.Close(ctx) }()

			result, err := store.InsertTexts(ctx, texts)
			if result != nil {
				log.Info("ingest: complete",
					slog.Int("inserted", result.InsertedCount),
					slog.Int("failed", result.FailedCount),
				)
			}
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			return nil
		},
	}

	return cmd
}
