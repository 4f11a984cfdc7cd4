package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/embedder"
	"github.com/promoforge/promoforge/internal/logging"
)

// NewIndexCmd constructs the `promoforge index` command, which creates the
// Atlas vector search index used for retrieval.
func NewIndexCmd() *cobra.Command {
	var dimensions int

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Create the Atlas vector search index",
		Long: `Create the MongoDB Atlas vector search index over the embedding field.

The index name defaults to "vector_index" (override with
MONGODB_VECTOR_INDEX) and its dimensions default to the configured
embedding backend's output size. Atlas builds the index asynchronously;
retrieval starts working once the build completes.

Examples:
  promoforge index
  promoforge index --dimensions 1024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if dimensions == 0 {
				dimensions = embedder.DefaultDimensions(embedder.ResolveBackend())
			}

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			defer func() { _ = store.Close(ctx) }()

			name := vectorIndexName()
			if err := store.EnsureVectorIndex(ctx, name, "embedding", dimensions); err != nil {
				return fmt.Errorf("index: %w", err)
			}

			log.Info("index: creation requested",
				slog.String("name", name),
				slog.Int("dimensions", dimensions),
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&dimensions, "dimensions", "d", 0, "Vector dimensions (default: embedding backend's output size)")

	return cmd
}
