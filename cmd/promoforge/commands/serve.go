package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/completion"
	"github.com/promoforge/promoforge/internal/enrich"
	"github.com/promoforge/promoforge/internal/history"
	"github.com/promoforge/promoforge/internal/logging"
	"github.com/promoforge/promoforge/internal/pipeline"
	"github.com/promoforge/promoforge/internal/search"
	"github.com/promoforge/promoforge/internal/server"
	"github.com/promoforge/promoforge/internal/tracing"
)

// NewServeCmd constructs the `promoforge serve` command, which starts the
// HTTP server and serves the promo submission web UI.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the PromoForge HTTP server and web UI",
		Long: `Start the PromoForge HTTP server on localhost.

The server exposes a REST API and serves the web UI for submitting promo
text. Each submission runs the full pipeline: field extraction, template
generation, translation, embedding, storage, and similar-promo lookup.

Examples:
  promoforge serve
  promoforge serve --port 9090
  MODEL_PROVIDER=anthropic promoforge serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Flags win over env; env (including values applied from the
			// YAML config) wins over built-in defaults.
			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("PROMOFORGE_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("PROMOFORGE_PORT", port)
			}

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush := tracing.Setup()
			defer flush()
			if handler != nil {
				callbacks.AppendGlobalHandlers(handler)
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			llm, err := completion.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			store, err := connectStore(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = store.Close(cmd.Context()) }()

			enricher, err := enrich.NewService(llm)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
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
				return fmt.Errorf("serve: failed to create pipeline: %w", err)
			}

			// Open run history store. PROMOFORGE_HISTORY_DB overrides the
			// default path (~/.promoforge/history.db). Set to "disabled" to
			// turn history off.
			var runs *history.SQLiteStore
			dbPath := os.Getenv("PROMOFORGE_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = history.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					hs, hsErr := history.Open(dbPath)
					if hsErr != nil {
						log.Warn("history: failed to open store, disabling", slog.Any("error", hsErr))
					} else {
						runs = hs
						defer func() { _ = hs.Close() }()
						log.Info("history: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via PROMOFORGE_HISTORY_DB=disabled")
			}

			cfg := &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: []server.Pinger{server.NewMongoPinger(store)},
				APIKey:  os.Getenv("PROMOFORGE_API_KEY"),
			}
			if runs != nil {
				cfg.Runs = runs
			}

			srv, err := server.New(pipe, cfg)
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
