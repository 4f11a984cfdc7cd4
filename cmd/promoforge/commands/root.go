// Package commands defines all Cobra CLI commands for the promoforge binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/promoforge/promoforge/internal/audit"
	"github.com/promoforge/promoforge/internal/config"
	"github.com/promoforge/promoforge/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "promoforge",
		Short: "PromoForge — LLM-powered promo processing and retrieval",
		Long: `PromoForge turns raw legal promo text into structured, translated,
retrieval-ready marketing records.

It extracts structured fields from promo copy, generates Handlebars banner
templates, translates fields into Spanish, French, and Chinese, embeds the
text for vector search, and stores everything in MongoDB Atlas. A question-
answering command retrieves stored promos as context for grounded answers.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.promoforge/config.yaml).
See 'promoforge --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.promoforge/config.yaml)")

	root.AddCommand(
		NewProcessCmd(),
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewExtractCmd(),
		NewTemplatesCmd(),
		NewTranslateCmd(),
		NewEmbedCmd(),
		NewIndexCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
