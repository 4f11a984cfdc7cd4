// Command promoforge is the entry point for the promo processing service.
// It provides a CLI interface (via Cobra) for the ingestion and enrichment
// pipeline, plus an HTTP server with a web UI for submitting promos.
package main

import (
	"fmt"
	"os"

	"github.com/promoforge/promoforge/cmd/promoforge/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
