// Package main provides the entry point for the DesignDeck artifact engine.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "designdeck",
	Short: "DesignDeck artifact lifecycle engine",
	Long:  "DesignDeck parses structured assistant responses into design-phase artifacts, reconciles them into versioned project state, and serves approvals and streaming previews over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
