package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmorrow/designdeck/internal/observability"
	"github.com/jmorrow/designdeck/internal/parsing"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a raw assistant response into a structured result",
	Long: `Run the extraction pipeline on a raw response read from a file or stdin
and print the typed result as JSON. The command exits non-zero when no
strategy produces a valid response, with the diagnostic on stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

var (
	parseRawEcho bool
	parseVerbose bool
)

func init() {
	parseCmd.Flags().BoolVar(&parseRawEcho, "raw", false, "Echo the raw response text instead of the parsed JSON")
	parseCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print a human-readable summary instead of JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	var (
		input []byte
		err   error
	)
	if len(args) > 0 {
		input, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	parser := parsing.NewParser(nil)
	result := parser.Parse(string(input))

	switch {
	case parseRawEcho:
		_, _ = fmt.Fprintln(os.Stdout, result.Raw)
	case parseVerbose:
		observability.NewPrinter(os.Stdout).PrintParseResult(&result)
	default:
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(jsonBytes))
	}

	if !result.OK {
		return fmt.Errorf("parse failed: %s", result.Error)
	}
	return nil
}
