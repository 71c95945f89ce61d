package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/quest/internal/submission"
)

var flagOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored responses as JSON",
	Long: `Writes every stored response, oldest first, as a JSON array of the
payloads that are (or would be) posted to the endpoint.

Examples:
  quest export > responses.json
  quest export --out responses.json`,
	Args: cobra.NoArgs,
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file (default: stdout)")
}

func runExport(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	payloads, err := store.AllPayloads(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if flagOut != "" {
		f, err := os.Create(flagOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := writePayloads(w, payloads); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagOut != "" {
		fmt.Fprintf(os.Stderr, "Exported %d responses to %s\n", len(payloads), flagOut)
	}
}

// writePayloads writes payloads as an indented JSON array; an empty store
// produces [].
func writePayloads(w io.Writer, payloads []submission.Payload) error {
	if payloads == nil {
		payloads = []submission.Payload{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payloads); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
