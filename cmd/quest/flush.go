package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/quest/internal/submission"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Retry responses that could not be sent",
	Long: `Posts every pending response in the local database to the endpoint
and marks the ones that were accepted as sent.

The endpoint comes from --endpoint, QUEST_ENDPOINT or survey.yaml.

Examples:
  quest flush --endpoint https://example.com/collect`,
	Args: cobra.NoArgs,
	Run:  runFlush,
}

func runFlush(_ *cobra.Command, _ []string) {
	settings := loadSettings()
	store := openStore()
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := newDispatcher(settings, store, stderrLogger())
	report, err := d.Flush(ctx)
	if errors.Is(err, submission.ErrNoEndpoint) {
		fmt.Fprintln(os.Stderr, "Error: no endpoint configured; use --endpoint or QUEST_ENDPOINT")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sent %d, still pending %d\n", report.Sent, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
