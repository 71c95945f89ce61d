package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/quest/internal/platform/tui"
)

var (
	flagPlain bool
	flagLimit int
	flagClear bool
)

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Browse stored responses",
	Long: `Shows the responses kept in the local database, newest first.

In a terminal this opens an interactive table: Tab cycles between all,
pending and sent responses and the selected response's answers are shown
beside the table. Use --plain (or pipe the output) for a text listing.

Examples:
  quest responses
  quest responses --plain --limit 20
  quest responses --clear`,
	Args: cobra.NoArgs,
	Run:  runResponses,
}

func init() {
	responsesCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a text listing instead of the interactive table")
	responsesCmd.Flags().IntVar(&flagLimit, "limit", 50, "Number of responses to list with --plain")
	responsesCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every stored response")
}

func runResponses(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	ctx := context.Background()

	if flagClear {
		n, err := store.ClearResponses(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %d responses.\n", n)
		return
	}

	if !flagPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		if err := tui.RunResponses(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	entries, err := store.RecentResponses(ctx, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Responses: %d (%d sent, %d pending)\n", stats.Total, stats.Sent, stats.Pending)
	if stats.Total == 0 {
		fmt.Println()
		fmt.Println("No responses recorded yet.")
		fmt.Println("Run 'quest play' to take the survey.")
		return
	}
	fmt.Printf("Last: %s\n\n", stats.Last.Local().Format("2006-01-02 15:04"))

	fmt.Printf("  %-16s  %-12s  %-8s  %-5s  %s\n", "Date", "Variant", "Status", "Tries", "ID")
	fmt.Printf("  %-16s  %-12s  %-8s  %-5s  %s\n", "----", "-------", "------", "-----", "--")
	for _, e := range entries {
		fmt.Printf("  %-16s  %-12s  %-8s  %-5d  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Variant,
			e.Status,
			e.Attempts,
			e.ResponseID,
		)
	}
}
