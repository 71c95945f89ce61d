package main

import (
	"fmt"
	"os"
	"os/user"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/quest/internal/core"
	"github.com/vovakirdan/quest/internal/platform/tui"
	"github.com/vovakirdan/quest/internal/registry"
	"github.com/vovakirdan/quest/internal/storage"
)

var flagSingleSubmit bool

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Take the survey",
	Long: `Start the survey in the terminal. Without a variant a picker is shown.

Controls:
  A/D, Left/Right  - Walk
  Space/W/Up       - Jump
  B                - Go back to the previous scale question
  P                - Pause
  R                - Start over (after finishing)
  Ctrl+S           - Save a screenshot
  Q/Ctrl+C         - Quit

Scale questions: bump the block you agree with (or land on it, or
click it, depending on the variant). Open questions: stand in the
centre of the stage until the prompt opens, type, press Enter.

Completed answers are posted to the endpoint when one is configured and
always kept in the local database.

Examples:
  quest play
  quest play quest_land
  quest play --questions ./team.yaml --endpoint https://example.com/collect`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagSingleSubmit, "single-submit", false, "Only let the current user complete the survey once")
}

func runPlay(cmd *cobra.Command, args []string) {
	mustLoadQuestions()

	cfg := core.DefaultConfig()
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		// Two rows stay free for the status line and key help.
		cfg.ScreenW = w
		cfg.ScreenH = max(h-2, 1)
	}

	gameID := "quest"
	switch {
	case len(args) == 1:
		gameID = args[0]
	case term.IsTerminal(int(os.Stdin.Fd())):
		result, err := tui.RunMenu(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if result.Quit {
			return
		}
		gameID = result.GameID
		cfg = result.Config
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'quest list' to see available variants.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	settings := loadSettings()
	logger, closeLog := fileLogger()
	defer closeLog()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open responses database: %v\n", err)
		// Continue without storage; answers can still be posted.
		store = nil
	}

	opts := tui.Options{
		Dispatcher:   newDispatcher(settings, store, logger),
		Respondent:   localRespondent(),
		Client:       fmt.Sprintf("quest (%s/%s; %s)", runtime.GOOS, runtime.GOARCH, os.Getenv("TERM")),
		SingleSubmit: flagSingleSubmit || settings.Submission.SingleSubmit,
		Logger:       logger,
	}
	logger.Info("survey started", "variant", gameID, "respondent", opts.Respondent)

	runErr := tui.Run(game, cfg, opts)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running survey: %v\n", runErr)
		os.Exit(1)
	}
}

// localRespondent names the person at this terminal.
func localRespondent() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
