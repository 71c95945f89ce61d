// quest is a platformer survey for the terminal: respondents answer a
// questionnaire by bumping numbered blocks and typing into a prompt.
//
// Usage:
//
//	quest list                - List survey variants
//	quest play [variant]      - Take the survey
//	quest questions           - Print the questionnaire
//	quest responses           - Browse stored responses
//	quest export              - Write stored responses as JSON
//	quest flush               - Retry responses that could not be sent
//	quest serve               - Start SSH server for remote respondents
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible animation
//	--db <path>         - Set database path (default: ~/.quest/responses.db)
//	--config <path>     - Custom survey.yaml
//	--questions <path>  - Custom questions.yaml
//	--endpoint <url>    - Collection endpoint for completed surveys
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/quest/internal/config"
	"github.com/vovakirdan/quest/internal/games/quest"
	"github.com/vovakirdan/quest/internal/storage"
	"github.com/vovakirdan/quest/internal/submission"
)

var (
	// Global flags
	flagFPS       int
	flagSeed      int64
	flagDBPath    string
	flagConfig    string
	flagQuestions string
	flagEndpoint  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quest",
	Short: "Survey Quest - answer a questionnaire by playing a platformer",
	Long: `Survey Quest turns a questionnaire into a small platform game.
Scale questions are answered by bumping the numbered block you agree
with; open questions by walking into the centre of the stage and typing.

Available commands:
  list       - Show survey variants
  play       - Take the survey
  questions  - Print the questionnaire
  responses  - Browse stored responses
  export     - Write stored responses as JSON
  flush      - Retry responses that could not be sent
  serve      - Start SSH server for remote respondents

Examples:
  quest play
  quest play quest_click --questions ./team.yaml
  quest play --endpoint https://example.com/collect
  quest serve --ssh :2222
  quest export > responses.json`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		quest.SetConfigPath(flagConfig)
		quest.SetQuestionsPath(flagQuestions)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.quest/responses.db", "Path to responses database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom survey.yaml")
	rootCmd.PersistentFlags().StringVar(&flagQuestions, "questions", "", "Path to custom questions.yaml")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "Collection endpoint (overrides config and QUEST_ENDPOINT)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(responsesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadSettings reads survey.yaml, then the environment, then --endpoint.
func loadSettings() config.SurveyConfig {
	cfg, err := config.LoadSurvey(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		cfg = config.DefaultSurveyConfig()
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if flagEndpoint != "" {
		cfg.Submission.Endpoint = flagEndpoint
	}
	return cfg
}

// mustLoadQuestions exits when --questions names a file that cannot be used.
func mustLoadQuestions() {
	if err := quest.CheckQuestions(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newDispatcher wires the endpoint and the local store together.
func newDispatcher(cfg config.SurveyConfig, store *storage.Store, logger *log.Logger) *submission.Dispatcher {
	opts := []submission.DispatcherOption{submission.WithLogger(logger)}
	if cfg.Submission.Endpoint != "" {
		opts = append(opts, submission.WithSubmitter(
			submission.NewHTTPSubmitter(cfg.Submission.Endpoint, cfg.Submission.Timeout()),
		))
	}
	if store != nil {
		opts = append(opts, submission.WithBacklog(store), submission.WithCompletionLog(store))
	}
	return submission.NewDispatcher(opts...)
}

// fileLogger logs to ~/.quest/quest.log so the TUI keeps the terminal.
// The returned close func is safe to call when no file was opened.
func fileLogger() (*log.Logger, func()) {
	home, err := os.UserHomeDir()
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	dir := filepath.Join(home, ".quest")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "quest.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(io.Discard), func() {}
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "quest",
	})
	return logger, func() { f.Close() }
}

// stderrLogger logs command progress for non-interactive commands.
func stderrLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "quest",
	})
}

// openStore opens the responses database or exits.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening responses database: %v\n", err)
		os.Exit(1)
	}
	return store
}
