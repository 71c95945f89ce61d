package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/quest/internal/platform/tui"
)

var (
	flagSSHAddr      string
	flagHostKey      string
	flagIdleTimeout  int
	flagServeVariant string
	flagServeSingle  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the survey SSH server",
	Long: `Start an SSH server where every connection takes the survey.

Each SSH connection gets its own questionnaire. The SSH user name
identifies the respondent for --single-submit; it is never posted to
the endpoint. Responses are stored in the server's database and posted
to the endpoint when one is configured.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.quest/host_key

Examples:
  quest serve                              # Listen on :23234 with auto-generated key
  quest serve --ssh :2222                  # Listen on port 2222
  quest serve --variant quest_land         # Use the landing variant
  quest serve --single-submit --endpoint https://example.com/collect

Respondents connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeVariant, "variant", "quest", "Survey variant every session plays")
	serveCmd.Flags().BoolVar(&flagServeSingle, "single-submit", false, "Let each SSH user complete the survey once")
}

func runServe(_ *cobra.Command, _ []string) {
	mustLoadQuestions()
	settings := loadSettings()

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.Variant = flagServeVariant
	cfg.Endpoint = settings.Submission.Endpoint
	cfg.SubmitTimeout = settings.Submission.Timeout()
	cfg.SingleSubmit = flagServeSingle || settings.Submission.SingleSubmit
	cfg.TickRate = flagFPS
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting survey SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
