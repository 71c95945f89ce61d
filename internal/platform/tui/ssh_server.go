package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/quest/internal/core"
	"github.com/vovakirdan/quest/internal/registry"
	"github.com/vovakirdan/quest/internal/storage"
	"github.com/vovakirdan/quest/internal/submission"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.quest/host_key.
	HostKeyPath string

	// DBPath is the path to the responses database.
	DBPath string

	// Variant is the registered game every session plays.
	Variant string

	// Endpoint receives completed questionnaires. Empty keeps them local.
	Endpoint      string
	SubmitTimeout time.Duration

	// SingleSubmit lets each SSH user complete the survey once.
	SingleSubmit bool

	TickRate int

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:       ":23234",
		DBPath:        "~/.quest/responses.db",
		Variant:       "quest",
		SubmitTimeout: 5 * time.Second,
		TickRate:      60,
		IdleTimeout:   30 * time.Minute,
	}
}

// SSHServer serves the survey over SSH, one questionnaire per connection.
type SSHServer struct {
	config     SSHServerConfig
	server     *ssh.Server
	store      *storage.Store
	dispatcher *submission.Dispatcher
	sessions   *SessionRegistry
	logger     *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "quest-ssh",
	})

	if !registry.Exists(cfg.Variant) {
		return nil, fmt.Errorf("unknown variant %q", cfg.Variant)
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}

	dopts := []submission.DispatcherOption{submission.WithLogger(logger)}
	if cfg.Endpoint != "" {
		dopts = append(dopts, submission.WithSubmitter(submission.NewHTTPSubmitter(cfg.Endpoint, cfg.SubmitTimeout)))
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		// Continue without storage; answers can still be posted.
		logger.Warn("could not open responses database", "error", err)
	} else {
		dopts = append(dopts, submission.WithBacklog(store), submission.WithCompletionLog(store))
	}

	srv := &SSHServer{
		config:     cfg,
		store:      store,
		dispatcher: submission.NewDispatcher(dopts...),
		sessions:   NewSessionRegistry(),
		logger:     logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".quest", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.sessionMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a survey session for each SSH connection.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	game, err := registry.Create(s.config.Variant)
	if err != nil {
		s.logger.Error("cannot create game", "variant", s.config.Variant, "error", err)
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  max(pty.Window.Height-footerLines, 1),
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	model := NewModel(game, cfg, Options{
		Dispatcher:   s.dispatcher,
		Respondent:   sshSession.User(),
		Client:       fmt.Sprintf("quest-ssh (%s)", pty.Term),
		SingleSubmit: s.config.SingleSubmit,
		Logger:       s.logger.With("user", sshSession.User()),
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// sessionMiddleware tracks live sessions. With single-submit on, a user may
// only have one questionnaire open at a time.
func (s *SSHServer) sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		id := sshSession.Context().SessionID()
		user := sshSession.User()
		if !s.sessions.Register(id, user, s.config.SingleSubmit) {
			s.logger.Warn("refused second session", "user", user)
			wish.Fatalln(sshSession, "You already have the survey open in another session.")
			return
		}
		defer s.sessions.Unregister(id)

		s.logger.Debug("active sessions", "count", s.sessions.Count())
		next(sshSession)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server",
		"address", s.config.Address,
		"variant", s.config.Variant,
		"endpoint", s.dispatcher.HasEndpoint(),
	)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
