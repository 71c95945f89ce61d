package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/quest/internal/core"
	"github.com/vovakirdan/quest/internal/registry"
	"github.com/vovakirdan/quest/internal/submission"
	"github.com/vovakirdan/quest/internal/survey"
)

const (
	footerLines     = 2
	dispatchTimeout = 15 * time.Second
	maxAnswerLen    = 1000
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

// Options configures how a model delivers results and identifies the respondent.
type Options struct {
	// Dispatcher receives completed questionnaires. Nil disables delivery.
	Dispatcher *submission.Dispatcher

	// Respondent identifies who is playing, for single-submit bookkeeping.
	Respondent string

	// Client describes the terminal and is sent with the answers.
	Client string

	// SingleSubmit shows the closing screen to respondents who already
	// completed the survey.
	SingleSubmit bool

	// ScreenshotDir is where ctrl+s writes screen dumps.
	ScreenshotDir string

	Logger *log.Logger
}

// dispatchedMsg reports the delivery of a completed questionnaire.
type dispatchedMsg struct {
	id      string
	outcome submission.Outcome
	err     error
}

// Model is the Bubble Tea model for running a survey game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	config     core.RuntimeConfig
	opts       Options
	keys       *KeyMapper
	help       help.Model
	input      textinput.Model
	inputFrame core.InputFrame
	gameState  core.GameState
	prompting  bool
	status     string
	statusErr  bool
	width      int
	quitting   bool
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = filepath.Join(os.Getenv("HOME"), ".quest", "screenshots")
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type your answer"
	ti.CharLimit = maxAnswerLen
	ti.Width = max(cfg.ScreenW-4, 10)

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:     cfg,
		opts:       opts,
		keys:       NewKeyMapper(),
		help:       help.New(),
		input:      ti,
		inputFrame: core.NewInputFrame(),
		width:      cfg.ScreenW,
	}
}

// Init starts the questionnaire and the tick loop.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)

	if m.opts.SingleSubmit && m.opts.Dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if m.opts.Dispatcher.AlreadyCompleted(ctx, m.opts.Respondent) {
			m.opts.Logger.Info("respondent already completed", "respondent", m.opts.Respondent)
			m.game.ShowAlreadyCompleted()
		}
	}

	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompting {
			return m.handlePromptKey(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if !m.prompting {
			m.keys.MapMouseToFrame(msg, &m.inputFrame)
		}
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()

	case dispatchedMsg:
		return m.handleDispatched(msg)
	}

	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes keyboard input while the stage is live.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handlePromptKey routes keys to the text prompt.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEnter:
		if err := m.game.SubmitText(m.input.Value()); err != nil {
			m.opts.Logger.Warn("text answer rejected", "error", err)
		}
		// Blank answers leave the prompt open.
		if _, open := m.game.Prompt(); open {
			m.setStatus("Please type an answer, or press esc to step away.", true)
			return m, nil
		}
		m.closePrompt()
		m.setStatus("", false)
		return m, nil

	case tea.KeyEsc:
		m.game.CancelPrompt()
		m.closePrompt()
		m.setStatus("", false)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.config.ScreenW = msg.Width
	m.config.ScreenH = max(msg.Height-footerLines, 1)
	m.screen.Resize(m.config.ScreenW, m.config.ScreenH)
	m.help.Width = msg.Width
	m.input.Width = max(msg.Width-4, 10)

	// Relaying out the stage restarts the questionnaire, so only do it
	// before the first answer and while no selection awaits its commit.
	m.gameState = m.game.State()
	if m.gameState.Answered == 0 && !m.gameState.Pending && !m.gameState.Complete && !m.prompting {
		m.game.Reset(m.config)
		m.gameState = m.game.State()
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	wasComplete := m.gameState.Complete
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()
	if wasComplete && !m.gameState.Complete {
		m.setStatus("", false)
	}

	cmds := []tea.Cmd{tickCmd(m.config.TickRate)}
	cmds = append(cmds, m.syncPrompt())

	if r, ok := m.game.TakeResult(); ok {
		m.setStatus("Sending your responses...", false)
		cmds = append(cmds, m.dispatchCmd(r))
	}

	return m, tea.Batch(cmds...)
}

// syncPrompt opens or closes the text input to follow the game.
func (m *Model) syncPrompt() tea.Cmd {
	_, open := m.game.Prompt()
	switch {
	case open && !m.prompting:
		m.prompting = true
		m.input.SetValue("")
		return m.input.Focus()
	case !open && m.prompting:
		m.closePrompt()
	}
	return nil
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.input.Blur()
	m.input.SetValue("")
}

// dispatchCmd delivers a completed questionnaire off the UI loop.
func (m Model) dispatchCmd(r survey.Result) tea.Cmd {
	p := submission.NewPayload(r, submission.Source{
		Respondent: m.opts.Respondent,
		Variant:    m.game.ID(),
		Client:     m.opts.Client,
		ScreenW:    m.config.ScreenW,
		ScreenH:    m.config.ScreenH,
	})

	d := m.opts.Dispatcher
	if d == nil {
		return func() tea.Msg {
			return dispatchedMsg{id: p.ID, outcome: submission.OutcomeFailed, err: submission.ErrNoEndpoint}
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		outcome, err := d.Dispatch(ctx, p)
		return dispatchedMsg{id: p.ID, outcome: outcome, err: err}
	}
}

func (m Model) handleDispatched(msg dispatchedMsg) (tea.Model, tea.Cmd) {
	switch msg.outcome {
	case submission.OutcomeSent:
		m.setStatus("Your responses were sent. Thank you!", false)
	case submission.OutcomeStoredLocally:
		if m.opts.Dispatcher != nil && m.opts.Dispatcher.HasEndpoint() {
			m.setStatus("Could not reach the server; responses saved and will be sent later.", false)
		} else {
			m.setStatus("Your responses were saved. Thank you!", false)
		}
	default:
		m.opts.Logger.Error("response lost", "id", msg.id, "error", msg.err)
		m.setStatus(fmt.Sprintf("Could not save your responses: %v", msg.err), true)
	}
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(m.opts.ScreenshotDir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)
	path := filepath.Join(m.opts.ScreenshotDir, filename)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

// footer renders the two lines below the stage.
func (m Model) footer() string {
	if m.prompting {
		line := promptStyle.Render("Your answer ") + m.input.View()
		hint := "enter: submit  esc: step away"
		if m.status != "" {
			hint = m.status
		}
		style := hintStyle
		if m.statusErr {
			style = errorStyle
		}
		return line + "\n" + style.Render(hint)
	}

	status := fmt.Sprintf("%d/%d answered", m.gameState.Answered, m.gameState.Total)
	if m.gameState.Paused {
		status += "  PAUSED"
	}
	if m.status != "" {
		status = m.status
	}
	style := statusStyle
	if m.statusErr {
		style = errorStyle
	}
	return style.Render(status) + "\n" + hintStyle.Render(m.help.View(m.keys.Keys()))
}

// Run starts the Bubble Tea program with the given model.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
