package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/quest/internal/core"
	"github.com/vovakirdan/quest/internal/storage"
	"github.com/vovakirdan/quest/internal/submission"
)

// Browser layout constants
const (
	minWidthForDetail = 100 // Minimum width to show the answers pane
	detailWidth       = 44  // Width of the answers pane
	maxResponses      = 200 // Max responses to load
)

// ResponseSource lists stored responses, newest first.
type ResponseSource interface {
	RecentResponses(ctx context.Context, limit int) ([]storage.ResponseEntry, error)
}

// statusFilter narrows the browser to one delivery status.
type statusFilter int

const (
	filterAll statusFilter = iota
	filterPending
	filterSent
)

func (f statusFilter) String() string {
	switch f {
	case filterPending:
		return "pending"
	case filterSent:
		return "sent"
	default:
		return "all"
	}
}

func (f statusFilter) match(s submission.Status) bool {
	switch f {
	case filterPending:
		return s == submission.StatusPending
	case filterSent:
		return s == submission.StatusSent
	default:
		return true
	}
}

// ResponsesKeyMap defines the key bindings for the response browser.
type ResponsesKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Filter key.Binding
	Reload key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ResponsesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.Reload, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ResponsesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Filter, k.Reload, k.Quit},
	}
}

// DefaultResponsesKeyMap returns default key bindings.
func DefaultResponsesKeyMap() ResponsesKeyMap {
	return ResponsesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Filter: key.NewBinding(
			key.WithKeys("tab", "f"),
			key.WithHelp("tab", "filter"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ResponsesModel is the Bubble Tea model for browsing stored responses.
type ResponsesModel struct {
	source     ResponseSource
	all        []storage.ResponseEntry
	shown      []storage.ResponseEntry
	filter     statusFilter
	loadErr    error
	table      table.Model
	help       help.Model
	keys       ResponsesKeyMap
	width      int
	height     int
	showDetail bool
	quitting   bool
}

// NewResponsesModel creates a new response browser.
func NewResponsesModel(source ResponseSource, width, height int) ResponsesModel {
	h := help.New()
	h.ShowAll = false

	m := ResponsesModel{
		source:     source,
		keys:       DefaultResponsesKeyMap(),
		help:       h,
		width:      width,
		height:     height,
		showDetail: width >= minWidthForDetail,
	}
	m.table = m.createTable()
	m.load()

	return m
}

// createTable creates a new table sized for the current window.
func (m *ResponsesModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "When", Width: 14},
		{Title: "Variant", Width: 12},
		{Title: "Status", Width: 8},
		{Title: "Tries", Width: 5},
		{Title: "Respondent", Width: 12},
	}

	tableWidth := m.width - 4
	if m.showDetail {
		tableWidth -= detailWidth + 3
	}
	if rest := tableWidth - 14 - 12 - 8 - 5 - 10; rest > columns[4].Width {
		columns[4].Width = min(rest, 24)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads responses from the source.
func (m *ResponsesModel) load() {
	m.all = nil
	m.loadErr = nil
	if m.source != nil {
		m.all, m.loadErr = m.source.RecentResponses(context.Background(), maxResponses)
	}
	m.applyFilter()
}

// applyFilter rebuilds the table rows for the current filter.
func (m *ResponsesModel) applyFilter() {
	m.shown = m.shown[:0]
	for _, e := range m.all {
		if m.filter.match(e.Status) {
			m.shown = append(m.shown, e)
		}
	}

	rows := make([]table.Row, len(m.shown))
	for i, e := range m.shown {
		who := e.Respondent
		if who == "" {
			who = "-"
		}
		rows[i] = table.Row{
			e.CreatedAt.Local().Format("Jan 02 15:04"),
			e.Variant,
			string(e.Status),
			fmt.Sprintf("%d", e.Attempts),
			who,
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Selected returns the highlighted response.
func (m ResponsesModel) Selected() (storage.ResponseEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.shown) {
		return storage.ResponseEntry{}, false
	}
	return m.shown[i], true
}

// Init initializes the browser.
func (m ResponsesModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m ResponsesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Filter):
			m.filter = (m.filter + 1) % 3
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showDetail = m.width >= minWidthForDetail
		m.table = m.createTable()
		m.applyFilter()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the browser.
func (m ResponsesModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := fmt.Sprintf("RESPONSES - %s (%d)", m.filter, len(m.shown))
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	tableBox := boxStyle.Render(m.renderTableContent())
	if m.showDetail {
		detail := boxStyle.Width(detailWidth).Render(m.renderDetail())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tableBox, "  ", detail))
	} else {
		b.WriteString(tableBox)
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m ResponsesModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	if m.loadErr != nil {
		return emptyStyle.Render("Could not load responses:\n" + m.loadErr.Error())
	}
	if len(m.shown) == 0 {
		return emptyStyle.Render("No responses recorded yet.\nPlay the survey to add one!")
	}
	return m.table.View()
}

// renderDetail lists the questions and answers of the selected response.
func (m ResponsesModel) renderDetail() string {
	e, ok := m.Selected()
	if !ok {
		return "Answers"
	}

	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	answerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

	var b strings.Builder
	b.WriteString("Answers\n")
	b.WriteString(strings.Repeat("-", detailWidth-4))
	b.WriteString("\n")

	p := e.Payload
	section := ""
	for i, a := range p.Answers {
		if i < len(p.Questions) {
			q := p.Questions[i]
			if q.Section != "" && q.Section != section {
				section = q.Section
				b.WriteString(sectionStyle.Render(section))
				b.WriteString("\n")
			}
			for _, line := range core.WrapText(q.Text, detailWidth-4) {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString(answerStyle.Render("  " + a.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// RunResponses runs the response browser.
func RunResponses(source ResponseSource, width, height int) error {
	model := NewResponsesModel(source, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
