// Package tui is the terminal front end: a Bubble Tea model over one session
// manager.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/session"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	sidebarWidth  = 28
	maxRounds     = 99
)

// EventMsg carries a session event into the Bubble Tea loop
type EventMsg struct {
	Event session.Event
}

// Model represents the Bubble Tea model for the game
type Model struct {
	manager     *session.Manager
	logger      *log.Logger
	ctx         context.Context
	events      chan session.Event
	unsubscribe func()

	// UI components
	logViewport viewport.Model

	// Display state, updated from session events
	gameLog   []string
	state     session.State
	remaining int
	running   bool
	lastRound *session.Round
	summary   *session.Summary
	records   []history.Record
	completed int
	notice    string

	// Dimensions
	width    int
	height   int
	quitting bool
}

// NewModel creates a model over manager and subscribes to its events
func NewModel(ctx context.Context, manager *session.Manager, logger *log.Logger) *Model {
	vp := viewport.New(defaultWidth-sidebarWidth-4, defaultHeight-8)

	m := &Model{
		manager:     manager,
		logger:      logger.WithPrefix("tui"),
		ctx:         ctx,
		events:      make(chan session.Event, 256),
		logViewport: vp,
		gameLog:     []string{},
		state:       manager.State(),
		remaining:   manager.Remaining(),
		completed:   manager.CompletedSessions(),
		width:       defaultWidth,
		height:      defaultHeight,
	}
	m.unsubscribe = manager.Subscribe(session.ListenerFunc(func(e session.Event) {
		select {
		case m.events <- e:
		case <-ctx.Done():
		}
	}))

	records, err := manager.History(ctx)
	if err != nil {
		m.logger.Error("Failed to load history", "error", err)
		m.notice = "Could not load history: " + err.Error()
	}
	m.records = records
	return m
}

// Init opens the first session and starts listening for events
func (m *Model) Init() tea.Cmd {
	m.openSession()
	return m.listenForEvents()
}

// listenForEvents returns a command that waits for the next session event
func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-m.events:
			return EventMsg{Event: e}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// openSession arms the countdown of a timed session as soon as it is shown
func (m *Model) openSession() {
	if m.manager.Start() {
		m.logger.Debug("Timed session started")
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case EventMsg:
		m.applyEvent(msg.Event)
		cmds = append(cmds, m.listenForEvents())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.notice = ""

	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		m.unsubscribe()
		return tea.Quit
	case "1", "s":
		m.choose(game.Stone)
	case "2", "p":
		m.choose(game.Paper)
	case "3", "x":
		m.choose(game.Scissors)
	case "n":
		m.reset()
	case "m":
		mode := session.Timed
		if m.state.Mode == session.Timed {
			mode = session.Standard
		}
		m.reset(session.WithMode(mode))
	case "+", "=":
		if m.state.TotalRounds < maxRounds {
			m.reset(session.WithTotalRounds(m.state.TotalRounds + 1))
		}
	case "-", "_":
		if m.state.TotalRounds > 1 {
			m.reset(session.WithTotalRounds(m.state.TotalRounds - 1))
		}
	case "c":
		if err := m.manager.ClearHistory(m.ctx); err != nil {
			m.logger.Error("Failed to clear history", "error", err)
			m.notice = ErrorStyle.Render("Could not clear history: " + err.Error())
		}
	case "y":
		m.notice = SuccessStyle.Render(m.manager.ShareText())
	}
	return nil
}

func (m *Model) choose(c game.Choice) {
	_, ok, err := m.manager.SubmitChoice(m.ctx, c)
	switch {
	case err != nil:
		m.logger.Error("Failed to play round", "error", err)
		m.notice = ErrorStyle.Render(err.Error())
	case !ok:
		m.notice = WarningStyle.Render("Game over. Press n for a new game.")
	}
}

func (m *Model) reset(opts ...session.ResetOption) {
	if err := m.manager.Reset(opts...); err != nil {
		m.notice = ErrorStyle.Render(err.Error())
		return
	}
	m.openSession()
}

// applyEvent folds a session event into the display state
func (m *Model) applyEvent(event session.Event) {
	switch e := event.(type) {
	case session.RoundEvent:
		round := e.Round
		m.lastRound = &round
		m.state = e.State
		m.AddLogEntry(formatRound(round))

	case session.CountdownEvent:
		m.remaining = e.Remaining
		m.running = e.Remaining > 0

	case session.CompleteEvent:
		summary := e.Summary
		m.summary = &summary
		m.state = e.State
		m.completed = e.Completed
		m.running = false
		text := summary.Text
		switch {
		case e.Celebrate:
			text = SuccessStyle.Render(text + " 🎉")
		case e.Defeat:
			text = ErrorStyle.Render(text)
		default:
			text = WarningStyle.Render(text)
		}
		m.AddLogEntry(text)

	case session.ResetEvent:
		m.state = e.State
		m.remaining = e.Remaining
		m.running = false
		m.lastRound = nil
		m.summary = nil
		m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("New game: %d rounds, %s mode", e.State.TotalRounds, e.State.Mode)))

	case session.HistoryEvent:
		m.records = e.Records
	}
}

func formatRound(r session.Round) string {
	if r.TimedOut {
		return fmt.Sprintf("Round %d: %s %s", r.Number, CountdownStyle.Render(game.None.Label()), r.Outcome.RoundText())
	}
	return fmt.Sprintf("Round %d: %s vs %s, %s",
		r.Number,
		ChoiceStyle.Render(r.User.Label()),
		ChoiceStyle.Render(r.Computer.Label()),
		r.Outcome.RoundText())
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, LogStyle.Render(entry))
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := HeaderStyle.Render("Stone Paper Scissors")
	help := InfoStyle.Render("1/s stone  2/p paper  3/x scissors  n new  m mode  +/- rounds  c clear  y share  q quit")
	footer := help
	if m.notice != "" {
		footer = m.notice + "\n" + help
	}

	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer)-2, 3)

	sidebar := paneStyle.
		Width(sidebarWidth).
		Height(bodyHeight).
		Render(m.renderSidebar())

	logWidth := max(m.width-sidebarWidth-4, 10)
	m.logViewport.Width = logWidth
	m.logViewport.Height = bodyHeight
	logPane := activePaneStyle.
		Width(logWidth).
		Height(bodyHeight).
		Render(m.logViewport.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderSidebar shows scores, the countdown and the leaderboard
func (m *Model) renderSidebar() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Round %d/%d (%s)\n", m.state.RoundsPlayed, m.state.TotalRounds, m.state.Mode)
	b.WriteString(ScoreStyle.Render(fmt.Sprintf("User %d : %d Computer", m.state.UserWins, m.state.ComputerWins)))
	b.WriteString("\n")

	if m.state.Mode == session.Timed {
		style := WarningStyle
		if m.running {
			style = CountdownStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("Time: %d", m.remaining)))
		b.WriteString("\n")
	}

	if m.lastRound != nil {
		fmt.Fprintf(&b, "You: %s\nComputer: %s\n", m.lastRound.User.Label(), m.lastRound.Computer.Label())
		b.WriteString(m.lastRound.Outcome.RoundText())
		b.WriteString("\n")
	}
	if m.summary != nil {
		b.WriteString(SuccessStyle.Render(m.summary.Text))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nGames played: %d\n", m.completed)
	b.WriteString("\nLeaderboard\n")
	if len(m.records) == 0 {
		b.WriteString(InfoStyle.Render("(empty)"))
	} else {
		b.WriteString(history.Leaderboard(m.records))
	}
	return b.String()
}

// Run starts the terminal UI and blocks until the user quits or ctx is done
func Run(ctx context.Context, manager *session.Manager, logger *log.Logger) error {
	model := NewModel(ctx, manager, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
