package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/session"
	"github.com/lox/stonepaper/internal/store"
)

func init() {
	SetColor(false)
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests
}

func newTestModel(t *testing.T, cfg session.Config, computer ...game.Choice) (*Model, *session.Manager, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	repo := history.NewStoreRepository(store.NewMemoryStore(), "", testLogger())
	manager, err := session.NewManager(repo, testLogger(),
		session.WithConfig(cfg),
		session.WithClock(clock),
		session.WithChooser(game.NewScriptedChooser(computer...)),
	)
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := NewModel(ctx, manager, testLogger())
	m.Init()
	pump(m)
	return m, manager, clock
}

// pump applies every queued session event, as the program loop would
func pump(m *Model) {
	for {
		select {
		case e := <-m.events:
			m.Update(EventMsg{Event: e})
		default:
			return
		}
	}
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	pump(m)
	return cmd
}

func standard(rounds int) session.Config {
	cfg := session.DefaultConfig()
	cfg.TotalRounds = rounds
	return cfg
}

func TestPlayRoundsWithKeys(t *testing.T) {
	t.Parallel()

	m, manager, _ := newTestModel(t, standard(3), game.Scissors, game.Stone, game.Paper)

	press(m, "1")
	require.NotNil(t, m.lastRound)
	assert.Equal(t, game.Stone, m.lastRound.User)
	assert.Equal(t, game.UserWin, m.lastRound.Outcome)
	assert.Contains(t, m.View(), "User wins!")

	press(m, "s")
	press(m, "1")

	assert.Equal(t, 3, m.state.RoundsPlayed)
	require.NotNil(t, m.summary)
	assert.Equal(t, "It's a tie!", m.summary.Text)
	assert.Equal(t, 1, m.completed)
	assert.Equal(t, []history.Record{{UserWins: 1, ComputerWins: 1}}, m.records)
	assert.Contains(t, m.View(), "User: 1, Computer: 1")
	assert.Equal(t, manager.State(), m.state)

	// Game over: further choices only show a notice
	press(m, "2")
	assert.Equal(t, 3, manager.State().RoundsPlayed)
	assert.Contains(t, m.notice, "Game over")
}

func TestChoiceKeys(t *testing.T) {
	t.Parallel()

	for key, want := range map[string]game.Choice{
		"1": game.Stone, "s": game.Stone,
		"2": game.Paper, "p": game.Paper,
		"3": game.Scissors, "x": game.Scissors,
	} {
		m, _, _ := newTestModel(t, standard(3), game.Stone)
		press(m, key)
		require.NotNil(t, m.lastRound, key)
		assert.Equal(t, want, m.lastRound.User, key)
	}
}

func TestSettingsKeys(t *testing.T) {
	t.Parallel()

	m, manager, _ := newTestModel(t, standard(3), game.Scissors)

	press(m, "1")
	press(m, "+")
	assert.Equal(t, 4, manager.State().TotalRounds)
	assert.Equal(t, 0, m.state.RoundsPlayed)
	assert.Nil(t, m.lastRound)

	press(m, "-")
	press(m, "-")
	press(m, "-")
	press(m, "-")
	assert.Equal(t, 1, manager.State().TotalRounds, "rounds never drop below one")

	press(m, "m")
	assert.Equal(t, session.Timed, manager.State().Mode)
	assert.True(t, manager.CountdownRunning(), "timed sessions start counting when shown")
	assert.Contains(t, m.View(), "Time: 10")

	press(m, "m")
	assert.Equal(t, session.Standard, manager.State().Mode)
	assert.False(t, manager.CountdownRunning())

	press(m, "1")
	press(m, "n")
	assert.Equal(t, 0, m.state.RoundsPlayed)
	assert.Equal(t, 1, m.completed)
}

func TestTimedCountdown(t *testing.T) {
	t.Parallel()

	cfg := standard(1)
	cfg.Mode = session.Timed
	m, manager, clock := newTestModel(t, cfg, game.Stone)

	require.True(t, manager.CountdownRunning())
	assert.Equal(t, 10, m.remaining)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second).MustWait(ctx)
	}
	pump(m)
	assert.Equal(t, 7, m.remaining)
	assert.Contains(t, m.View(), "Time: 7")

	for i := 0; i < 7; i++ {
		clock.Advance(time.Second).MustWait(ctx)
	}
	pump(m)

	require.NotNil(t, m.lastRound)
	assert.True(t, m.lastRound.TimedOut)
	assert.Equal(t, "It's a tie!", m.summary.Text)
	assert.Contains(t, m.View(), "Time Up!")
	assert.False(t, m.running)
}

func TestHistoryAndShareKeys(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestModel(t, standard(1), game.Scissors)

	press(m, "1")
	require.Len(t, m.records, 1)

	press(m, "y")
	assert.Contains(t, m.notice, "I won 1 times and lost 0 times!")

	press(m, "c")
	assert.Empty(t, m.records)
	assert.Contains(t, m.View(), "(empty)")
}

func TestQuit(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"q", "esc"} {
		m, _, _ := newTestModel(t, standard(3))
		cmd := press(m, key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, m.quitting)
		assert.Empty(t, m.View())
	}
}

func TestWindowResize(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestModel(t, standard(3))
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	view := m.View()
	assert.Contains(t, view, "Stone Paper Scissors")
	assert.Contains(t, view, "Round 0/3 (standard)")
}
