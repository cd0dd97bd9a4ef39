package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/randutil"
)

// ErrInvalidRounds is returned when a session is configured with fewer than one round
var ErrInvalidRounds = errors.New("total rounds must be positive")

// Config holds the settings a session starts with
type Config struct {
	TotalRounds    int
	Mode           Mode
	CountdownTicks int
	TickInterval   time.Duration
}

// DefaultConfig returns three standard rounds and a ten second countdown
func DefaultConfig() Config {
	return Config{
		TotalRounds:    3,
		Mode:           Standard,
		CountdownTicks: 10,
		TickInterval:   time.Second,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.TotalRounds < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRounds, c.TotalRounds)
	}
	if c.Mode != Standard && c.Mode != Timed {
		return fmt.Errorf("invalid mode: %d", int(c.Mode))
	}
	if c.CountdownTicks < 1 {
		return fmt.Errorf("countdown ticks must be positive: %d", c.CountdownTicks)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive: %s", c.TickInterval)
	}
	return nil
}

// Option configures a Manager
type Option func(*Manager)

// WithConfig sets the initial session configuration
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithClock sets the clock that drives the countdown
func WithClock(clock quartz.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithChooser sets the source of the computer's choices
func WithChooser(chooser game.Chooser) Option {
	return func(m *Manager) {
		m.chooser = chooser
	}
}

// WithContext sets the context used for history writes triggered by the
// countdown, which has no caller context of its own
func WithContext(ctx context.Context) Option {
	return func(m *Manager) {
		m.ctx = ctx
	}
}

// Manager owns one player's session: the scores, the countdown and the
// finished-session history. All operations are serialised, so the manager
// behaves like a single event loop fed by UI input and countdown ticks.
type Manager struct {
	mu        sync.Mutex
	cfg       Config
	state     State
	completed int // lifetime finished sessions, not persisted

	countdown *countdown
	armed     bool // a countdown has been armed this session
	remaining int

	chooser game.Chooser
	repo    history.Repository
	clock   quartz.Clock
	ctx     context.Context
	logger  *log.Logger

	bus      *Bus
	pending  []Event
	flushing bool
}

// NewManager creates a manager with a fresh session
func NewManager(repo history.Repository, logger *log.Logger, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:    DefaultConfig(),
		repo:   repo,
		ctx:    context.Background(),
		logger: logger.WithPrefix("session"),
		bus:    NewBus(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}
	if m.clock == nil {
		m.clock = quartz.NewReal()
	}
	if m.chooser == nil {
		seed, _ := randutil.Seed(nil)
		m.chooser = game.NewRandomChooser(randutil.New(seed))
	}

	m.state = State{TotalRounds: m.cfg.TotalRounds, Mode: m.cfg.Mode}
	m.remaining = m.cfg.CountdownTicks
	return m, nil
}

// Subscribe registers a listener for session events. The returned function
// unsubscribes it.
func (m *Manager) Subscribe(l Listener) func() {
	return m.bus.Subscribe(l)
}

// State returns a snapshot of the current session
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CompletedSessions returns how many sessions have finished since the manager
// was created
func (m *Manager) CompletedSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed
}

// Remaining returns the countdown value to display
func (m *Manager) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining
}

// CountdownRunning reports whether a countdown is currently armed
func (m *Manager) CountdownRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countdown != nil
}

// ShareText returns the current scores as a shareable sentence
func (m *Manager) ShareText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ShareText(m.state.UserWins, m.state.ComputerWins)
}

// SubmitChoice plays one round with the user's choice. It is a no-op returning
// ok == false once the session is over. The error reports invalid input or a
// failure to persist the finished session; in the latter case the round still
// counts.
func (m *Manager) SubmitChoice(ctx context.Context, user game.Choice) (round Round, ok bool, err error) {
	if !user.Valid() {
		return Round{}, false, fmt.Errorf("%w: %s", game.ErrInvalidChoice, user)
	}

	m.mu.Lock()
	if m.state.Terminal() {
		m.mu.Unlock()
		m.logger.Debug("Ignoring choice, session is over", "choice", user)
		return Round{}, false, nil
	}

	computer := m.chooser.Choose()
	outcome := game.Resolve(user, computer)
	switch outcome {
	case game.UserWin:
		m.state.UserWins++
	case game.ComputerWin:
		m.state.ComputerWins++
	}
	m.state.RoundsPlayed++

	round = Round{
		Number:   m.state.RoundsPlayed,
		User:     user,
		Computer: computer,
		Outcome:  outcome,
	}
	m.logger.Debug("Round resolved",
		"round", round.Number,
		"user", user,
		"computer", computer,
		"outcome", outcome)
	m.emitLocked(RoundEvent{Round: round, State: m.state, timestamp: m.clock.Now()})

	if m.state.Terminal() {
		err = m.finishLocked(ctx)
	} else if m.state.Mode == Timed && !m.armed {
		m.armLocked()
	}
	m.mu.Unlock()
	m.flush()

	return round, true, err
}

// Start opens the first round of a Timed session, arming its countdown before
// any choice is made. It returns false when there is nothing to arm: the mode
// is Standard, the countdown was already armed this session, or the session
// is over.
func (m *Manager) Start() bool {
	m.mu.Lock()
	if m.state.Mode != Timed || m.armed || m.state.Terminal() {
		m.mu.Unlock()
		return false
	}
	m.armLocked()
	m.mu.Unlock()
	m.flush()
	return true
}

// ResetOption changes the settings of the next session
type ResetOption func(*State)

// WithTotalRounds sets the number of rounds for the next session
func WithTotalRounds(n int) ResetOption {
	return func(s *State) {
		s.TotalRounds = n
	}
}

// WithMode sets the game mode for the next session
func WithMode(mode Mode) ResetOption {
	return func(s *State) {
		s.Mode = mode
	}
}

// Reset discards the current session and starts a new one, cancelling any
// running countdown. Settings not overridden carry over.
func (m *Manager) Reset(opts ...ResetOption) error {
	m.mu.Lock()
	next := State{TotalRounds: m.state.TotalRounds, Mode: m.state.Mode}
	for _, opt := range opts {
		opt(&next)
	}
	if next.TotalRounds < 1 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrInvalidRounds, next.TotalRounds)
	}
	if next.Mode != Standard && next.Mode != Timed {
		m.mu.Unlock()
		return fmt.Errorf("invalid mode: %d", int(next.Mode))
	}

	m.stopCountdownLocked()
	m.state = next
	m.armed = false
	m.remaining = m.cfg.CountdownTicks

	m.logger.Debug("Session reset", "totalRounds", next.TotalRounds, "mode", next.Mode)
	m.emitLocked(ResetEvent{State: m.state, Remaining: m.remaining, timestamp: m.clock.Now()})
	m.mu.Unlock()
	m.flush()
	return nil
}

// History returns the finished sessions, most recent last
func (m *Manager) History(ctx context.Context) ([]history.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.Load(ctx)
}

// ClearHistory empties the stored history
func (m *Manager) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	if err := m.repo.Clear(ctx); err != nil {
		m.mu.Unlock()
		return err
	}
	m.logger.Info("History cleared")
	m.emitLocked(HistoryEvent{Records: []history.Record{}, timestamp: m.clock.Now()})
	m.mu.Unlock()
	m.flush()
	return nil
}

// Close stops the countdown. The manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCountdownLocked()
}

// finishLocked closes out a session whose last round was just played
func (m *Manager) finishLocked(ctx context.Context) error {
	m.stopCountdownLocked()
	m.completed++

	summary := Summarize(m.state)
	m.logger.Info("Session complete",
		"result", summary.Result,
		"userWins", summary.UserWins,
		"computerWins", summary.ComputerWins,
		"completed", m.completed)
	m.emitLocked(CompleteEvent{
		Summary:   summary,
		State:     m.state,
		Completed: m.completed,
		Celebrate: summary.Result == game.UserWin,
		Defeat:    summary.Result == game.ComputerWin,
		timestamp: m.clock.Now(),
	})

	records, err := m.repo.Append(ctx, m.state.Record())
	if err != nil {
		return err
	}
	m.emitLocked(HistoryEvent{Records: records, timestamp: m.clock.Now()})
	return nil
}

func (m *Manager) emitLocked(events ...Event) {
	m.pending = append(m.pending, events...)
}

// flush delivers queued events outside the lock. Only one goroutine delivers
// at a time, so listeners see events in the order they were queued and may
// call back into the manager.
func (m *Manager) flush() {
	m.mu.Lock()
	if m.flushing {
		m.mu.Unlock()
		return
	}
	m.flushing = true
	for len(m.pending) > 0 {
		batch := m.pending
		m.pending = nil
		m.mu.Unlock()
		m.bus.Publish(batch...)
		m.mu.Lock()
	}
	m.flushing = false
	m.mu.Unlock()
}
