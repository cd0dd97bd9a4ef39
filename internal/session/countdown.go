package session

import (
	"context"
	"errors"

	"github.com/lox/stonepaper/internal/game"
)

var (
	errCountdownStopped = errors.New("countdown stopped")
	errCountdownExpired = errors.New("countdown expired")
)

// countdown is the handle for the one running timer of a session. Ticks from a
// handle that is no longer m.countdown are discarded.
type countdown struct {
	cancel context.CancelFunc
}

// armLocked starts a fresh countdown, cancelling any previous one
func (m *Manager) armLocked() {
	m.stopCountdownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	cd := &countdown{cancel: cancel}
	m.countdown = cd
	m.armed = true
	m.remaining = m.cfg.CountdownTicks

	m.logger.Debug("Countdown armed", "ticks", m.remaining, "interval", m.cfg.TickInterval)
	m.emitLocked(CountdownEvent{Remaining: m.remaining, timestamp: m.clock.Now()})

	m.clock.TickerFunc(ctx, m.cfg.TickInterval, func() error {
		return m.tick(cd)
	}, "session", "countdown")
}

// stopCountdownLocked cancels the running countdown, if any
func (m *Manager) stopCountdownLocked() {
	if m.countdown == nil {
		return
	}
	m.countdown.cancel()
	m.countdown = nil
}

// tick runs on the clock's goroutine once per interval
func (m *Manager) tick(cd *countdown) error {
	m.mu.Lock()
	if m.countdown != cd {
		m.mu.Unlock()
		return errCountdownStopped
	}

	m.remaining--
	m.emitLocked(CountdownEvent{Remaining: m.remaining, timestamp: m.clock.Now()})
	if m.remaining > 0 {
		m.mu.Unlock()
		m.flush()
		return nil
	}

	// Fires once; the countdown stays inert until the next session arms it
	m.countdown = nil
	cd.cancel()
	m.expireLocked()
	m.mu.Unlock()
	m.flush()
	return errCountdownExpired
}

// expireLocked records a timed-out round as a tie with no choices made
func (m *Manager) expireLocked() {
	if m.state.Terminal() {
		return
	}
	m.state.RoundsPlayed++
	round := Round{
		Number:   m.state.RoundsPlayed,
		User:     game.None,
		Computer: game.None,
		Outcome:  game.Tie,
		TimedOut: true,
	}
	m.logger.Info("Countdown expired, recording tie", "round", round.Number, "totalRounds", m.state.TotalRounds)
	m.emitLocked(RoundEvent{Round: round, State: m.state, timestamp: m.clock.Now()})

	if m.state.Terminal() {
		if err := m.finishLocked(m.ctx); err != nil {
			m.logger.Error("Failed to record finished session", "error", err)
		}
	}
}
