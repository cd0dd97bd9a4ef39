package simulator

import (
	"fmt"
	"math"

	"github.com/lox/stonepaper/internal/game"
)

// SessionResult is the outcome of one simulated session
type SessionResult struct {
	Seed         int64 // seed that reproduces both sides' choices
	Rounds       int
	UserWins     int
	ComputerWins int
	Ties         int
	Result       game.Outcome
}

// Margin is the user's lead at the end of the session
func (r SessionResult) Margin() int {
	return r.UserWins - r.ComputerWins
}

// Statistics aggregates simulated sessions
type Statistics struct {
	Sessions         int
	UserSessions     int
	ComputerSessions int
	TiedSessions     int

	Rounds         int
	UserRounds     int
	ComputerRounds int
	TiedRounds     int

	SumMargin  float64
	SumMargin2 float64 // sum of squares for variance
}

// Add incorporates a session result
func (s *Statistics) Add(r SessionResult) {
	s.Sessions++
	switch r.Result {
	case game.UserWin:
		s.UserSessions++
	case game.ComputerWin:
		s.ComputerSessions++
	default:
		s.TiedSessions++
	}

	s.Rounds += r.Rounds
	s.UserRounds += r.UserWins
	s.ComputerRounds += r.ComputerWins
	s.TiedRounds += r.Ties

	m := float64(r.Margin())
	s.SumMargin += m
	s.SumMargin2 += m * m
}

// Mean returns the mean per-session margin
func (s *Statistics) Mean() float64 {
	if s.Sessions == 0 {
		return 0
	}
	return s.SumMargin / float64(s.Sessions)
}

// Variance returns the sample variance of the margin
func (s *Statistics) Variance() float64 {
	if s.Sessions < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumMargin2 - float64(s.Sessions)*mean*mean) / float64(s.Sessions-1)
}

// StdDev returns the sample standard deviation of the margin
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Sessions == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Sessions))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean margin
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Share returns n as a percentage of total
func (s *Statistics) Share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Validate checks that the counts add up
func (s *Statistics) Validate() error {
	if s.Sessions <= 0 {
		return fmt.Errorf("invalid session count: %d", s.Sessions)
	}
	if got := s.UserSessions + s.ComputerSessions + s.TiedSessions; got != s.Sessions {
		return fmt.Errorf("session outcomes mismatch: %d outcomes for %d sessions", got, s.Sessions)
	}
	if got := s.UserRounds + s.ComputerRounds + s.TiedRounds; got != s.Rounds {
		return fmt.Errorf("round outcomes mismatch: %d outcomes for %d rounds", got, s.Rounds)
	}
	return nil
}
