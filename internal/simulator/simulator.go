package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/randutil"
	"github.com/lox/stonepaper/internal/session"
	"github.com/lox/stonepaper/internal/store"
)

// Config holds configuration for running simulations
type Config struct {
	Sessions int
	Rounds   int
	Workers  int
	Seed     int64
	Logger   *log.Logger
}

// Simulator plays many standard sessions between a random user and the
// computer, each on its own session manager
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{
		config: config,
		logger: config.Logger.WithPrefix("simulator"),
	}
}

// Run plays every session and returns the aggregated statistics. Results are
// independent of the worker count for a given seed.
func (s *Simulator) Run(ctx context.Context) (*Statistics, error) {
	if s.config.Sessions < 1 {
		return nil, fmt.Errorf("sessions must be positive, got %d", s.config.Sessions)
	}
	if s.config.Rounds < 1 {
		return nil, fmt.Errorf("%w: %d", session.ErrInvalidRounds, s.config.Rounds)
	}

	s.logger.Info("Starting simulation",
		"sessions", s.config.Sessions,
		"rounds", s.config.Rounds,
		"workers", s.config.Workers,
		"seed", s.config.Seed)

	results := make([]SessionResult, s.config.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.playSession(ctx, i)
			if err != nil {
				return fmt.Errorf("session %d: %w", i+1, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete",
		"userSessions", stats.UserSessions,
		"computerSessions", stats.ComputerSessions,
		"tiedSessions", stats.TiedSessions)
	return stats, nil
}

// playSession plays one full session with derived seeds for both sides
func (s *Simulator) playSession(ctx context.Context, n int) (SessionResult, error) {
	seed := randutil.Derive(s.config.Seed, n)
	user := game.NewRandomChooser(randutil.New(randutil.Derive(seed, 0)))
	computer := game.NewRandomChooser(randutil.New(randutil.Derive(seed, 1)))

	cfg := session.DefaultConfig()
	cfg.TotalRounds = s.config.Rounds

	repo := history.NewStoreRepository(store.NewMemoryStore(), "", s.config.Logger)
	m, err := session.NewManager(repo, s.config.Logger,
		session.WithConfig(cfg),
		session.WithChooser(computer),
	)
	if err != nil {
		return SessionResult{}, err
	}
	defer m.Close()

	result := SessionResult{Seed: seed}
	for !m.State().Terminal() {
		round, ok, err := m.SubmitChoice(ctx, user.Choose())
		if err != nil {
			return SessionResult{}, err
		}
		if !ok {
			break
		}
		if round.Outcome == game.Tie {
			result.Ties++
		}
	}

	state := m.State()
	result.UserWins = state.UserWins
	result.ComputerWins = state.ComputerWins
	result.Rounds = state.RoundsPlayed
	result.Result = session.Summarize(state).Result
	return result, nil
}

// RunSimulation is a convenience function for running a simulation with basic parameters
func RunSimulation(ctx context.Context, sessions, rounds int, seed int64, logger *log.Logger) (*Statistics, error) {
	return New(Config{
		Sessions: sessions,
		Rounds:   rounds,
		Seed:     seed,
		Logger:   logger,
	}).Run(ctx)
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *Statistics) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS ===\n")
	fmt.Fprintf(w, "Sessions played: %d (%d rounds)\n", stats.Sessions, stats.Rounds)

	fmt.Fprintf(w, "\n=== SESSION OUTCOMES ===\n")
	fmt.Fprintf(w, "User:     %d (%.1f%%)\n", stats.UserSessions, stats.Share(stats.UserSessions, stats.Sessions))
	fmt.Fprintf(w, "Computer: %d (%.1f%%)\n", stats.ComputerSessions, stats.Share(stats.ComputerSessions, stats.Sessions))
	fmt.Fprintf(w, "Tie:      %d (%.1f%%)\n", stats.TiedSessions, stats.Share(stats.TiedSessions, stats.Sessions))

	fmt.Fprintf(w, "\n=== ROUND OUTCOMES ===\n")
	fmt.Fprintf(w, "User wins:     %d (%.1f%%)\n", stats.UserRounds, stats.Share(stats.UserRounds, stats.Rounds))
	fmt.Fprintf(w, "Computer wins: %d (%.1f%%)\n", stats.ComputerRounds, stats.Share(stats.ComputerRounds, stats.Rounds))
	fmt.Fprintf(w, "Ties:          %d (%.1f%%)\n", stats.TiedRounds, stats.Share(stats.TiedRounds, stats.Rounds))

	fmt.Fprintf(w, "\n=== MARGIN (user wins - computer wins per session) ===\n")
	fmt.Fprintf(w, "Mean: %.4f\n", stats.Mean())
	fmt.Fprintf(w, "Std Dev: %.4f\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f]\n", low, high)
}
