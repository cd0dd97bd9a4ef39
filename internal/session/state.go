package session

import (
	"fmt"
	"strings"

	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/history"
)

// Mode selects between plain play and play against a countdown
type Mode int

const (
	Standard Mode = iota
	// Timed arms a countdown on the first round; when it runs out the current
	// round is recorded as a tie.
	Timed
)

func (m Mode) String() string {
	switch m {
	case Standard:
		return "standard"
	case Timed:
		return "timed"
	default:
		return "unknown"
	}
}

// ParseMode converts "standard" or "timed" to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return Standard, nil
	case "timed":
		return Timed, nil
	default:
		return Standard, fmt.Errorf("invalid mode: %q (want standard or timed)", s)
	}
}

// MarshalText encodes the mode name
func (m Mode) MarshalText() ([]byte, error) {
	if m != Standard && m != Timed {
		return nil, fmt.Errorf("invalid mode: %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// State is a snapshot of the current session's scores
type State struct {
	UserWins     int  `json:"userWins"`
	ComputerWins int  `json:"computerWins"`
	RoundsPlayed int  `json:"roundsPlayed"`
	TotalRounds  int  `json:"totalRounds"`
	Mode         Mode `json:"mode"`
}

// Terminal reports whether every round of the session has been played
func (s State) Terminal() bool {
	return s.RoundsPlayed >= s.TotalRounds
}

// Record returns the history entry for this session's scores
func (s State) Record() history.Record {
	return history.Record{UserWins: s.UserWins, ComputerWins: s.ComputerWins}
}

// Round is one resolved round. TimedOut rounds carry game.None for both sides.
type Round struct {
	Number   int          `json:"number"`
	User     game.Choice  `json:"user"`
	Computer game.Choice  `json:"computer"`
	Outcome  game.Outcome `json:"outcome"`
	TimedOut bool         `json:"timedOut,omitempty"`
}

// Summary is the overall result of a finished session
type Summary struct {
	Result       game.Outcome `json:"result"`
	UserWins     int          `json:"userWins"`
	ComputerWins int          `json:"computerWins"`
	Text         string       `json:"text"`
}

// Summarize compares cumulative wins to produce the overall result
func Summarize(s State) Summary {
	result := game.Compare(s.UserWins, s.ComputerWins)
	return Summary{
		Result:       result,
		UserWins:     s.UserWins,
		ComputerWins: s.ComputerWins,
		Text:         resultText(result),
	}
}

func resultText(o game.Outcome) string {
	switch o {
	case game.UserWin:
		return "User is the overall winner!"
	case game.ComputerWin:
		return "Computer is the overall winner!"
	default:
		return "It's a tie!"
	}
}

// ShareText is the plain-text brag offered to an external share mechanism
func ShareText(userWins, computerWins int) string {
	return fmt.Sprintf("I won %d times and lost %d times!", userWins, computerWins)
}
