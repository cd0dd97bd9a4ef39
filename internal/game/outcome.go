package game

import "fmt"

// Outcome is the result of a round, or of a whole session when comparing totals
type Outcome int

const (
	Tie Outcome = iota
	UserWin
	ComputerWin
)

func (o Outcome) String() string {
	switch o {
	case Tie:
		return "tie"
	case UserWin:
		return "user"
	case ComputerWin:
		return "computer"
	default:
		return "unknown"
	}
}

// Opposite swaps the winner; a tie stays a tie
func (o Outcome) Opposite() Outcome {
	switch o {
	case UserWin:
		return ComputerWin
	case ComputerWin:
		return UserWin
	default:
		return o
	}
}

// RoundText is the banner shown after a single round
func (o Outcome) RoundText() string {
	switch o {
	case UserWin:
		return "User wins!"
	case ComputerWin:
		return "Computer wins!"
	default:
		return "It's a tie!"
	}
}

// MarshalText encodes the outcome as "user", "computer" or "tie"
func (o Outcome) MarshalText() ([]byte, error) {
	if o < Tie || o > ComputerWin {
		return nil, fmt.Errorf("invalid outcome: %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText decodes "user", "computer" or "tie"
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tie":
		*o = Tie
	case "user":
		*o = UserWin
	case "computer":
		*o = ComputerWin
	default:
		return fmt.Errorf("invalid outcome: %q", string(text))
	}
	return nil
}

// Compare decides the overall result of a session from cumulative wins
func Compare(userWins, computerWins int) Outcome {
	switch {
	case userWins > computerWins:
		return UserWin
	case computerWins > userWins:
		return ComputerWin
	default:
		return Tie
	}
}
