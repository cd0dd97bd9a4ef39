package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChoice is returned when a value is not one of stone, paper or scissors.
var ErrInvalidChoice = errors.New("invalid choice")

// Choice is a hand shape thrown in a round
type Choice int

const (
	// None is the placeholder recorded for both sides when a round times out
	None Choice = iota
	Stone
	Paper
	Scissors
)

// Choices lists the playable choices in display order
var Choices = [...]Choice{Stone, Paper, Scissors}

func (c Choice) String() string {
	switch c {
	case Stone:
		return "stone"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	case None:
		return "time up"
	default:
		return "unknown"
	}
}

// Valid reports whether c can be submitted by a player
func (c Choice) Valid() bool {
	return c >= Stone && c <= Scissors
}

// Label returns the display form of the choice, e.g. "Stone" or "Time Up!"
func (c Choice) Label() string {
	if c == None {
		return "Time Up!"
	}
	s := c.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseChoice converts user input to a Choice. Names are case-insensitive,
// "rock" is accepted for stone and 1, 2, 3 select in display order.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stone", "rock", "1":
		return Stone, nil
	case "paper", "2":
		return Paper, nil
	case "scissors", "3":
		return Scissors, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
}

// MarshalText encodes the choice as its lower-case name
func (c Choice) MarshalText() ([]byte, error) {
	if c != None && !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChoice, int(c))
	}
	if c == None {
		return []byte("none"), nil
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a choice name; "none" and the empty string decode to None
func (c *Choice) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "none":
		*c = None
		return nil
	}
	parsed, err := ParseChoice(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
