// Package history keeps the capped list of finished sessions.
package history

import (
	"context"
	"fmt"
	"strings"
)

// Capacity is the number of sessions kept; older records are evicted first
const Capacity = 10

// DefaultKey is the store key the list is saved under
const DefaultKey = "scores"

// Record is the final score of one finished session
type Record struct {
	UserWins     int `json:"userWins"`
	ComputerWins int `json:"computerWins"`
}

func (r Record) String() string {
	return fmt.Sprintf("User: %d, Computer: %d", r.UserWins, r.ComputerWins)
}

// Repository loads and saves the history list. Load returns records
// most-recent-last; missing or unreadable data loads as an empty list.
// Append pushes one record and returns the resulting list.
type Repository interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
	Append(ctx context.Context, r Record) ([]Record, error)
	Clear(ctx context.Context) error
}

// Push appends r and evicts the oldest records beyond Capacity
func Push(records []Record, r Record) []Record {
	out := make([]Record, 0, min(len(records)+1, Capacity))
	out = append(out, Trim(records)...)
	if len(out) == Capacity {
		out = out[1:]
	}
	return append(out, r)
}

// Trim keeps the Capacity most recent records
func Trim(records []Record) []Record {
	if len(records) <= Capacity {
		return records
	}
	return records[len(records)-Capacity:]
}

// Leaderboard renders records one per line, oldest first
func Leaderboard(records []Record) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
