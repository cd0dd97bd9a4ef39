package server

import (
	"encoding/json"
	"time"

	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/session"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// ChooseData names the user's choice: stone, paper, scissors (or rock, 1, 2, 3)
type ChooseData struct {
	Choice string `json:"choice"`
}

// ResetData overrides the next session's settings; omitted fields carry over
type ResetData struct {
	Rounds *int          `json:"rounds,omitempty"`
	Mode   *session.Mode `json:"mode,omitempty"`
}

// Server → Client Messages

type StateData struct {
	Session          string        `json:"session"`
	State            session.State `json:"state"`
	Remaining        int           `json:"remaining"`
	CountdownRunning bool          `json:"countdownRunning"`
	Completed        int           `json:"completed"`
}

type RoundData struct {
	Round session.Round `json:"round"`
	State session.State `json:"state"`
	Text  string        `json:"text"`
}

type CountdownData struct {
	Remaining int `json:"remaining"`
}

type CompleteData struct {
	Summary   session.Summary `json:"summary"`
	Completed int             `json:"completed"`
	Celebrate bool            `json:"celebrate"`
	Defeat    bool            `json:"defeat"`
}

type HistoryData struct {
	Records     []history.Record `json:"records"`
	Leaderboard []string         `json:"leaderboard"`
}

type ShareData struct {
	Text string `json:"text"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newHistoryData(records []history.Record) HistoryData {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	if records == nil {
		records = []history.Record{}
	}
	return HistoryData{Records: records, Leaderboard: lines}
}

func newRoundData(round session.Round, state session.State) RoundData {
	text := round.Outcome.RoundText()
	if round.TimedOut {
		text = "Time up! " + text
	}
	return RoundData{Round: round, State: state, Text: text}
}
