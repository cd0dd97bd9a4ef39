package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/session"
)

// Connection represents a WebSocket connection playing one session
type Connection struct {
	id          string
	conn        *websocket.Conn
	send        chan *Message
	manager     *session.Manager
	unsubscribe func()
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
}

// NewConnection creates a new connection wrapper around a session
func NewConnection(id string, conn *websocket.Conn, manager *session.Manager, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		id:      id,
		conn:    conn,
		send:    make(chan *Message, 256),
		manager: manager,
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.unsubscribe = manager.Subscribe(session.ListenerFunc(c.onEvent))
	return c
}

// ID returns the session identifier assigned when the client connected
func (c *Connection) ID() string {
	return c.id
}

// Start begins handling the connection and sends the opening state
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()

	c.sendState()
	c.sendHistory()
}

// Close closes the connection and stops its session
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.unsubscribe()
		c.manager.Close()
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(ErrCodeInvalidMessage, "Malformed message")
			continue
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeStart:
		c.manager.Start()
		c.sendState()

	case MessageTypeChoose:
		var data ChooseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(ErrCodeInvalidMessage, "Failed to parse choose data")
			return
		}
		c.handleChoose(data)

	case MessageTypeReset:
		var data ResetData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError(ErrCodeInvalidMessage, "Failed to parse reset data")
				return
			}
		}
		c.handleReset(data)

	case MessageTypeHistory:
		c.sendHistory()

	case MessageTypeClearHistory:
		if err := c.manager.ClearHistory(c.ctx); err != nil {
			c.logger.Error("Failed to clear history", "error", err)
			c.sendError(ErrCodeHistoryFailed, err.Error())
		}

	case MessageTypeShare:
		c.sendMessage(MessageTypeShare, ShareData{Text: c.manager.ShareText()})

	default:
		c.sendError(ErrCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleChoose(data ChooseData) {
	choice, err := game.ParseChoice(data.Choice)
	if err != nil {
		c.sendError(ErrCodeInvalidChoice, err.Error())
		return
	}

	_, ok, err := c.manager.SubmitChoice(c.ctx, choice)
	switch {
	case errors.Is(err, game.ErrInvalidChoice):
		c.sendError(ErrCodeInvalidChoice, err.Error())
	case err != nil:
		c.logger.Error("Failed to record finished session", "error", err)
		c.sendError(ErrCodeHistoryFailed, err.Error())
	case !ok:
		c.sendError(ErrCodeSessionOver, "Session is over, start a new one")
	}
}

func (c *Connection) handleReset(data ResetData) {
	var opts []session.ResetOption
	if data.Rounds != nil {
		opts = append(opts, session.WithTotalRounds(*data.Rounds))
	}
	if data.Mode != nil {
		opts = append(opts, session.WithMode(*data.Mode))
	}
	if err := c.manager.Reset(opts...); err != nil {
		c.sendError(ErrCodeInvalidReset, err.Error())
	}
}

// onEvent forwards session events to the client
func (c *Connection) onEvent(event session.Event) {
	switch e := event.(type) {
	case session.RoundEvent:
		c.sendMessage(MessageTypeRound, newRoundData(e.Round, e.State))
	case session.CountdownEvent:
		c.sendMessage(MessageTypeCountdown, CountdownData{Remaining: e.Remaining})
	case session.CompleteEvent:
		c.sendMessage(MessageTypeComplete, CompleteData{
			Summary:   e.Summary,
			Completed: e.Completed,
			Celebrate: e.Celebrate,
			Defeat:    e.Defeat,
		})
	case session.ResetEvent:
		c.sendState()
	case session.HistoryEvent:
		c.sendMessage(MessageTypeHistory, newHistoryData(e.Records))
	}
}

func (c *Connection) sendState() {
	c.sendMessage(MessageTypeState, StateData{
		Session:          c.id,
		State:            c.manager.State(),
		Remaining:        c.manager.Remaining(),
		CountdownRunning: c.manager.CountdownRunning(),
		Completed:        c.manager.CompletedSessions(),
	})
}

func (c *Connection) sendHistory() {
	records, err := c.manager.History(c.ctx)
	if err != nil {
		c.logger.Error("Failed to load history", "error", err)
		c.sendError(ErrCodeHistoryFailed, err.Error())
		return
	}
	c.sendMessage(MessageTypeHistory, newHistoryData(records))
}

func (c *Connection) sendMessage(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg) // Ignore send errors, the read pump notices closed sockets
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.sendMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
}
