// Package server serves the browser game: an embedded page and a WebSocket
// endpoint where every connection plays its own session.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/session"
	"github.com/lox/stonepaper/internal/sessionid"
)

//go:embed static
var staticFiles embed.FS

// ChooserFactory returns the computer's chooser for the nth connection
type ChooserFactory func(n int) game.Chooser

// Option configures a Server
type Option func(*Server)

// WithSessionConfig sets the configuration each new session starts with
func WithSessionConfig(cfg session.Config) Option {
	return func(s *Server) {
		s.sessionConfig = cfg
	}
}

// WithChooserFactory sets how computer choosers are created per connection
func WithChooserFactory(f ChooserFactory) Option {
	return func(s *Server) {
		s.newChooser = f
	}
}

// WithClock sets the clock that drives session countdowns
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// Server represents the WebSocket server
type Server struct {
	addr          string
	upgrader      websocket.Upgrader
	connections   map[*Connection]bool
	register      chan *Connection
	unregister    chan *Connection
	logger        *log.Logger
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
	httpServer    *http.Server
	runOnce       sync.Once
	accepted      int
	repo          history.Repository
	sessionConfig session.Config
	newChooser    ChooserFactory
	clock         quartz.Clock
	ids           *sessionid.Generator
}

// NewServer creates a new WebSocket server. All connections share repo, so
// every session's result lands in the same history.
func NewServer(addr string, repo history.Repository, logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// The page is served from this origin; the game has nothing to protect
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections:   make(map[*Connection]bool),
		register:      make(chan *Connection),
		unregister:    make(chan *Connection),
		logger:        logger.WithPrefix("server"),
		ctx:           ctx,
		cancel:        cancel,
		repo:          repo,
		sessionConfig: session.DefaultConfig(),
		clock:         quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = sessionid.NewGenerator(s.clock, nil)
	return s
}

// Handler returns the HTTP handler serving the page, the socket and the
// health check. It starts the connection registry on first use.
func (s *Server) Handler() http.Handler {
	s.runOnce.Do(func() { go s.run() })

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("embedded static files: %v", err))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.FileServerFS(static))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start listens on the server address until Stop is called
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting server", "addr", s.addr, "url", "http://"+s.addr+"/")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes every connection and shuts down the HTTP listener
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "session", conn.ID(), "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close() // Ignore close errors during unregistration
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "session", conn.ID(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// newManager creates the session for one connection
func (s *Server) newManager(logger *log.Logger) (*session.Manager, error) {
	s.mu.Lock()
	n := s.accepted
	s.accepted++
	s.mu.Unlock()

	opts := []session.Option{
		session.WithConfig(s.sessionConfig),
		session.WithClock(s.clock),
		session.WithContext(s.ctx),
	}
	if s.newChooser != nil {
		opts = append(opts, session.WithChooser(s.newChooser(n)))
	}
	return session.NewManager(s.repo, logger, opts...)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	id, err := s.ids.Generate()
	if err != nil {
		s.logger.Error("Failed to generate session id", "error", err)
		_ = conn.Close()
		return
	}

	logger := s.logger.With("session", id, "remote", r.RemoteAddr)
	manager, err := s.newManager(logger)
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		_ = conn.Close()
		return
	}

	client := NewConnection(id, conn, manager, logger)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.Start()

	// Connection cleanup is handled by the connection itself
	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}
