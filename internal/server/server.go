// Package server streams completed simulation ticks to spectators over
// WebSocket. Spectators are read-only: nothing they send reaches the world.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/forestsim/internal/core/events/bus"
	"github.com/zeusync/forestsim/internal/core/observability/log"
	"github.com/zeusync/forestsim/internal/core/sim"
	"github.com/zeusync/forestsim/pkg/concurrent"
)

// Source is the part of the world the server reads.
type Source interface {
	TickCount() int64
	// Frame returns the last completed tick with its views, read atomically.
	Frame() sim.Frame
	Events() bus.EventBus
}

// Config holds server configuration
type Config struct {
	ListenAddr   string        `yaml:"listen_addr"`
	MaxClients   int           `yaml:"max_clients"`
	SendBuffer   int           `yaml:"send_buffer"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8080",
		MaxClients:   64,
		SendBuffer:   16,
		WriteTimeout: 5 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr is empty", ErrInvalidConfig)
	}
	if c.MaxClients <= 0 || c.SendBuffer <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("%w: max_clients, send_buffer and write_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Metrics are cumulative counters since the server was created.
type Metrics struct {
	Clients       int64
	FramesSent    uint64
	FramesDropped uint64
	Rejected      uint64
}

// Server is a spectator server
type Server struct {
	config Config
	src    Source
	logger log.Log

	httpServer *http.Server

	mu      sync.RWMutex
	clients map[*spectator]struct{}
	sub     bus.Subscription
	boundTo string

	running atomic.Bool
	closed  atomic.Bool

	framesSent    atomic.Uint64
	framesDropped atomic.Uint64
	rejected      atomic.Uint64
}

// NewServer creates a spectator server over src.
func NewServer(config Config, src Source, logger log.Log) (*Server, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		config:  config,
		src:     src,
		logger:  logger.With(log.String("component", "server")),
		clients: make(map[*spectator]struct{}),
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients))

	return s, nil
}

// Handler returns the server's routes. It can be mounted without Start.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.mu.Lock()
	s.boundTo = ln.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Serve failed", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.boundTo != "" {
		return s.boundTo
	}
	return s.config.ListenAddr
}

// Stop shuts the HTTP server down and disconnects every spectator.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")
	err := s.httpServer.Shutdown(ctx)
	s.disconnectAll()
	s.logger.Info("Server stopped", log.Uint64("frames_sent", s.framesSent.Load()))
	return err
}

// Close stops the server if needed. A closed server cannot be restarted.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.running.Load() {
		return s.Stop(context.Background())
	}
	s.disconnectAll()
	return nil
}

func (s *Server) Metrics() Metrics {
	s.mu.RLock()
	n := int64(len(s.clients))
	s.mu.RUnlock()
	return Metrics{
		Clients:       n,
		FramesSent:    s.framesSent.Load(),
		FramesDropped: s.framesDropped.Load(),
		Rejected:      s.rejected.Load(),
	}
}

// addClient registers c and subscribes to ticks on the first spectator, so
// the world builds frames only while someone is watching.
func (s *Server) addClient(c *spectator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) >= s.config.MaxClients {
		return ErrMaxClientsReached
	}
	if s.sub == nil {
		sub, err := s.src.Events().Subscribe(sim.EventTick, s.onTick)
		if err != nil {
			return fmt.Errorf("subscribe to ticks: %w", err)
		}
		s.sub = sub
	}
	s.clients[c] = struct{}{}
	return nil
}

func (s *Server) removeClient(c *spectator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	c.close()
	if len(s.clients) == 0 && s.sub != nil {
		_ = s.sub.Cancel()
		s.sub = nil
	}
}

func (s *Server) disconnectAll() {
	s.mu.Lock()
	clients := make([]*spectator, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
		delete(s.clients, c)
	}
	if s.sub != nil {
		_ = s.sub.Cancel()
		s.sub = nil
	}
	s.mu.Unlock()

	// Each close handshake can wait up to its deadline on a slow peer.
	_ = concurrent.Concurrent(clients, func(c *spectator) error {
		c.goodbye(websocket.CloseGoingAway, "server shutting down")
		return nil
	})
}

// onTick fans a frame out to every spectator. A spectator whose buffer is
// full misses the frame instead of stalling the tick.
func (s *Server) onTick(event bus.Event) error {
	frame, ok := event.Data().(sim.Frame)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", event.Type(), event.Data())
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Tick, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if c.enqueue(payload) {
			s.framesSent.Add(1)
		} else {
			s.framesDropped.Add(1)
		}
	}
	return nil
}
