package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/forestsim/internal/core/observability/log"
)

const closeGracePeriod = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// spectator is one connected WebSocket client.
type spectator struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSpectator(conn *websocket.Conn, buffer int) *spectator {
	return &spectator{
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// enqueue reports whether payload was queued.
func (c *spectator) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// goodbye sends a close frame before dropping the connection.
func (c *spectator) goodbye(code int, text string) {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text),
		time.Now().Add(closeGracePeriod))
	c.close()
}

func (c *spectator) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	full := len(s.clients) >= s.config.MaxClients
	s.mu.RUnlock()
	if full {
		s.rejected.Add(1)
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Upgrade failed", log.Error(err))
		return
	}

	c := newSpectator(conn, s.config.SendBuffer)
	// The current state goes out first so a spectator never waits a full
	// tick for its first frame.
	initial, err := json.Marshal(s.src.Frame())
	if err == nil {
		c.send <- initial
	}

	if err := s.addClient(c); err != nil {
		s.rejected.Add(1)
		s.logger.Warn("Spectator rejected", log.Error(err))
		c.goodbye(websocket.CloseTryAgainLater, err.Error())
		return
	}

	s.logger.Info("Spectator connected",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_clients", s.Metrics().Clients))

	go s.writePump(c)
	s.readPump(c)
}

// readPump discards anything the spectator sends and returns once the
// connection is gone.
func (s *Server) readPump(c *spectator) {
	defer func() {
		s.removeClient(c)
		s.logger.Info("Spectator disconnected",
			log.String("remote_addr", c.conn.RemoteAddr().String()))
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *spectator) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debug("Write failed", log.Error(err))
				s.removeClient(c)
				return
			}
		}
	}
}
