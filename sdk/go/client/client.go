// Package client is a spectator SDK: it dials a forestsim server and decodes
// the frames it streams.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/forestsim/internal/core/observability/log"
	"github.com/zeusync/forestsim/internal/core/sim"
)

// Config holds configuration for the client
type Config struct {
	ServerURL      string
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for a single frame. Zero waits forever.
	ReadTimeout time.Duration
	Logger      log.Log
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		ServerURL:      "ws://127.0.0.1:8080/ws",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// Client is a read-only spectator connection.
type Client struct {
	conn   *websocket.Conn
	config Config
	logger log.Log
	closed atomic.Bool
	last   atomic.Int64
}

// Dial connects to the spectator stream at config.ServerURL.
func Dial(ctx context.Context, config Config) (*Client, error) {
	u, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidConfig, u.Scheme)
	}
	if config.Logger == nil {
		config.Logger = log.NewNop()
	}

	if config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrConnectionTimeout, err)
		}
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}

	c := &Client{
		conn:   conn,
		config: config,
		logger: config.Logger.With(log.String("component", "spectator"), log.String("server", u.Host)),
	}
	c.last.Store(-1)
	c.logger.Info("Connected")
	return c, nil
}

// Next blocks until the next frame arrives.
func (c *Client) Next() (sim.Frame, error) {
	if c.closed.Load() {
		return sim.Frame{}, ErrClientClosed
	}
	if c.config.ReadTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if c.closed.Load() {
			return sim.Frame{}, ErrClientClosed
		}
		return sim.Frame{}, err
	}

	var f sim.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return sim.Frame{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if prev := c.last.Swap(f.Tick); prev >= 0 && f.Tick > prev+1 {
		c.logger.Debug("Frames skipped", log.Int64("from", prev+1), log.Int64("to", f.Tick-1))
	}
	return f, nil
}

// Stream calls fn for every frame until ctx is done, fn returns an error or
// the connection fails. Cancelling ctx closes the client.
func (c *Client) Stream(ctx context.Context, fn func(sim.Frame) error) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		f, err := c.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
}

// LastTick returns the tick of the most recent frame, or -1.
func (c *Client) LastTick() int64 { return c.last.Load() }

// Close sends a close frame and drops the connection. Safe to call twice.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.logger.Info("Disconnected")
	return c.conn.Close()
}
