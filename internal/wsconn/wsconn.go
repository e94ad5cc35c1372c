// Package wsconn provides a production-grade WebSocket client with reconnection.
package wsconn

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/fd1az/arb-scanner/internal/apperror"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	ReadLimit      int64
	// OnConnect is called after each successful (re)connect, before reads
	// resume. Used to replay subscriptions.
	OnConnect func(ctx context.Context, c *Client) error
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
		ReadLimit:      1 << 20,
	}
}

// Client is a WebSocket client that reconnects with exponential backoff
// and surfaces received messages on a channel.
type Client struct {
	config   Config
	state    State
	stateMu  sync.RWMutex
	conn     *websocket.Conn
	connMu   sync.Mutex
	messages chan []byte
	done     chan struct{}
	closed   atomic.Bool
	wg       sync.WaitGroup
}

// New creates a new WebSocket client.
func New(config Config) *Client {
	return &Client{
		config:   config,
		state:    StateDisconnected,
		messages: make(chan []byte, 100),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the read loop.
// The read loop reconnects automatically until Close is called or the
// context is cancelled.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return apperror.New(apperror.CodeWebSocketClosed)
	}

	c.setState(StateConnecting)

	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected)
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{"url": c.config.URL}))
	}

	c.setState(StateConnected)

	c.wg.Add(1)
	go c.run(ctx)

	return nil
}

// Send sends a text message through the WebSocket.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()

	if conn == nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithMessage("connection not established"))
	}
	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError, apperror.WithCause(err))
	}
	return nil
}

// Messages returns the channel for receiving messages. The channel is
// closed when the client shuts down for good.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// Close gracefully closes the WebSocket connection.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close(websocket.StatusNormalClosure, "shutting down")
	}
	c.connMu.Unlock()

	c.wg.Wait()
	c.setState(StateDisconnected)
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.config.URL, nil)
	if err != nil {
		return err
	}
	if c.config.ReadLimit > 0 {
		conn.SetReadLimit(c.config.ReadLimit)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	if c.config.OnConnect != nil {
		if err := c.config.OnConnect(ctx, c); err != nil {
			conn.Close(websocket.StatusInternalError, "subscribe failed")
			return err
		}
	}
	return nil
}

// run reads messages until the connection drops, then reconnects with
// exponential backoff.
func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()
	defer close(c.messages)

	reconnects := 0
	for {
		c.readLoop(ctx)

		if c.shuttingDown(ctx) {
			return
		}

		reconnects++
		if c.config.MaxReconnects > 0 && reconnects > c.config.MaxReconnects {
			return
		}

		c.setState(StateReconnecting)
		backoff := c.backoffFor(reconnects)

		select {
		case <-time.After(backoff):
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}

		if err := c.dial(ctx); err != nil {
			continue
		}
		reconnects = 0
		c.setState(StateConnected)
	}
}

// readLoop reads until the connection errors or the client shuts down.
func (c *Client) readLoop(ctx context.Context) {
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()

	if c.config.PingInterval > 0 {
		go c.pingLoop(pingCtx)
	}

	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		select {
		case c.messages <- data:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			c.connMu.Unlock()
			if conn == nil {
				return
			}
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) shuttingDown(ctx context.Context) bool {
	if c.closed.Load() {
		return true
	}
	select {
	case <-c.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *Client) backoffFor(attempt int) time.Duration {
	backoff := c.config.InitialBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= c.config.MaxBackoff {
			return c.config.MaxBackoff
		}
	}
	if c.config.MaxBackoff > 0 && backoff > c.config.MaxBackoff {
		backoff = c.config.MaxBackoff
	}
	return backoff
}

// ErrClosed reports whether err means the client was closed on purpose.
func ErrClosed(err error) bool {
	return errors.Is(err, context.Canceled) ||
		websocket.CloseStatus(err) == websocket.StatusNormalClosure
}
