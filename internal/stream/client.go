// Package stream implements the alert feed client: one logical connection
// to the feed, bounded fixed-interval reconnection, and fan-out of decoded
// alerts to subscribers.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cybersentry/sentry/internal/config"
	"github.com/cybersentry/sentry/internal/logging"
	"github.com/cybersentry/sentry/pkg/model"
)

const (
	DefaultAddress              = "ws://localhost:8000/ws"
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectBackoff     = 3 * time.Second
)

// Listener is called once per decoded alert, on the connection's reader
// goroutine. It should return quickly; the next frame is not read until
// every listener has returned.
type Listener func(model.NetworkAlert)

// Subscription identifies one AddListener registration.
type Subscription uint64

type Options struct {
	Address              string // used when Connect is given ""
	MaxReconnectAttempts int
	ReconnectBackoff     time.Duration
	// ResetAttemptsOnConnect gives a caller-initiated Connect a fresh
	// attempt budget. Automatic retries never reset it.
	ResetAttemptsOnConnect bool

	Dialer   Dialer
	Notifier Notifier
	Logger   *zap.Logger
}

// DefaultOptions returns the stock client settings.
func DefaultOptions() Options {
	return Options{
		Address:                DefaultAddress,
		MaxReconnectAttempts:   DefaultMaxReconnectAttempts,
		ReconnectBackoff:       DefaultReconnectBackoff,
		ResetAttemptsOnConnect: true,
	}
}

// OptionsFromConfig maps the [stream] config section onto Options with a
// gorilla/websocket dialer.
func OptionsFromConfig(cfg config.StreamConfig) Options {
	return Options{
		Address:                cfg.Address,
		MaxReconnectAttempts:   cfg.MaxReconnectAttempts,
		ReconnectBackoff:       cfg.ReconnectBackoff.Duration,
		ResetAttemptsOnConnect: cfg.ResetAttemptsOnConnect,
		Dialer:                 WSDialer{HandshakeTimeout: cfg.HandshakeTimeout.Duration},
	}
}

// State is a point-in-time view of a Client.
type State struct {
	Address          string
	Connected        bool
	Attempts         int
	MaxAttempts      int
	ReconnectPending bool
	Exhausted        bool
}

type subscriber struct {
	id Subscription
	fn Listener
}

// Client owns at most one live connection at a time. All methods are safe
// for concurrent use.
//
// Every Connect and Disconnect bumps gen. Reader goroutines and pending
// retries carry the gen they were started under, so closes caused by the
// caller tearing a connection down are recognised as stale and never
// schedule a reconnect.
type Client struct {
	opts   Options
	logger *zap.Logger

	mu         sync.Mutex
	conn       Conn
	gen        uint64
	connected  bool
	attempts   int
	exhausted  bool
	addr       string
	retry      *time.Timer
	cancelDial context.CancelFunc
	subs       []subscriber
	nextSub    Subscription
}

func New(opts Options) *Client {
	if opts.Address == "" {
		opts.Address = DefaultAddress
	}
	if opts.ReconnectBackoff <= 0 {
		opts.ReconnectBackoff = DefaultReconnectBackoff
	}
	if opts.MaxReconnectAttempts < 0 {
		opts.MaxReconnectAttempts = 0
	}
	if opts.Dialer == nil {
		opts.Dialer = WSDialer{}
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}

	return &Client{
		opts:   opts,
		logger: logging.OrNop(opts.Logger).Named("stream"),
		addr:   opts.Address,
	}
}

// Connect tears down any existing connection, then dials address (or the
// configured default when empty). The teardown never triggers a reconnect.
//
// A failed dial is reported to the Notifier and enters the reconnect cycle
// like any other unsolicited close; the error is also returned.
func (c *Client) Connect(ctx context.Context, address string) error {
	if address == "" {
		address = c.opts.Address
	}
	return c.open(ctx, address, true, 0)
}

// Disconnect closes the live connection, cancels any in-flight dial and any
// pending reconnect. Nothing is retried afterwards.
func (c *Client) Disconnect() {
	c.mu.Lock()
	hadConn := c.conn != nil
	c.teardownLocked()
	c.gen++
	c.mu.Unlock()

	if hadConn {
		c.logger.Info("disconnected")
	}
}

// AddListener registers fn for every future alert. Registering the same
// function twice yields two independent subscriptions.
func (c *Client) AddListener(fn Listener) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSub++
	c.subs = append(c.subs, subscriber{id: c.nextSub, fn: fn})
	return c.nextSub
}

// RemoveListener drops the registration; unknown tokens are ignored.
func (c *Client) RemoveListener(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.subs[:0]
	for _, s := range c.subs {
		if s.id != sub {
			kept = append(kept, s)
		}
	}
	// clear the tail so removed closures can be collected
	for i := len(kept); i < len(c.subs); i++ {
		c.subs[i] = subscriber{}
	}
	c.subs = kept
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) ReconnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Client) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Address:          c.addr,
		Connected:        c.connected,
		Attempts:         c.attempts,
		MaxAttempts:      c.opts.MaxReconnectAttempts,
		ReconnectPending: c.retry != nil,
		Exhausted:        c.exhausted,
	}
}

// open dials addr. Manual opens always proceed; automatic ones (retries)
// only if nothing happened since the retry was scheduled under expect.
func (c *Client) open(ctx context.Context, addr string, manual bool, expect uint64) error {
	c.mu.Lock()
	if !manual && (c.gen != expect || c.connected) {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.teardownLocked()
	c.gen++
	gen := c.gen
	c.addr = addr
	c.exhausted = false
	if manual && c.opts.ResetAttemptsOnConnect {
		c.attempts = 0
	}
	dialCtx, cancel := context.WithCancel(ctx)
	c.cancelDial = cancel
	c.mu.Unlock()
	defer cancel()

	c.logger.Debug("dialing", zap.String("addr", addr), zap.Bool("manual", manual))
	conn, err := c.opts.Dialer.Dial(dialCtx, addr)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrSuperseded
	}
	c.cancelDial = nil
	if err != nil {
		c.mu.Unlock()
		err = fmt.Errorf("%w: dial %s: %w", ErrTransport, addr, err)
		c.handleClose(gen, err)
		return err
	}
	c.conn = conn
	c.connected = true
	c.attempts = 0
	c.mu.Unlock()

	c.logger.Info("connection established", zap.String("addr", addr))
	c.opts.Notifier.Notify(connectedNotification)

	go c.readLoop(conn, gen)
	return nil
}

// teardownLocked drops every resource tied to the current generation. The
// connection is closed while the lock is held so that at no point do two
// underlying connections exist.
func (c *Client) teardownLocked() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("close failed", zap.Error(err))
		}
		c.conn = nil
	}
	c.connected = false
}

func (c *Client) readLoop(conn Conn, gen uint64) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if isCleanClose(err) {
				err = fmt.Errorf("%w: %v", ErrConnectionClosed, err)
			} else {
				err = fmt.Errorf("%w: %w", ErrTransport, err)
			}
			c.handleClose(gen, err)
			return
		}

		if msgType != websocket.TextMessage {
			c.logger.Warn("dropping non-text frame", zap.Int("type", msgType))
			continue
		}
		alert, err := DecodeAlert(data)
		if err != nil {
			c.logger.Warn("dropping malformed alert", zap.Error(err), zap.Int("bytes", len(data)))
			continue
		}
		c.dispatch(gen, alert)
	}
}

// dispatch delivers alert to a snapshot of the listeners. Frames read from
// a generation that has since been torn down are dropped.
func (c *Client) dispatch(gen uint64, alert model.NetworkAlert) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.logger.Debug("dropping alert from superseded connection", zap.Uint64("gen", gen))
		return
	}
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(alert)
	}
}

// handleClose runs the reconnect procedure for an unsolicited close of
// generation gen. Closes from a superseded generation are ignored.
func (c *Client) handleClose(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.connected = false

	exhausted := c.attempts >= c.opts.MaxReconnectAttempts
	if exhausted {
		c.exhausted = true
	} else {
		c.attempts++
		c.retry = time.AfterFunc(c.opts.ReconnectBackoff, func() {
			c.reconnect(gen)
		})
	}
	attempt, addr := c.attempts, c.addr
	c.mu.Unlock()

	if errors.Is(cause, ErrTransport) {
		c.logger.Warn("connection error", zap.Error(cause))
		c.opts.Notifier.Notify(transportErrorNotification)
	} else {
		c.logger.Info("connection closed", zap.Error(cause))
	}

	if exhausted {
		c.logger.Error("giving up on feed",
			zap.String("addr", addr),
			zap.Int("attempts", attempt),
			zap.Error(ErrRetryExhausted))
		c.opts.Notifier.Notify(exhaustedNotification)
		return
	}
	c.logger.Info("reconnect scheduled",
		zap.Int("attempt", attempt),
		zap.Int("max", c.opts.MaxReconnectAttempts),
		zap.Duration("backoff", c.opts.ReconnectBackoff))
}

func (c *Client) reconnect(gen uint64) {
	c.mu.Lock()
	addr := c.addr
	c.mu.Unlock()

	err := c.open(context.Background(), addr, false, gen)
	if errors.Is(err, ErrSuperseded) {
		c.logger.Debug("scheduled reconnect skipped", zap.Uint64("gen", gen))
	}
}
