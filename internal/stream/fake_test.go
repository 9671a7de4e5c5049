package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cybersentry/sentry/pkg/model"
)

type frame struct {
	typ  int
	data []byte
}

// fakeConn is an in-memory connection driven by the test.
type fakeConn struct {
	d      *fakeDialer
	frames chan frame
	done   chan struct{}
	once   sync.Once
	err    error // read error once done is closed
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case f := <-c.frames:
		return f.typ, f.data, nil
	case <-c.done:
		return 0, nil, c.err
	}
}

// Close is the client-side teardown.
func (c *fakeConn) Close() error {
	c.end(errors.New("use of closed network connection"))
	return nil
}

// drop simulates the peer going away.
func (c *fakeConn) drop(err error) {
	c.end(err)
}

func (c *fakeConn) end(err error) {
	c.once.Do(func() {
		c.err = err
		c.d.mu.Lock()
		c.d.closes++
		c.d.mu.Unlock()
		close(c.done)
	})
}

func (c *fakeConn) send(t *testing.T, data string) {
	t.Helper()
	select {
	case c.frames <- frame{typ: websocket.TextMessage, data: []byte(data)}:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out sending frame")
	}
}

// fakeDialer counts opens and closes and can be told to fail.
type fakeDialer struct {
	mu      sync.Mutex
	dials   int
	opens   int
	closes  int
	maxLive int
	addrs   []string
	conns   []*fakeConn
	fail    func(n int) error // n is the 1-based dial number
	block   bool              // wait for ctx before failing
}

func (d *fakeDialer) Dial(ctx context.Context, addr string) (Conn, error) {
	d.mu.Lock()
	d.dials++
	n := d.dials
	d.addrs = append(d.addrs, addr)
	fail, block := d.fail, d.block
	d.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if fail != nil {
		if err := fail(n); err != nil {
			return nil, err
		}
	}

	c := &fakeConn{d: d, frames: make(chan frame), done: make(chan struct{})}
	d.mu.Lock()
	d.opens++
	if live := d.opens - d.closes; live > d.maxLive {
		d.maxLive = live
	}
	d.conns = append(d.conns, c)
	d.mu.Unlock()
	return c, nil
}

func (d *fakeDialer) last(t *testing.T) *fakeConn {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		t.Fatal("no connection dialed")
	}
	return d.conns[len(d.conns)-1]
}

func (d *fakeDialer) counts() (dials, opens, closes, maxLive int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials, d.opens, d.closes, d.maxLive
}

// recorder collects notifications.
type recorder struct {
	mu    sync.Mutex
	items []model.Notification
}

func (r *recorder) Notify(n model.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n.Title)
	}
	return out
}

func (r *recorder) count(title string) int {
	n := 0
	for _, t := range r.titles() {
		if t == title {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestClient(d *fakeDialer, n Notifier, backoff time.Duration) *Client {
	opts := DefaultOptions()
	opts.Dialer = d
	opts.Notifier = n
	opts.ReconnectBackoff = backoff
	return New(opts)
}

var errPeerGone = io.ErrUnexpectedEOF
