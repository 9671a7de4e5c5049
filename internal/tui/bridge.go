package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cybersentry/sentry/pkg/model"
)

type alertMsg model.NetworkAlert

type notifyMsg model.Notification

// maxPending bounds what a Bridge holds before a program is attached.
const maxPending = 64

// Bridge forwards stream callbacks into a running program. It implements
// stream.Notifier, and Alert has the stream.Listener signature. Messages
// that arrive before Start are held and delivered once the program runs,
// in arrival order.
type Bridge struct {
	mu      sync.Mutex
	p       *tea.Program // set once the backlog is drained
	pending []tea.Msg
	closed  bool
}

func (b *Bridge) Notify(n model.Notification) { b.send(notifyMsg(n)) }

func (b *Bridge) Alert(a model.NetworkAlert) { b.send(alertMsg(a)) }

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.p
	if p == nil {
		if !b.closed && len(b.pending) < maxPending {
			b.pending = append(b.pending, msg)
		}
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	// Send blocks until the program's loop receives or it has exited
	p.Send(msg)
}

// attach starts draining the backlog into p. Messages keep queueing behind
// the backlog until it is empty; only then do callers send directly.
func (b *Bridge) attach(p *tea.Program) {
	go b.drain(p)
}

func (b *Bridge) drain(p *tea.Program) {
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return
		}
		if len(b.pending) == 0 {
			b.p = p
			b.mu.Unlock()
			return
		}
		msg := b.pending[0]
		b.pending = b.pending[1:]
		b.mu.Unlock()

		p.Send(msg)
	}
}

// detach drops the program; later messages are discarded.
func (b *Bridge) detach() {
	b.mu.Lock()
	b.p = nil
	b.closed = true
	b.pending = nil
	b.mu.Unlock()
}
