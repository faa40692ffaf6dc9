// Package autosave persists canvas document changes: it debounces change
// events on a trailing edge, suppresses byte-identical payloads, and
// pushes the latest document over the injected message channel as a
// "pad_update" message.
package autosave

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/padws/pad.go/pkg/codec"
	"github.com/padws/pad.go/pkg/logger"
	"github.com/padws/pad.go/pkg/models"
)

// MessageKind is the outbound message kind carrying canvas state.
const MessageKind = "pad_update"

// DefaultInterval is the debounce quiet period between the last observed
// change and the send.
const DefaultInterval = 1200 * time.Millisecond

// ErrClosed is returned by Observe after the pipeline has been closed.
var ErrClosed = errors.New("autosave: pipeline closed")

// Sender is the outbound message capability, implemented by
// connection.WebSocketConnection.
type Sender interface {
	SendMessage(kind string, payload any) error
}

// Gate reports whether the viewer is authenticated. auth.Session
// implements it. Sends are skipped entirely while it returns false.
type Gate interface {
	Authenticated() bool
}

type state int

const (
	stateIdle state = iota
	statePending
	stateSending
)

// Pipeline is an explicit Idle -> Pending -> Sending -> Idle state
// machine. Each observed change replaces the pending payload and re-arms
// the debounce timer, so at most one send happens per quiet period and it
// always carries the latest document.
//
// A failed send is logged and not retried; the next observed change
// attempts again with then-current content.
type Pipeline struct {
	sender    Sender
	gate      Gate
	activeTab func() string
	marshaler codec.Marshaler
	clock     Clock
	interval  time.Duration
	log       logger.Logger

	mu       sync.Mutex
	state    state
	pending  *models.Document
	encoded  []byte
	lastSent []byte
	timer    Timer
	closed   bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInterval overrides the debounce quiet period.
func WithInterval(d time.Duration) Option {
	return func(p *Pipeline) { p.interval = d }
}

func WithClock(c Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithGate installs the authentication gate.
func WithGate(g Gate) Option {
	return func(p *Pipeline) { p.gate = g }
}

// WithActiveTab installs the selected-tab check; sends are skipped while
// it returns "".
func WithActiveTab(fn func() string) Option {
	return func(p *Pipeline) { p.activeTab = fn }
}

func WithMarshaler(m codec.Marshaler) Option {
	return func(p *Pipeline) { p.marshaler = m }
}

func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline builds a Pipeline over the given sender. Without options it
// uses the wall clock, the JSON marshaler, the default interval, and no
// gates.
func NewPipeline(sender Sender, opts ...Option) *Pipeline {
	p := &Pipeline{
		sender:    sender,
		marshaler: codec.JSONMarshaler{},
		clock:     WallClock(),
		interval:  DefaultInterval,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Observe records a canvas document change. The document replaces any
// pending payload and the debounce timer restarts, so the send that
// eventually fires carries the latest observed state.
func (p *Pipeline) Observe(doc models.Document) error {
	encoded, err := p.marshaler.Marshal(doc)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	p.pending = &doc
	p.encoded = encoded

	switch p.state {
	case stateIdle:
		p.state = statePending
		if p.timer == nil {
			p.timer = p.clock.AfterFunc(p.interval, p.fire)
		} else {
			p.timer.Reset(p.interval)
		}
	case statePending:
		p.timer.Reset(p.interval)
	case stateSending:
		// The in-flight send finishes first; its completion re-arms the
		// timer for this payload.
	}

	return nil
}

// fire runs when the quiet period elapses.
func (p *Pipeline) fire() {
	p.mu.Lock()
	if p.state != statePending {
		p.mu.Unlock()
		return
	}
	doc, encoded := p.pending, p.encoded
	p.pending, p.encoded = nil, nil

	if !p.shouldSend(encoded) {
		p.state = stateIdle
		p.mu.Unlock()
		return
	}

	p.state = stateSending
	p.mu.Unlock()

	p.send(doc, encoded)
}

// shouldSend applies the gates and the identical-payload suppression.
// Called with the lock held.
func (p *Pipeline) shouldSend(encoded []byte) bool {
	if p.gate != nil && !p.gate.Authenticated() {
		return false
	}
	if p.activeTab != nil && p.activeTab() == "" {
		return false
	}
	return !bytes.Equal(encoded, p.lastSent)
}

func (p *Pipeline) send(doc *models.Document, encoded []byte) {
	err := p.sender.SendMessage(MessageKind, doc)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.log.Warn("autosave send failed", "error", err)
	} else {
		p.lastSent = encoded
	}

	if p.pending != nil && !p.closed {
		// A change arrived while sending; start a fresh window for it.
		p.state = statePending
		p.timer.Reset(p.interval)
	} else {
		p.state = stateIdle
	}
}

// Flush sends any pending payload immediately, best-effort. Intended for
// teardown (tab switch away, window close) so the final state before
// departure is not lost.
func (p *Pipeline) Flush() {
	p.mu.Lock()
	if p.state != statePending {
		p.mu.Unlock()
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	doc, encoded := p.pending, p.encoded
	p.pending, p.encoded = nil, nil

	if !p.shouldSend(encoded) {
		p.state = stateIdle
		p.mu.Unlock()
		return
	}

	p.state = stateSending
	p.mu.Unlock()

	p.send(doc, encoded)
}

// Close flushes once and stops the pipeline; further Observe calls return
// ErrClosed.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.Flush()
}
