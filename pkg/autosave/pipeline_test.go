package autosave

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padws/pad.go/pkg/models"
)

// manualClock drives the debounce timer by hand.
type manualClock struct {
	mu    sync.Mutex
	timer *manualTimer
}

type manualTimer struct {
	mu     sync.Mutex
	fn     func()
	armed  bool
	delay  time.Duration
	resets int
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = &manualTimer{fn: fn, armed: true, delay: d}
	return c.timer
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := t.armed
	t.armed = false
	return was
}

func (t *manualTimer) Reset(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := t.armed
	t.armed = true
	t.delay = d
	t.resets++
	return was
}

// fire simulates the quiet period elapsing.
func (c *manualClock) fire() {
	c.mu.Lock()
	t := c.timer
	c.mu.Unlock()
	if t == nil {
		return
	}

	t.mu.Lock()
	armed := t.armed
	t.armed = false
	fn := t.fn
	t.mu.Unlock()

	if armed {
		fn()
	}
}

type recordingSender struct {
	mu    sync.Mutex
	err   error
	sends []sentMessage

	onSend func()
}

type sentMessage struct {
	kind    string
	payload any
}

func (r *recordingSender) SendMessage(kind string, payload any) error {
	r.mu.Lock()
	r.sends = append(r.sends, sentMessage{kind: kind, payload: payload})
	err := r.err
	hook := r.onSend
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sends)
}

func (r *recordingSender) last() sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sends[len(r.sends)-1]
}

type staticGate bool

func (g staticGate) Authenticated() bool { return bool(g) }

func docWithText(text string) models.Document {
	return models.Document{
		Elements: []any{map[string]any{"type": "text", "text": text}},
		AppState: map[string]any{"zoom": 1},
	}
}

func newTestPipeline(sender Sender, clock *manualClock, opts ...Option) *Pipeline {
	base := []Option{
		WithClock(clock),
		WithGate(staticGate(true)),
		WithActiveTab(func() string { return "pad-a" }),
	}
	return NewPipeline(sender, append(base, opts...)...)
}

func TestDebounceCoalescesToLatestPayload(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock)

	// Three changes inside one quiet period produce exactly one send,
	// carrying the last observed state.
	require.NoError(t, p.Observe(docWithText("t=0")))
	require.NoError(t, p.Observe(docWithText("t=300")))
	require.NoError(t, p.Observe(docWithText("t=600")))

	assert.Equal(t, 0, sender.count(), "nothing sent before the window elapses")

	clock.fire()

	require.Equal(t, 1, sender.count())
	msg := sender.last()
	assert.Equal(t, MessageKind, msg.kind)
	doc := msg.payload.(*models.Document)
	assert.Equal(t, "t=600", doc.Elements[0].(map[string]any)["text"])
}

func TestEachObservationReArmsTimer(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock)

	require.NoError(t, p.Observe(docWithText("a")))
	require.NoError(t, p.Observe(docWithText("b")))

	assert.Equal(t, 1, clock.timer.resets, "trailing edge: later changes restart the quiet period")
	assert.Equal(t, DefaultInterval, clock.timer.delay)
}

func TestIdenticalPayloadSuppressed(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock)

	require.NoError(t, p.Observe(docWithText("same")))
	clock.fire()
	require.Equal(t, 1, sender.count())

	require.NoError(t, p.Observe(docWithText("same")))
	clock.fire()
	assert.Equal(t, 1, sender.count(), "byte-identical payload must not be resent")

	require.NoError(t, p.Observe(docWithText("different")))
	clock.fire()
	assert.Equal(t, 2, sender.count())
}

func TestUnauthenticatedSkipsSend(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock, WithGate(staticGate(false)))

	require.NoError(t, p.Observe(docWithText("a")))
	clock.fire()

	assert.Equal(t, 0, sender.count())
}

func TestNoSelectedTabSkipsSend(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock, WithActiveTab(func() string { return "" }))

	require.NoError(t, p.Observe(docWithText("a")))
	clock.fire()

	assert.Equal(t, 0, sender.count())
}

func TestFailedSendRetriesOnNextChange(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{err: errors.New("boom")}
	p := newTestPipeline(sender, clock)

	require.NoError(t, p.Observe(docWithText("a")))
	clock.fire()
	require.Equal(t, 1, sender.count())

	// The failed payload was not recorded as sent, so the same content
	// goes out again on the next window.
	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()

	require.NoError(t, p.Observe(docWithText("a")))
	clock.fire()
	assert.Equal(t, 2, sender.count())
}

func TestChangeDuringSendStartsNewWindow(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock)

	sender.onSend = func() {
		sender.onSend = nil
		require.NoError(t, p.Observe(docWithText("late")))
	}

	require.NoError(t, p.Observe(docWithText("early")))
	clock.fire()
	require.Equal(t, 1, sender.count())

	clock.fire()
	require.Equal(t, 2, sender.count())
	doc := sender.last().payload.(*models.Document)
	assert.Equal(t, "late", doc.Elements[0].(map[string]any)["text"])
}

func TestFlushSendsPendingImmediately(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock)

	require.NoError(t, p.Observe(docWithText("final")))
	p.Flush()

	require.Equal(t, 1, sender.count())
	doc := sender.last().payload.(*models.Document)
	assert.Equal(t, "final", doc.Elements[0].(map[string]any)["text"])

	// The timer was stopped; its expiry must not double-send.
	clock.fire()
	assert.Equal(t, 1, sender.count())
}

func TestFlushWithNothingPending(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock)

	p.Flush()
	assert.Equal(t, 0, sender.count())
}

func TestCloseFlushesAndStops(t *testing.T) {
	clock := &manualClock{}
	sender := &recordingSender{}
	p := newTestPipeline(sender, clock)

	require.NoError(t, p.Observe(docWithText("teardown")))
	p.Close()

	require.Equal(t, 1, sender.count(), "close flushes the pending payload")
	assert.ErrorIs(t, p.Observe(docWithText("after")), ErrClosed)

	p.Close() // idempotent
	assert.Equal(t, 1, sender.count())
}
