package fakepad

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/lxzan/gws"
)

// ReceivedMessage is one envelope captured by the Collector, with the
// payload left raw for the test to decode.
type ReceivedMessage struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Collector is a WebSocket server that records every envelope it
// receives on the message channel.
type Collector struct {
	gws.BuiltinEventHandler

	mu       sync.Mutex
	messages []ReceivedMessage

	httpServer *httptest.Server
}

// NewCollector starts a collector on a local listener.
func NewCollector() *Collector {
	c := &Collector{}
	upgrader := gws.NewUpgrader(c, &gws.ServerOption{})

	c.httpServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r)
		if err != nil {
			return
		}
		go socket.ReadLoop()
	}))

	return c
}

// URL returns the ws:// URL of the collector.
func (c *Collector) URL() string {
	return "ws" + strings.TrimPrefix(c.httpServer.URL, "http")
}

func (c *Collector) Close() {
	c.httpServer.Close()
}

func (c *Collector) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	var msg ReceivedMessage
	if err := json.Unmarshal(message.Bytes(), &msg); err != nil {
		return
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// Messages returns the envelopes received so far.
func (c *Collector) Messages() []ReceivedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ReceivedMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
