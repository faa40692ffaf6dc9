// Package connection implements the outbound message channel the
// autosave pipeline writes to: a WebSocket carrying kind+payload
// envelopes encoded with the configured codec.
package connection

import "context"

// Message is the wire envelope for the pad.ws message channel.
type Message struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// Connection is a message channel to the backend.
type Connection interface {
	Connect(ctx context.Context) error
	Close() error
	SendMessage(kind string, payload any) error
}
