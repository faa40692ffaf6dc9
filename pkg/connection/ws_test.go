package connection_test

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padws/pad.go/internal/fakepad"
	"github.com/padws/pad.go/pkg/auth"
	"github.com/padws/pad.go/pkg/connection"
	"github.com/padws/pad.go/pkg/models"
)

func TestSendMessageDeliversEnvelope(t *testing.T) {
	collector := fakepad.NewCollector()
	t.Cleanup(collector.Close)

	session := auth.NewSession()
	session.SetToken("test-token")
	ws := connection.NewWebSocketConnection(collector.URL(), session)

	require.NoError(t, ws.Connect(context.Background()))
	t.Cleanup(func() { _ = ws.Close() })

	doc := models.Document{
		Elements: []any{map[string]any{"type": "text", "text": "hello"}},
		AppState: map[string]any{"zoom": float64(1)},
	}
	require.NoError(t, ws.SendMessage("pad_update", doc))

	require.Eventually(t, func() bool {
		return len(collector.Messages()) == 1
	}, time.Second, 5*time.Millisecond)

	msg := collector.Messages()[0]
	assert.Equal(t, "pad_update", msg.Kind)

	var received models.Document
	require.NoError(t, json.Unmarshal(msg.Payload, &received))
	require.Len(t, received.Elements, 1)
	assert.Equal(t, float64(1), received.AppState["zoom"])
}

func TestSendBeforeConnect(t *testing.T) {
	ws := connection.NewWebSocketConnection("ws://127.0.0.1:1", auth.NewSession())
	assert.ErrorIs(t, ws.SendMessage("pad_update", nil), connection.ErrNotConnected)
}

func TestSendAfterClose(t *testing.T) {
	collector := fakepad.NewCollector()
	t.Cleanup(collector.Close)

	ws := connection.NewWebSocketConnection(collector.URL(), auth.NewSession())
	require.NoError(t, ws.Connect(context.Background()))
	require.NoError(t, ws.Close())

	assert.ErrorIs(t, ws.SendMessage("pad_update", nil), connection.ErrNotConnected)
}

func TestCloseIdempotent(t *testing.T) {
	collector := fakepad.NewCollector()
	t.Cleanup(collector.Close)

	ws := connection.NewWebSocketConnection(collector.URL(), auth.NewSession())
	require.NoError(t, ws.Connect(context.Background()))
	require.NoError(t, ws.Close())
	require.NoError(t, ws.Close())
}
