package padws_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	padws "github.com/padws/pad.go"
	"github.com/padws/pad.go/internal/fakepad"
	"github.com/padws/pad.go/pkg/auth"
	"github.com/padws/pad.go/pkg/autosave"
	"github.com/padws/pad.go/pkg/cache"
	"github.com/padws/pad.go/pkg/connection"
	"github.com/padws/pad.go/pkg/models"
	"github.com/padws/pad.go/pkg/tabs"
)

// TestTabLifecycleEndToEnd drives the manager through the real HTTP
// client against the in-process fake backend.
func TestTabLifecycleEndToEnd(t *testing.T) {
	srv := fakepad.NewServer()
	t.Cleanup(srv.Close)
	srv.Seed(seedPad("p1", "First"))

	session := auth.NewSession()
	session.SetToken("test-token")
	client := padws.NewClient(srv.URL(), session)

	store := cache.NewStore()
	session.OnClear(store.InvalidateAll)

	manager := tabs.NewManager(client, store)
	manager.Tabs()
	require.Eventually(t, func() bool {
		st, _ := manager.LoadStatus()
		return st == tabs.LoadReady
	}, time.Second, time.Millisecond)

	ctx := context.Background()

	created, st := manager.Create(ctx)
	assert.True(t, models.IsTempID(created.ID))
	require.NoError(t, st.Wait(ctx))

	list := manager.Tabs()
	require.Len(t, list, 2)
	confirmed := list[1]
	assert.False(t, models.IsTempID(confirmed.ID))
	assert.Equal(t, confirmed.ID, manager.Selected())

	ren, err := manager.Rename(ctx, confirmed.ID, "Sketches")
	require.NoError(t, err)
	require.NoError(t, ren.Wait(ctx))
	assert.Equal(t, "Sketches", srv.Pads()[1].Title)

	del, err := manager.Delete(ctx, confirmed.ID)
	require.NoError(t, err)
	require.NoError(t, del.Wait(ctx))
	assert.Equal(t, "p1", manager.Selected())
	require.Len(t, srv.Pads(), 1)

	// Logout tears down the cache.
	session.Clear()
	assert.Empty(t, manager.Tabs())
}

// TestAutosaveEndToEnd pushes a document through the pipeline over a
// real WebSocket to the collector.
func TestAutosaveEndToEnd(t *testing.T) {
	collector := fakepad.NewCollector()
	t.Cleanup(collector.Close)

	session := auth.NewSession()
	session.SetToken("test-token")

	ws := connection.NewWebSocketConnection(collector.URL(), session)
	require.NoError(t, ws.Connect(context.Background()))
	t.Cleanup(func() { _ = ws.Close() })

	pipeline := autosave.NewPipeline(ws,
		autosave.WithGate(session),
		autosave.WithActiveTab(func() string { return "p1" }),
	)

	doc := models.Document{
		Elements: []any{map[string]any{"type": "text", "text": "final state"}},
	}
	require.NoError(t, pipeline.Observe(doc))
	pipeline.Flush()

	require.Eventually(t, func() bool {
		return len(collector.Messages()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, autosave.MessageKind, collector.Messages()[0].Kind)
}
