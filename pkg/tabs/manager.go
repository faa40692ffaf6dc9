// Package tabs implements the tab state manager: the single source of
// truth for which pads exist, their metadata, and which one is active,
// reconciled against the remote pad store through optimistic mutations on
// the local query cache.
package tabs

import (
	"context"
	"errors"
	"sync"

	"github.com/padws/pad.go/pkg/cache"
	"github.com/padws/pad.go/pkg/logger"
	"github.com/padws/pad.go/pkg/models"
)

// Cache keys owned by the manager. Only the manager's mutation paths
// write keyTabs; every other component reads it reactively.
const (
	keyTabs      = "padTabs"
	keyDocPrefix = "pad/"
)

var (
	// ErrLastTab is returned when deleting the only remaining tab. The
	// guard rejects the call before any network I/O.
	ErrLastTab = errors.New("tabs: cannot delete the last remaining tab")

	// ErrTabNotFound is returned when a mutation targets an id that is
	// not in the current list.
	ErrTabNotFound = errors.New("tabs: no such tab")

	// ErrTabPending is returned when a mutation targets a temporary tab
	// whose create call has not settled yet.
	ErrTabPending = errors.New("tabs: tab creation still pending")
)

// LoadState describes the state of the initial tab list fetch.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadPending
	LoadReady
	LoadFailed
)

// PadStore is the remote API surface the manager mutates against.
// *padws.Client implements it.
type PadStore interface {
	ListPads(ctx context.Context) ([]models.Tab, error)
	CreatePad(ctx context.Context) (*models.Tab, error)
	RenamePad(ctx context.Context, id, displayName string) error
	DeletePad(ctx context.Context, id string) error
	SetSharing(ctx context.Context, id string, policy models.SharingPolicy) error
	GetPad(ctx context.Context, id string) (*models.Document, error)
}

// Manager owns the cached tab list and the selected tab id. All mutations
// go through the optimistic three-phase protocol: snapshot, apply,
// confirm-or-restore, then a background refresh against server truth.
type Manager struct {
	api   PadStore
	store *cache.Store
	log   logger.Logger

	// mutMu serializes the snapshot+apply phase of mutations so each
	// snapshot is consistent with the list it was taken from. Network
	// calls run outside it.
	mutMu sync.Mutex

	mu        sync.RWMutex
	selected  string
	loadState LoadState
	loadErr   error

	fetchOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(log logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager builds a Manager over the given remote store and cache. The
// selection-validity rule is installed as a cache subscription so it also
// covers list changes the manager did not initiate.
func NewManager(api PadStore, store *cache.Store, opts ...Option) *Manager {
	m := &Manager{
		api:   api,
		store: store,
		log:   logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	store.Subscribe(func(key string) {
		if key == keyTabs {
			m.ensureValidSelection()
		}
	})

	return m
}

// Tabs returns the cached tab list. The first call triggers one
// background fetch; while it is in flight the list is empty. A failed
// fetch is reported through LoadStatus rather than here.
func (m *Manager) Tabs() []models.Tab {
	m.fetchOnce.Do(func() {
		m.mu.Lock()
		m.loadState = LoadPending
		m.mu.Unlock()

		go m.refresh(context.Background())
	})

	return models.CloneTabs(m.cachedTabs())
}

// LoadStatus reports the state of the initial fetch and, when it failed,
// the error.
func (m *Manager) LoadStatus() (LoadState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadState, m.loadErr
}

// Select records id as the active tab. No network call is issued; ids not
// present in the list are recorded as requested and surface as "no active
// tab" through Active.
func (m *Manager) Select(id string) {
	m.mu.Lock()
	m.selected = id
	m.mu.Unlock()
}

// Selected returns the recorded selection, which may reference a tab not
// currently in the list.
func (m *Manager) Selected() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

// Active resolves the selection against the current list. It returns
// false when nothing is selected or the selected id has no matching tab.
func (m *Manager) Active() (models.Tab, bool) {
	id := m.Selected()
	if id == "" {
		return models.Tab{}, false
	}

	for _, tab := range m.cachedTabs() {
		if tab.ID == id {
			return tab, true
		}
	}
	return models.Tab{}, false
}

// ActiveID returns the selected id only when it resolves to a tab in the
// list; otherwise "". The autosave pipeline gates on it.
func (m *Manager) ActiveID() string {
	tab, ok := m.Active()
	if !ok {
		return ""
	}
	return tab.ID
}

// Open returns the canvas document for the given pad, serving it from the
// cache when possible and fetching it otherwise.
func (m *Manager) Open(ctx context.Context, id string) (*models.Document, error) {
	if v, ok := m.store.Get(keyDocPrefix + id); ok {
		if doc, ok := v.(*models.Document); ok {
			return doc, nil
		}
	}

	doc, err := m.api.GetPad(ctx, id)
	if err != nil {
		return nil, err
	}

	m.store.Set(keyDocPrefix+id, doc)
	return doc, nil
}

// Invalidate drops the cached document for a pad, forcing the next Open
// to refetch.
func (m *Manager) Invalidate(id string) {
	m.store.Invalidate(keyDocPrefix + id)
}

func (m *Manager) cachedTabs() []models.Tab {
	v, ok := m.store.Get(keyTabs)
	if !ok {
		return nil
	}
	tabs, _ := v.([]models.Tab)
	return tabs
}

func (m *Manager) setTabs(tabs []models.Tab) {
	m.store.Set(keyTabs, tabs)
}

// refresh replaces the cached list with server truth. It runs after every
// settlement and as the initial fetch; failures during settlement
// refreshes are logged and leave the optimistic state in place.
func (m *Manager) refresh(ctx context.Context) {
	list, err := m.api.ListPads(ctx)
	if err != nil {
		m.mu.Lock()
		if m.loadState == LoadPending {
			m.loadState = LoadFailed
			m.loadErr = err
		}
		m.mu.Unlock()

		m.log.Warn("tab list refresh failed", "error", err)
		return
	}

	m.setTabs(list)

	m.mu.Lock()
	m.loadState = LoadReady
	m.loadErr = nil
	m.mu.Unlock()
}

// ensureValidSelection reassigns the selection when the list no longer
// contains it: first tab if any, empty otherwise. Registered as a cache
// subscription so it runs on every list write, including background
// refreshes that reveal tabs deleted by another session.
func (m *Manager) ensureValidSelection() {
	tabs := m.cachedTabs()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == "" {
		return
	}
	for _, tab := range tabs {
		if tab.ID == m.selected {
			return
		}
	}

	if len(tabs) > 0 {
		m.selected = tabs[0].ID
	} else {
		m.selected = ""
	}
}
