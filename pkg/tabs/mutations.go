package tabs

import (
	"context"
	"time"

	"github.com/padws/pad.go/pkg/models"
)

// mutation is one optimistic command. Every mutation runs the same
// three-phase protocol in execute: snapshot the cached list, apply the
// optimistic transform synchronously, then perform the network call and
// either confirm (merge server truth) or roll back (restore the
// snapshot). After settlement the full list is refreshed from the server
// to correct any drift.
type mutation struct {
	name string

	// apply transforms the pre-mutation list into the optimistic list.
	// Returning an error rejects the mutation synchronously before any
	// network I/O (guard violations).
	apply func(tabs []models.Tab) ([]models.Tab, error)

	// after runs once the optimistic list is written, for selection
	// adjustments that must follow the list change.
	after func()

	// call performs the network request.
	call func(ctx context.Context) error

	// confirm merges server truth into the cache on success. May be nil
	// when the optimistic state already matches server truth.
	confirm func()

	// rollback restores state on failure. When nil the full pre-mutation
	// snapshot is written back.
	rollback func(snapshot []models.Tab)
}

// execute runs a mutation. Snapshot and optimistic apply happen under the
// mutation lock before execute returns; the network call, settlement and
// refresh run in a goroutine tracked by the returned Settlement.
func (m *Manager) execute(ctx context.Context, mut mutation) (*Settlement, error) {
	m.mutMu.Lock()
	snapshot := models.CloneTabs(m.cachedTabs())

	next, err := mut.apply(models.CloneTabs(snapshot))
	if err != nil {
		m.mutMu.Unlock()
		return nil, err
	}

	m.setTabs(next)
	if mut.after != nil {
		mut.after()
	}
	m.mutMu.Unlock()

	st := newSettlement()
	go func() {
		err := mut.call(ctx)

		m.mutMu.Lock()
		if err != nil {
			m.log.Warn("mutation failed, rolling back", "mutation", mut.name, "error", err)
			if mut.rollback != nil {
				mut.rollback(snapshot)
			} else {
				m.setTabs(snapshot)
			}
		} else if mut.confirm != nil {
			mut.confirm()
		}
		m.mutMu.Unlock()

		m.refresh(ctx)
		st.settle(err)
	}()

	return st, nil
}

// Create inserts a temporary tab synchronously, marks it active and
// issues the create call. On success the temporary tab is replaced in
// place by the server-confirmed one, keeping its list position; if the
// temporary id was still selected the selection moves to the confirmed
// id. On failure only the temporary tab is removed and the previous
// selection is restored, falling back to the first remaining tab.
//
// Concurrent Create calls produce independent temporary tabs that settle
// independently.
func (m *Manager) Create(ctx context.Context) (models.Tab, *Settlement) {
	now := time.Now().UTC()
	temp := models.Tab{
		ID:            models.NewTempID(),
		Title:         models.DefaultTabTitle,
		SharingPolicy: models.SharingPrivate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var (
		prevSelected string
		srv          models.Tab
	)

	st, _ := m.execute(ctx, mutation{
		name: "create",
		apply: func(tabs []models.Tab) ([]models.Tab, error) {
			prevSelected = m.Selected()
			return append(tabs, temp), nil
		},
		after: func() {
			m.Select(temp.ID)
		},
		call: func(ctx context.Context) error {
			created, err := m.api.CreatePad(ctx)
			if err != nil {
				return err
			}
			srv = *created
			return nil
		},
		confirm: func() {
			m.confirmCreate(temp.ID, srv)
		},
		rollback: func([]models.Tab) {
			m.rollbackCreate(temp.ID, prevSelected)
		},
	})

	return temp, st
}

// confirmCreate replaces the temporary tab with the server-assigned one,
// preserving its position. If the temporary tab has been removed in the
// meantime nothing is re-inserted.
func (m *Manager) confirmCreate(tempID string, srv models.Tab) {
	tabs := models.CloneTabs(m.cachedTabs())

	idx := -1
	for i := range tabs {
		if tabs[i].ID == tempID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	wasActive := m.Selected() == tempID
	tabs[idx] = srv
	m.setTabs(tabs)
	if wasActive {
		m.Select(srv.ID)
	}
}

// rollbackCreate removes only the temporary tab and restores the previous
// selection, falling back to the first remaining tab or none.
func (m *Manager) rollbackCreate(tempID, prevSelected string) {
	tabs := m.cachedTabs()
	next := make([]models.Tab, 0, len(tabs))
	for _, tab := range tabs {
		if tab.ID != tempID {
			next = append(next, tab)
		}
	}

	if m.Selected() == tempID {
		switch {
		case containsTab(next, prevSelected):
			m.Select(prevSelected)
		case len(next) > 0:
			m.Select(next[0].ID)
		default:
			m.Select("")
		}
	}
	m.setTabs(next)
}

// Rename updates a tab's title optimistically and issues the rename call.
// On failure the entire pre-mutation list is restored.
func (m *Manager) Rename(ctx context.Context, id, displayName string) (*Settlement, error) {
	if models.IsTempID(id) {
		return nil, ErrTabPending
	}

	return m.execute(ctx, mutation{
		name: "rename",
		apply: func(tabs []models.Tab) ([]models.Tab, error) {
			idx := indexOfTab(tabs, id)
			if idx < 0 {
				return nil, ErrTabNotFound
			}
			tabs[idx].Title = displayName
			tabs[idx].UpdatedAt = time.Now().UTC()
			return tabs, nil
		},
		call: func(ctx context.Context) error {
			return m.api.RenamePad(ctx, id, displayName)
		},
		// No confirm merge: the optimistic title is already server truth,
		// and skipping it means a concurrently deleted tab is never
		// resurrected by a late-arriving rename success.
	})
}

// Delete removes a tab optimistically and issues the delete call.
// Deleting the last remaining tab is rejected synchronously with
// ErrLastTab, before any network I/O. If the deleted tab was selected the
// selection moves to the tab preceding it in the original order, else to
// the new first tab, else is cleared. On failure the full list and the
// previous selection are restored.
func (m *Manager) Delete(ctx context.Context, id string) (*Settlement, error) {
	if models.IsTempID(id) {
		return nil, ErrTabPending
	}

	var (
		prevSelected string
		removedIdx   int
		original     []models.Tab
	)

	return m.execute(ctx, mutation{
		name: "delete",
		apply: func(tabs []models.Tab) ([]models.Tab, error) {
			if len(tabs) <= 1 {
				return nil, ErrLastTab
			}
			idx := indexOfTab(tabs, id)
			if idx < 0 {
				return nil, ErrTabNotFound
			}

			prevSelected = m.Selected()
			removedIdx = idx
			original = models.CloneTabs(tabs)
			return append(tabs[:idx], tabs[idx+1:]...), nil
		},
		after: func() {
			if prevSelected != id {
				return
			}
			remaining := m.cachedTabs()
			switch {
			case removedIdx > 0:
				m.Select(original[removedIdx-1].ID)
			case len(remaining) > 0:
				m.Select(remaining[0].ID)
			default:
				m.Select("")
			}
		},
		call: func(ctx context.Context) error {
			return m.api.DeletePad(ctx, id)
		},
		rollback: func(snapshot []models.Tab) {
			m.setTabs(snapshot)
			m.Select(prevSelected)
		},
	})
}

// SetSharing issues a sharing-policy update. Only UpdatedAt is touched
// optimistically; the policy value itself is server-authoritative and
// comes back with the post-settlement refresh. On failure the full list
// is restored.
func (m *Manager) SetSharing(ctx context.Context, id string, policy models.SharingPolicy) (*Settlement, error) {
	if models.IsTempID(id) {
		return nil, ErrTabPending
	}

	return m.execute(ctx, mutation{
		name: "sharing",
		apply: func(tabs []models.Tab) ([]models.Tab, error) {
			idx := indexOfTab(tabs, id)
			if idx < 0 {
				return nil, ErrTabNotFound
			}
			tabs[idx].UpdatedAt = time.Now().UTC()
			return tabs, nil
		},
		call: func(ctx context.Context) error {
			return m.api.SetSharing(ctx, id, policy)
		},
	})
}

func indexOfTab(tabs []models.Tab, id string) int {
	for i := range tabs {
		if tabs[i].ID == id {
			return i
		}
	}
	return -1
}

func containsTab(tabs []models.Tab, id string) bool {
	return indexOfTab(tabs, id) >= 0
}
