// Package padws is a Go client SDK for the pad.ws backend.
//
// It provides a typed HTTP client for the pad store API ([Client]), a
// local query cache with optimistic tab mutations
// ([github.com/padws/pad.go/pkg/tabs.Manager]), and a debounced autosave
// pipeline for canvas documents
// ([github.com/padws/pad.go/pkg/autosave.Pipeline]).
//
// Typical setup:
//
//	session := auth.NewSession()
//	session.SetToken(token)
//
//	client := padws.NewClient("https://pad.example.com", session)
//	store := cache.NewStore()
//	manager := tabs.NewManager(client, store, tabs.WithLogger(log))
//
//	tabsNow := manager.Tabs() // triggers the initial background fetch
//
// Mutations apply optimistically and settle in the background:
//
//	tab, settlement := manager.Create()
//	// tab is already in manager.Tabs() and selected
//	if err := settlement.Wait(ctx); err != nil {
//		// the temporary tab has been rolled back
//	}
package padws
