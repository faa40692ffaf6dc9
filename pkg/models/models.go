// Package models defines the client-side projections of the pad.ws API
// entities: pads as they appear in the tab strip, the authenticated user,
// and the canvas document payload.
package models

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// SharingPolicy controls whether other users may open a pad.
type SharingPolicy string

const (
	SharingPrivate SharingPolicy = "private"
	SharingPublic  SharingPolicy = "public"
)

// Valid reports whether p is one of the policies the backend accepts.
func (p SharingPolicy) Valid() bool {
	return p == SharingPrivate || p == SharingPublic
}

// DefaultTabTitle is the display name given to a freshly created pad
// before the user renames it.
const DefaultTabTitle = "New pad"

// Tab is the client-side projection of a pad within the tab strip.
//
// IDs are assigned by the backend, except for temporary tabs created
// optimistically before the create call settles; see NewTempID.
type Tab struct {
	ID            string        `json:"id"`
	Title         string        `json:"display_name"`
	OwnerID       string        `json:"owner_id"`
	SharingPolicy SharingPolicy `json:"sharing_policy,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// User is the authenticated user's profile as returned by /api/users/me,
// including the pads owned by or shared with them.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Pads     []Tab  `json:"pads"`
}

// Document is the canvas content of a single pad: the drawn elements, the
// viewport/application state and any attached files. The SDK treats the
// three parts as opaque JSON-compatible values; only the backend and the
// canvas library interpret them.
type Document struct {
	Elements []any          `json:"elements"`
	AppState map[string]any `json:"appState"`
	Files    map[string]any `json:"files"`
}

const tempIDPrefix = "tmp_"

// NewTempID generates a locally unique tab id for an optimistically
// inserted tab. Temp ids never collide with server ids, which are plain
// UUIDs without a prefix.
func NewTempID() string {
	return tempIDPrefix + uuid.Must(uuid.NewV4()).String()
}

// IsTempID reports whether id was generated by NewTempID rather than
// assigned by the backend.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// CloneTabs returns a deep copy of tabs, used to snapshot the cached list
// before an optimistic mutation.
func CloneTabs(tabs []Tab) []Tab {
	if tabs == nil {
		return nil
	}
	out := make([]Tab, len(tabs))
	copy(out, tabs)
	return out
}
