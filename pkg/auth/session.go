// Package auth holds the bearer-token session shared by the HTTP client,
// the message channel and the autosave pipeline.
package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session owns the authentication token for one signed-in user. It is
// constructed at login and cleared at logout; components read it through
// Token and Authenticated rather than holding their own copy.
//
// Session is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	token   string
	expires time.Time

	onClear []func()
}

func NewSession() *Session {
	return &Session{}
}

// SetToken stores the bearer token. If the token is a JWT its expiry claim
// is honored by Authenticated; opaque tokens are treated as non-expiring.
// The token is not signature-verified here: the backend is the verifier,
// the client only needs the expiry to stop sending doomed requests.
func (s *Session) SetToken(token string) {
	var expires time.Time
	if claims, err := parseExpiry(token); err == nil {
		expires = claims
	}

	s.mu.Lock()
	s.token = token
	s.expires = expires
	s.mu.Unlock()
}

func parseExpiry(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, err
	}
	return exp.Time, nil
}

// Token returns the current bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is present and not known to be
// expired.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return false
	}
	if !s.expires.IsZero() && time.Now().After(s.expires) {
		return false
	}
	return true
}

// OnClear registers fn to run when the session is cleared. The tab state
// manager uses this to tear down the local cache at logout.
func (s *Session) OnClear(fn func()) {
	s.mu.Lock()
	s.onClear = append(s.onClear, fn)
	s.mu.Unlock()
}

// Clear signs the session out and runs the registered teardown hooks.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.expires = time.Time{}
	hooks := s.onClear
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
