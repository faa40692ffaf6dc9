package padws

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/padws/pad.go/pkg/auth"
	"github.com/padws/pad.go/pkg/models"
)

// DefaultTimeout bounds every request made by a Client constructed with
// NewClient. Override with SetHTTPClient.
const DefaultTimeout = 30 * time.Second

// Client is a typed HTTP client for the pad store API. It attaches the
// session's bearer token to every request and turns non-2xx responses
// into *APIError values.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *auth.Session
}

// NewClient creates a Client for the backend at baseURL (scheme and host,
// no trailing slash). The session supplies the bearer token; it may be
// updated or cleared at any time and subsequent requests pick up the
// change.
func NewClient(baseURL string, session *auth.Session) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		session:    session,
	}
}

// SetHTTPClient replaces the underlying *http.Client, for callers that
// need custom transports or timeouts.
func (c *Client) SetHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, body)
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// Me fetches the authenticated user's profile, including their pads.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/users/me", nil)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := decodeResponse(resp, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// ListPads fetches the pads visible to the authenticated user.
func (c *Client) ListPads(ctx context.Context) ([]models.Tab, error) {
	user, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	return user.Pads, nil
}

// CreatePad creates a new pad and returns the server-assigned record.
func (c *Client) CreatePad(ctx context.Context) (*models.Tab, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/pad/new", nil)
	if err != nil {
		return nil, err
	}

	var tab models.Tab
	if err := decodeResponse(resp, &tab); err != nil {
		return nil, err
	}

	return &tab, nil
}

// RenamePad changes a pad's display name.
func (c *Client) RenamePad(ctx context.Context, id, displayName string) error {
	body := map[string]string{"display_name": displayName}
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/pad/%s/rename", id), body)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// DeletePad deletes a pad.
func (c *Client) DeletePad(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/pad/%s", id), nil)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// SetSharing updates a pad's sharing policy.
func (c *Client) SetSharing(ctx context.Context, id string, policy models.SharingPolicy) error {
	if !policy.Valid() {
		return fmt.Errorf("invalid sharing policy %q", policy)
	}

	body := map[string]models.SharingPolicy{"policy": policy}
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/pad/%s/sharing", id), body)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}

// GetPad fetches a pad's canvas document.
func (c *Client) GetPad(ctx context.Context, id string) (*models.Document, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/pad/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := decodeResponse(resp, &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}
