package padws

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// APIError is returned for any non-2xx response from the pad store.
// Message is extracted best-effort from a "message" or "detail" field in
// the response body, falling back to a generic message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pad store: %s (status %d)", e.Message, e.StatusCode)
}

const genericErrorMessage = "request failed"

func newAPIError(statusCode int, body []byte) *APIError {
	msg := genericErrorMessage
	if len(body) > 0 {
		if m, err := jsonparser.GetString(body, "message"); err == nil && m != "" {
			msg = m
		} else if d, err := jsonparser.GetString(body, "detail"); err == nil && d != "" {
			msg = d
		}
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

// AsAPIError unwraps err into an *APIError if there is one in its chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
