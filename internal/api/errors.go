package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ubae_shell/internal/model"
)

// Error is a non-2xx response from the upstream API.
type Error struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// Is lets callers match status classes with errors.Is against model errors.
func (e *Error) Is(target error) bool {
	switch target {
	case model.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	default:
		return false
	}
}

func (e *Error) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// parseError builds an Error from a response body of the form
// {"message": "..."}. Bodies that are not JSON are used verbatim.
func parseError(statusCode int, body []byte) error {
	apiErr := &Error{StatusCode: statusCode}
	if len(body) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	return apiErr
}
