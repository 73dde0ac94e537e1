package dropinblog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingHookID is returned when a webhook registration response carries
// no hookId.
var ErrMissingHookID = errors.New("webhook response did not include a hookId")

// APIError is a non-2xx response from the DropInBlog API.
type APIError struct {
	StatusCode int    // HTTP status code
	Method     string // Request method
	Path       string // Request path, without query
	Message    string // Message extracted from the response, if any
	Body       []byte // Raw response body
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (status %d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("API returned status %d on %s %s: %s", e.StatusCode, e.Method, e.Path, string(e.Body))
}

// newAPIError builds an APIError, extracting the remote message when the
// body is a JSON object with a "message" or "error" field.
func newAPIError(statusCode int, method, path string, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Method:     method,
		Path:       path,
		Body:       body,
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Error != "":
			apiErr.Message = payload.Error
		}
	}

	return apiErr
}

// CredentialError means an access token could not be obtained or refreshed.
// It is never retried.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential error: %v", e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}
