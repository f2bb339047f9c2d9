package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const GenericErrorMessage = "Something went wrong. Please try again."

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// APIError is a non-2xx answer from the REST API. Message is what the
// server said, or GenericErrorMessage when it said nothing usable.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is lets callers match on status classes with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// errorBody covers both {"message": "..."} and
// {"error": {"code": "...", "message": "..."}}, as well as {"error": "..."}.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func newAPIError(resp *http.Response, requestID string) *APIError {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		Message:   GenericErrorMessage,
		RequestID: requestID,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body errorBody
	if json.Unmarshal(data, &body) != nil {
		return apiErr
	}

	if msg := strings.TrimSpace(body.Message); msg != "" {
		apiErr.Message = msg
		return apiErr
	}

	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body.Error, &nested) == nil && strings.TrimSpace(nested.Message) != "" {
		apiErr.Code = nested.Code
		apiErr.Message = strings.TrimSpace(nested.Message)
		return apiErr
	}

	var flat string
	if json.Unmarshal(body.Error, &flat) == nil && strings.TrimSpace(flat) != "" {
		apiErr.Message = strings.TrimSpace(flat)
	}
	return apiErr
}
