package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 4 << 10

// ErrorResponse is the error body shape the remote may return, nested
// ({"error":{"message":...}}) or flat ({"message":...}).
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail is the nested part of ErrorResponse.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// GetMessage returns the nested message, else the flat one.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse decodes an error body. It returns nil when the body is
// absent, not JSON, or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" && errResp.Error.Code == "" && errResp.Code == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError turns a failed call into a domain error. clientErr is set when
// no response arrived; otherwise resp carries a non-2xx status. A 2xx
// response with no client error maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, service, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, service, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(service, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	message := fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	if errResp := ParseErrorResponse(resp.Body); errResp != nil && errResp.GetMessage() != "" {
		message = errResp.GetMessage()
	}

	switch status := resp.StatusCode; {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(service, requestPath(resp))
	case status == http.StatusConflict:
		return domain.NewConflictError(service, message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(service, "rate limit exceeded")
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(service, message)
	default:
		return domain.NewValidationError("", message)
	}
}

func mapClientError(err error, service, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(service, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(service, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(service, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func requestPath(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}

	return resp.Request.URL.Path
}
