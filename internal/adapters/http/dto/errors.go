// Package dto holds the request and response shapes of the quote API and the
// error envelope every failure is rendered in.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is machine-readable, e.g. "NOT_FOUND".
	Code string `json:"code"`

	Message string `json:"message"`

	// Details holds field-level messages for validation failures.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes.
const (
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeConflict    = "CONFLICT"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeBadGateway  = "BAD_GATEWAY"
	ErrorCodeStorage     = "STORAGE_ERROR"
	ErrorCodeInternal    = "INTERNAL_ERROR"
	ErrorCodeTimeout     = "TIMEOUT"
	ErrorCodeBadRequest  = "BAD_REQUEST"
)

// NewErrorResponse creates an error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID sets the trace ID and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeBadGateway:
		return http.StatusBadGateway
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MapDomainError maps a domain error to a status code and envelope.
// Unknown errors become a 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	switch {
	case err == nil:
		return http.StatusOK, nil

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{validationErr.Field: validationErr.Message}
		}

		return http.StatusBadRequest, resp

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	case domain.IsMalformedResponse(err):
		return http.StatusBadGateway, NewErrorResponse(ErrorCodeBadGateway, err.Error())

	case domain.IsPersistence(err):
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeStorage, "quotes could not be saved")

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// ContextKeyTraceID is the gin key consulted when no span is active.
const ContextKeyTraceID = "trace_id"

// GetTraceID returns the trace ID of the active span, else one stored under
// ContextKeyTraceID, else "".
func GetTraceID(c *gin.Context) string {
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	if id, ok := c.Get(ContextKeyTraceID); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}

// HandleError writes err as an error envelope. 5xx errors are logged with
// their full text, which the response body does not carry.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.WithTraceID(GetTraceID(c))

	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "request failed",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// AbortWithCode aborts the chain with an envelope for code.
func AbortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithCode writes an envelope for code without aborting.
func RespondWithCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 with field-level details.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, NewErrorResponseWithDetails(
		ErrorCodeValidation,
		"request validation failed",
		fieldErrors,
	).WithTraceID(GetTraceID(c)))
}
