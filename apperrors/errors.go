package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind is the machine-readable error category clients branch on.
type Kind string

const (
	KindConflict          Kind = "conflict"
	KindEmptyCart         Kind = "empty_cart"
	KindInsufficientStock Kind = "insufficient_stock"
	KindNotFound          Kind = "not_found"
	KindInvalidState      Kind = "invalid_state"
	KindValidation        Kind = "validation"
	KindInternal          Kind = "internal"
)

// Error represents an application error with an HTTP status and optional
// structured details for the client.
type Error struct {
	Kind    Kind                   `json:"kind"`
	Code    int                    `json:"-"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(kind Kind, code int, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails attaches structured remediation data for the client.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// Conflict reports a stale-version write; the caller must re-read and retry.
func Conflict(message string) *Error {
	return New(KindConflict, http.StatusConflict, message, nil)
}

// EmptyCart reports an order placement against a cart with no lines.
func EmptyCart() *Error {
	return New(KindEmptyCart, http.StatusBadRequest, "Cart is empty", nil)
}

// InsufficientStock reports the first cart line that failed the stock check.
func InsufficientStock(productID, size string, requested, available int64) *Error {
	return New(KindInsufficientStock, http.StatusConflict, "Insufficient stock", nil).
		WithDetails(map[string]interface{}{
			"product_id": productID,
			"size":       size,
			"requested":  requested,
			"available":  available,
		})
}

// NotFound reports an unknown product, cart or order.
func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

// InvalidState reports an operation against an order outside the expected
// status. Payment confirmation swallows this to a no-op; other callers
// surface it.
func InvalidState(message string) *Error {
	return New(KindInvalidState, http.StatusConflict, message, nil)
}

// Validation reports malformed or out-of-range input.
func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

// Internal wraps an unexpected persistence or infrastructure failure.
func Internal(err error) *Error {
	return New(KindInternal, http.StatusInternalServerError, "Internal server error", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// Respond writes err as a {kind, message, details} JSON response. Anything
// that is not an *Error is treated as an unexpected internal failure.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}
	c.JSON(appErr.Code, appErr)
}
