package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-service/internal/tenant"
)

// Stable machine-readable error codes returned at the HTTP boundary.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeContextMissing     = "CONTEXT_MISSING"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError carrying the same code, so callers can test
// errors.Is(err, util.ErrUnauthenticated) regardless of message.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// Sentinels for errors.Is checks; compare by code only.
var (
	ErrValidation         = NewDomainError(CodeValidationFailed, "validation failed", http.StatusBadRequest, nil)
	ErrInvalidCredentials = NewDomainError(CodeInvalidCredentials, "invalid email or password", http.StatusBadRequest, nil)
	ErrUnauthenticated    = NewDomainError(CodeUnauthenticated, "authentication required", http.StatusUnauthorized, nil)
	ErrForbidden          = NewDomainError(CodeForbidden, "forbidden", http.StatusForbidden, nil)
	ErrNotFound           = NewDomainError(CodeNotFound, "not found", http.StatusNotFound, nil)
	ErrTooManyRequests    = NewDomainError(CodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func NewValidationError(message string, fields []FieldError) error {
	var details map[string]any
	if len(fields) > 0 {
		details = map[string]any{"fields": fields}
	}
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

// NewInvalidCredentials is returned for every login failure cause.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "invalid email or password", http.StatusBadRequest, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewTooManyRequests(message string) error {
	return NewDomainError(CodeTooManyRequests, message, http.StatusTooManyRequests, nil)
}

// NewContextMissing flags a tenant-scoped operation that ran without an installed
// tenant context. It is a wiring bug, never a client error.
func NewContextMissing(err error) error {
	return &DomainError{
		Code:       CodeContextMissing,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromTenantError maps carrier failures: no organization is the caller's
// problem (403), a missing scope is ours (500).
func FromTenantError(err error) error {
	switch {
	case errors.Is(err, tenant.ErrNoOrganization):
		return NewForbidden("caller is not assigned to an organization")
	case errors.Is(err, tenant.ErrContextMissing):
		return NewContextMissing(err)
	default:
		return err
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

func fromFiberError(e *fiber.Error) *DomainError {
	code := CodeInternal
	message := e.Message
	switch {
	case e.Code == http.StatusNotFound:
		code = CodeNotFound
	case e.Code == http.StatusUnauthorized:
		code = CodeUnauthenticated
	case e.Code == http.StatusForbidden:
		code = CodeForbidden
	case e.Code == http.StatusTooManyRequests:
		code = CodeTooManyRequests
	case e.Code >= 400 && e.Code < 500:
		code = CodeValidationFailed
	default:
		message = "internal server error"
	}
	return &DomainError{Code: code, Message: message, HTTPStatus: e.Code, Err: e}
}
