package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/talent-service/internal/tenant"
)

func TestToDomainError_KeepsDomainErrors(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", NewInvalidCredentials())

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeInvalidCredentials, de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
}

func TestToDomainError_UnknownErrorIsInternal(t *testing.T) {
	de := ToDomainError(errors.New("pool exhausted"))
	require.NotNil(t, de)
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)
}

func TestToDomainError_FiberErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    *fiber.Error
		code   string
		status int
	}{
		{"route not found", fiber.ErrNotFound, CodeNotFound, http.StatusNotFound},
		{"method not allowed", fiber.ErrMethodNotAllowed, CodeValidationFailed, http.StatusMethodNotAllowed},
		{"unauthorized", fiber.ErrUnauthorized, CodeUnauthenticated, http.StatusUnauthorized},
		{"server error", fiber.ErrInternalServerError, CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
}

func TestDomainError_IsComparesCode(t *testing.T) {
	err := fmt.Errorf("refresh: %w", NewUnauthorized("no active session"))

	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}

func TestNewValidationError_FieldDetails(t *testing.T) {
	err := NewValidationError("invalid payload", []FieldError{{Field: "email", Rule: "email"}})

	de := ToDomainError(err)
	require.NotNil(t, de.Details)
	assert.Equal(t, []FieldError{{Field: "email", Rule: "email"}}, de.Details["fields"])
}

func TestNewContextMissing_HidesCause(t *testing.T) {
	cause := errors.New("tenant context missing")
	de := ToDomainError(NewContextMissing(cause))

	assert.Equal(t, CodeContextMissing, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorIs(t, de, cause)
}

func TestFromTenantError(t *testing.T) {
	de := ToDomainError(FromTenantError(tenant.ErrNoOrganization))
	assert.Equal(t, CodeForbidden, de.Code)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)

	de = ToDomainError(FromTenantError(tenant.ErrContextMissing))
	assert.Equal(t, CodeContextMissing, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)

	other := errors.New("other")
	assert.Same(t, other, FromTenantError(other))
}
