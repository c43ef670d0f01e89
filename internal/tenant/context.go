// Package tenant carries the authenticated tenant and user identity through a
// request's call chain.
//
// The carrier rides on context.Context: it is installed once by the HTTP
// pipeline after access-token validation and read by any code holding the
// request context, including goroutines the request spawns. Two requests never
// share a context value, so concurrent requests cannot observe each other's
// identity regardless of which OS thread runs them.
package tenant

import (
	"context"
	"errors"

	"github.com/spec-kit/talent-service/internal/domain"
)

var (
	// ErrContextMissing means tenant-scoped code ran outside an installed scope.
	ErrContextMissing = errors.New("tenant: context missing")
	// ErrNoOrganization means a scope is installed but the caller has no tenant.
	ErrNoOrganization = errors.New("tenant: caller not assigned to an organization")
)

// Context is the request-scoped identity.
type Context struct {
	// OrganizationID is zero when the caller has no organization.
	OrganizationID int64
	UserID         int64
	Role           domain.Role
}

// HasOrganization reports whether an organization is assigned.
func (c Context) HasOrganization() bool {
	return c.OrganizationID > 0
}

type contextKey struct{}

// WithContext returns a child of parent carrying tc.
func WithContext(parent context.Context, tc Context) context.Context {
	return context.WithValue(parent, contextKey{}, tc)
}

// Run executes fn with tc installed for its whole dynamic extent. The scope
// ends when fn returns; parent is never modified.
func Run(parent context.Context, tc Context, fn func(ctx context.Context) error) error {
	return fn(WithContext(parent, tc))
}

// FromContext returns the installed identity, if any.
func FromContext(ctx context.Context) (Context, bool) {
	if ctx == nil {
		return Context{}, false
	}
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}

// RequireOrganizationID returns the caller's organization or fails with
// ErrContextMissing / ErrNoOrganization.
func RequireOrganizationID(ctx context.Context) (int64, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return 0, ErrContextMissing
	}
	if !tc.HasOrganization() {
		return 0, ErrNoOrganization
	}
	return tc.OrganizationID, nil
}

// RequireUserID returns the caller's user id or fails with ErrContextMissing.
func RequireUserID(ctx context.Context) (int64, error) {
	tc, ok := FromContext(ctx)
	if !ok || tc.UserID == 0 {
		return 0, ErrContextMissing
	}
	return tc.UserID, nil
}
