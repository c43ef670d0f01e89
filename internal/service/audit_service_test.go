package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/talent-service/internal/domain"
	"github.com/spec-kit/talent-service/internal/events"
	"github.com/spec-kit/talent-service/internal/observability"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestAuditService_LogsAndCounts(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	audit := NewAuditService(dispatcher, zap.New(core), metrics)
	audit.RegisterHandlers()

	orgID := int64(2)
	user := &domain.User{ID: 5, Role: domain.RoleRecruiter, OrganizationID: &orgID}
	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventUserLoggedIn, events.ActorFromUser(user), nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventLoginFailed, events.Actor{}, events.LoginFailedPayload{Reason: ReasonRateLimited})))

	entries := logs.All()
	require.Len(t, entries, 2)

	loggedIn := entries[0].ContextMap()
	assert.Equal(t, "user_logged_in", loggedIn["event"])
	assert.Equal(t, int64(5), loggedIn["user_id"])
	assert.Equal(t, int64(2), loggedIn["organization_id"])
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	failed := entries[1].ContextMap()
	assert.Equal(t, ReasonRateLimited, failed["reason"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	body := scrape(t, metrics)
	assert.Contains(t, body, `talent_auth_events_total{event="user_logged_in"} 1`)
	assert.Contains(t, body, `talent_auth_events_total{event="login_failed"} 1`)
	assert.Contains(t, body, `talent_auth_login_limited_total 1`)
}

func TestAuditService_NilDispatcher(t *testing.T) {
	audit := NewAuditService(nil, zap.NewNop(), nil)
	assert.NotPanics(t, audit.RegisterHandlers)
}
