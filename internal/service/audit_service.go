package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/talent-service/internal/events"
	"github.com/spec-kit/talent-service/internal/observability"
)

// AuditService records authentication events in the log and in metrics.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to every auth event.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AuthEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.Actor.UserID != nil {
		fields = append(fields, zap.Int64("user_id", *event.Actor.UserID))
	}
	if event.Actor.Role != "" {
		fields = append(fields, zap.String("role", string(event.Actor.Role)))
	}
	if event.Actor.OrganizationID != nil {
		fields = append(fields, zap.Int64("organization_id", *event.Actor.OrganizationID))
	}

	switch payload := event.Payload.(type) {
	case events.LoginFailedPayload:
		fields = append(fields, zap.String("reason", payload.Reason))
		if payload.Reason == ReasonRateLimited {
			a.metrics.RecordLoginLimited()
		}
	case events.RefreshRejectedPayload:
		fields = append(fields, zap.String("reason", payload.Reason))
	case events.SessionRenewedPayload:
		fields = append(fields, zap.Time("previous_expiry", payload.PreviousExpiry))
	}

	a.metrics.RecordAuthEvent(string(event.Type))

	switch event.Type {
	case events.EventLoginFailed, events.EventRefreshRejected:
		a.logger.Warn("auth event", fields...)
	default:
		a.logger.Info("auth event", fields...)
	}
	return nil
}
