package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/talent-service/internal/events"
	"github.com/spec-kit/talent-service/internal/service"
)

func TestStartAuditWorker_Subscribes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()

	StartAuditWorker(service.NewAuditService(dispatcher, zap.New(core), nil))

	for _, eventType := range events.AuthEventTypes {
		require.NoError(t, dispatcher.Publish(context.Background(), events.New(eventType, events.Actor{}, nil)))
	}
	assert.Equal(t, len(events.AuthEventTypes), logs.Len())
}

func TestStartAuditWorker_Nil(t *testing.T) {
	assert.NotPanics(t, func() { StartAuditWorker(nil) })
}
