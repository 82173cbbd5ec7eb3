package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"workspace-console/backend/internal/events"
)

// NewEventEmitter returns an Emitter that sends membership events as OTel log
// records via the given LoggerProvider. Used when Kafka is not configured so
// events still reach the collector. If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) events.Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("workspace-console.events")}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *events.MembershipEvent) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the membership event to an OTel log record and emits it. Best-effort; errors are logged.
func (e *otelEmitter) Emit(ctx context.Context, event *events.MembershipEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetBody(otellog.StringValue(event.EventType))
	if event.WorkspaceID != "" {
		rec.AddAttributes(otellog.String("workspace_id", event.WorkspaceID))
	}
	if event.UserID != "" {
		rec.AddAttributes(otellog.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		rec.AddAttributes(otellog.String("actor_id", event.ActorID))
	}
	if event.EventType != "" {
		rec.AddAttributes(otellog.String("event_type", event.EventType))
	}
	if event.Role != "" {
		rec.AddAttributes(otellog.String("role", event.Role))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
