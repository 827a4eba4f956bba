package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/lockmap/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor by logging span lifecycles at
// debug level, so --verbose shows every provider lookup and install phase.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{
		logger: logger,
	}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if b.logger == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	args := []any{"span", s.Name(), "span_id", sc.SpanID().String()}
	if parentSpan := trace.SpanFromContext(parent); parentSpan.SpanContext().IsValid() {
		args = append(args, "parent_id", parentSpan.SpanContext().SpanID().String())
	}
	b.logger.Debug("span started", args...)
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	args := []any{
		"span", s.Name(),
		"span_id", sc.SpanID().String(),
		"elapsed", s.EndTime().Sub(s.StartTime()).String(),
	}
	for _, attr := range s.Attributes() {
		args = append(args, string(attr.Key), attr.Value.Emit())
	}
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "span failed"
		}
		args = append(args, "error", desc)
	}
	b.logger.Debug("span finished", args...)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
