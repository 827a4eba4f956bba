package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/lockmap/internal/adapters/telemetry"
	"go.trai.ch/lockmap/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// argMap turns alternating key/value log args into a map.
func argMap(t *testing.T, args []any) map[string]any {
	t.Helper()
	require.Zero(t, len(args)%2, "args must be key/value pairs")
	out := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		require.True(t, ok)
		out[key] = args[i+1]
	}
	return out
}

func TestBridge_OnStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	bridge := telemetry.NewBridge(mockLogger)

	var started []map[string]any
	mockLogger.EXPECT().Debug("span started", gomock.Any()).DoAndReturn(func(_ string, args ...any) {
		started = append(started, argMap(t, args))
	}).Times(2)
	mockLogger.EXPECT().Debug("span finished", gomock.Any()).AnyTimes()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	tracer := tp.Tracer("test")
	ctx, root := tracer.Start(context.Background(), "install")
	_, child := tracer.Start(ctx, "lookup")
	child.End()
	root.End()

	require.Len(t, started, 2)
	assert.Equal(t, "install", started[0]["span"])
	assert.NotContains(t, started[0], "parent_id")
	assert.Equal(t, "lookup", started[1]["span"])
	assert.Equal(t, root.SpanContext().SpanID().String(), started[1]["parent_id"])
}

func TestBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	bridge := telemetry.NewBridge(mockLogger)

	var finished map[string]any
	mockLogger.EXPECT().Debug("span started", gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug("span finished", gomock.Any()).DoAndReturn(func(_ string, args ...any) {
		finished = argMap(t, args)
	}).Times(1)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	_, span := tp.Tracer("test").Start(context.Background(), "lookup")
	span.SetAttributes(attribute.String("lockmap.package", "react"))
	span.End()

	require.NotNil(t, finished)
	assert.Equal(t, "lookup", finished["span"])
	assert.Equal(t, "react", finished["lockmap.package"])
	assert.Contains(t, finished, "elapsed")
	assert.NotContains(t, finished, "error")
}

func TestBridge_OnEndWithError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	bridge := telemetry.NewBridge(mockLogger)

	var finished map[string]any
	mockLogger.EXPECT().Debug("span started", gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug("span finished", gomock.Any()).DoAndReturn(func(_ string, args ...any) {
		finished = argMap(t, args)
	}).Times(1)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	_, span := tp.Tracer("test").Start(context.Background(), "lookup")
	span.SetStatus(codes.Error, "package not found")
	span.End()

	assert.Equal(t, "package not found", finished["error"])
}

func TestBridge_NilLogger(_ *testing.T) {
	bridge := telemetry.NewBridge(nil)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	_, span := tp.Tracer("test").Start(context.Background(), "test-span")
	span.End()
}

func TestBridge_ForceFlushAndShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	bridge := telemetry.NewBridge(mocks.NewMockLogger(ctrl))

	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}
