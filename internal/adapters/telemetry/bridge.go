package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/slicecache/internal/core/ports"
)

// LogBridge implements sdktrace.SpanProcessor and reports finished spans through a ports.Logger.
type LogBridge struct {
	logger ports.Logger
}

var _ sdktrace.SpanProcessor = (*LogBridge)(nil)

// NewLogBridge returns a new LogBridge.
func NewLogBridge(logger ports.Logger) *LogBridge {
	return &LogBridge{logger: logger}
}

// OnStart does nothing.
func (b *LogBridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name and duration. Failed spans are logged as warnings.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	elapsed := s.EndTime().Sub(s.StartTime()).Round(time.Millisecond)
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "failed"
		}
		b.logger.Warn(fmt.Sprintf("trace %s failed after %s: %s", s.Name(), elapsed, desc))
		return
	}
	b.logger.Info(fmt.Sprintf("trace %s took %s", s.Name(), elapsed))
}

// ForceFlush does nothing.
func (b *LogBridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *LogBridge) Shutdown(_ context.Context) error {
	return nil
}

// Setup installs a global tracer provider that reports spans through logger.
// The returned function shuts the provider down.
func Setup(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewLogBridge(logger)))
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
