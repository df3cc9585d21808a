package analysis

import (
	"context"
	"time"

	"clipscan/domain/frame"
	"clipscan/infrastructure/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracedSampler records a span and stage timing around every grab
type tracedSampler struct {
	frame.Sampler
	tracer trace.Tracer
}

func (s tracedSampler) Grab(ctx context.Context, videoPath string, at time.Duration) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "sample", trace.WithAttributes(
		attribute.Float64("frame.at_seconds", at.Seconds()),
	))
	defer span.End()

	start := time.Now()
	pix, err := s.Sampler.Grab(ctx, videoPath, at)
	metrics.StageDuration.WithLabelValues("sample").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
	}
	return pix, err
}
