package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("generation-metrics")

// GenerationMetrics provides metrics collection for generation runs.
type GenerationMetrics struct {
	runsStartedCounter   metric.Int64Counter
	runsCompletedCounter metric.Int64Counter
	runsFailedCounter    metric.Int64Counter
	runDurationHistogram metric.Float64Histogram
	artifactsCounter     metric.Int64Counter
	warningsCounter      metric.Int64Counter
}

// NewGenerationMetrics creates a new generation metrics collector.
func NewGenerationMetrics() (*GenerationMetrics, error) {
	runsStartedCounter, err := meter.Int64Counter(
		"fastapi_forge.runs.started",
		metric.WithDescription("Total number of generation runs started"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runsCompletedCounter, err := meter.Int64Counter(
		"fastapi_forge.runs.completed",
		metric.WithDescription("Total number of generation runs completed successfully"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runsFailedCounter, err := meter.Int64Counter(
		"fastapi_forge.runs.failed",
		metric.WithDescription("Total number of generation runs that failed"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runDurationHistogram, err := meter.Float64Histogram(
		"fastapi_forge.run.duration",
		metric.WithDescription("Duration of generation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	artifactsCounter, err := meter.Int64Counter(
		"fastapi_forge.artifacts.generated",
		metric.WithDescription("Total number of artifacts generated"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}

	warningsCounter, err := meter.Int64Counter(
		"fastapi_forge.warnings.recorded",
		metric.WithDescription("Total number of non-fatal generation warnings"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return nil, err
	}

	return &GenerationMetrics{
		runsStartedCounter:   runsStartedCounter,
		runsCompletedCounter: runsCompletedCounter,
		runsFailedCounter:    runsFailedCounter,
		runDurationHistogram: runDurationHistogram,
		artifactsCounter:     artifactsCounter,
		warningsCounter:      warningsCounter,
	}, nil
}

// RecordRunStarted records a new generation run.
func (gm *GenerationMetrics) RecordRunStarted(ctx context.Context, projectName, mode string) {
	gm.runsStartedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("project.name", projectName),
			attribute.String("project.mode", mode),
		),
	)
}

// RecordRunCompleted records a successful generation run.
func (gm *GenerationMetrics) RecordRunCompleted(ctx context.Context, projectName, mode string, artifacts, warnings int, duration time.Duration) {
	gm.runsCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("project.name", projectName),
			attribute.String("project.mode", mode),
			attribute.String("status", "completed"),
		),
	)
	gm.runDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("project.mode", mode),
			attribute.String("status", "completed"),
		),
	)
	gm.artifactsCounter.Add(ctx, int64(artifacts),
		metric.WithAttributes(attribute.String("project.mode", mode)),
	)
	gm.warningsCounter.Add(ctx, int64(warnings),
		metric.WithAttributes(attribute.String("project.mode", mode)),
	)
}

// RecordRunFailed records a generation run rejected or aborted before a file
// map was produced.
func (gm *GenerationMetrics) RecordRunFailed(ctx context.Context, projectName, mode, errorType string, duration time.Duration) {
	gm.runsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("project.name", projectName),
			attribute.String("project.mode", mode),
			attribute.String("status", "failed"),
			attribute.String("error.type", errorType),
		),
	)
	gm.runDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("project.mode", mode),
			attribute.String("status", "failed"),
		),
	)
}
