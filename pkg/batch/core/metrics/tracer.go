package metrics

import (
	"context"

	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
)

// Tracer integrates job and step execution with a distributed tracing system.
type Tracer interface {
	// StartJobSpan starts a span for a JobExecution.
	// It returns a context carrying the span and a function that ends it.
	StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func())

	// StartStepSpan starts a span for a StepExecution, normally as a child of the job span.
	StartStepSpan(ctx context.Context, execution *model.StepExecution) (context.Context, func())

	// RecordError records err on the span in ctx.
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records a named event with attributes on the span in ctx.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})

	// Shutdown flushes and stops the exporter, if any.
	Shutdown(ctx context.Context) error
}
