package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
)

// MetricRecorder records metrics about batch execution.
// Implementations must be safe for concurrent use.
type MetricRecorder interface {
	// RecordJobStart records the start of a JobExecution.
	RecordJobStart(ctx context.Context, execution *model.JobExecution)

	// RecordJobEnd records the end of a JobExecution, including its duration and final status.
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)

	// RecordStepStart records the start of a StepExecution.
	RecordStepStart(ctx context.Context, execution *model.StepExecution)

	// RecordStepEnd records the end of a StepExecution.
	RecordStepEnd(ctx context.Context, execution *model.StepExecution)

	// RecordRows records the number of rows a pipeline stage produced.
	//
	// stage: the stage name, e.g. "daioe_read", "joined", "aggregated".
	// count: the row count.
	RecordRows(ctx context.Context, stage string, count int)

	// RecordDuration records the execution time of a named operation.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}
