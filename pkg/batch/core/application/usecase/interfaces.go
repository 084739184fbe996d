package usecase

import (
	"context"

	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
)

// JobLauncher starts a Job with JobParameters.
type JobLauncher interface {
	// Launch creates a JobExecution and runs the job to completion.
	// The returned error reports a failure to launch, not a failure of the job:
	// the outcome of the run is the status of the returned JobExecution.
	Launch(ctx context.Context, job port.Job, params model.JobParameters) (*model.JobExecution, error)
}

// JobExplorer queries recorded execution metadata.
type JobExplorer interface {
	// GetJobExecution retrieves a JobExecution by its ID.
	GetJobExecution(ctx context.Context, executionID string) (*model.JobExecution, error)

	// GetJobExecutions retrieves the executions of jobName, latest first.
	GetJobExecutions(ctx context.Context, jobName string) ([]*model.JobExecution, error)
}
