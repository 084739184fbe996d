// Package port defines the core interfaces (ports) of the batch engine.
package port

import (
	"context"

	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
)

// Job is an executable batch job made of steps.
type Job interface {
	// Run executes the job's steps in order against jobExecution.
	Run(ctx context.Context, jobExecution *model.JobExecution, jobParameters model.JobParameters) error
	// JobName returns the logical name of the job.
	JobName() string
	// ID returns the unique ID of the job definition.
	ID() string
	// ValidateParameters validates job parameters before execution.
	ValidateParameters(params model.JobParameters) error
}

// Step is a single unit of work executed within a job.
type Step interface {
	// Execute runs the step. stepExecution has already been persisted by the job.
	Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error
	// StepName returns the logical name of the step.
	StepName() string
	// ID returns the unique ID of the step definition.
	ID() string
}

// Tasklet is the business logic of a tasklet-oriented step.
type Tasklet interface {
	// Execute performs the work and returns the exit status of the step.
	// Data shared with other steps lives in stepExecution.JobExecution.ExecutionContext.
	Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)
	// Close releases resources held by the tasklet. It is called after every Execute.
	Close(ctx context.Context) error
}

// JobRunner executes a job against a JobExecution and records the final status.
type JobRunner interface {
	Run(ctx context.Context, jobInstance Job, jobExecution *model.JobExecution)
}

// JobExecutionListener is notified before and after a job runs.
type JobExecutionListener interface {
	BeforeJob(ctx context.Context, jobExecution *model.JobExecution)
	AfterJob(ctx context.Context, jobExecution *model.JobExecution)
}

// StepExecutionListener is notified before and after a step runs.
type StepExecutionListener interface {
	BeforeStep(ctx context.Context, stepExecution *model.StepExecution)
	AfterStep(ctx context.Context, stepExecution *model.StepExecution)
}
