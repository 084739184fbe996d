package usecase

import (
	"context"
	"fmt"

	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/repository"
	exception "github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// SimpleJobLauncher runs jobs synchronously in the calling goroutine.
type SimpleJobLauncher struct {
	jobRepository repository.JobRepository
	jobRunner     port.JobRunner
}

// NewSimpleJobLauncher creates a new SimpleJobLauncher.
func NewSimpleJobLauncher(repo repository.JobRepository, runner port.JobRunner) *SimpleJobLauncher {
	return &SimpleJobLauncher{jobRepository: repo, jobRunner: runner}
}

// Launch validates the parameters, records a new JobExecution and runs the job.
func (l *SimpleJobLauncher) Launch(ctx context.Context, job port.Job, params model.JobParameters) (*model.JobExecution, error) {
	const op = "job_launcher"
	logger.Infof("Launching Job '%s'.", job.JobName())

	if err := job.ValidateParameters(params); err != nil {
		logger.Errorf("Job '%s': JobParameters validation failed: %v", job.JobName(), err)
		return nil, exception.NewBatchError(op, "JobParameters validation error", err)
	}

	jobExecution := model.NewJobExecution(job.JobName(), params)
	if err := l.jobRepository.SaveJobExecution(ctx, jobExecution); err != nil {
		return nil, exception.NewBatchError(op, fmt.Sprintf("Failed to save JobExecution for '%s'", job.JobName()), err)
	}
	logger.Debugf("Saved JobExecution (ID: %s, Status: %s).", jobExecution.ID, jobExecution.Status)

	l.jobRunner.Run(ctx, job, jobExecution)
	return jobExecution, nil
}

var _ JobLauncher = (*SimpleJobLauncher)(nil)
