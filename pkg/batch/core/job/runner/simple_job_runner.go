package runner

import (
	"context"
	"time"

	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/repository"
	logger "github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// SimpleJobRunner is a port.JobRunner that runs the job in the calling goroutine.
type SimpleJobRunner struct {
	jobRepository repository.JobRepository
}

// NewSimpleJobRunner creates an instance of SimpleJobRunner.
func NewSimpleJobRunner(repo repository.JobRepository) port.JobRunner {
	return &SimpleJobRunner{jobRepository: repo}
}

// Run starts jobExecution, runs the job and persists the final state.
func (r *SimpleJobRunner) Run(ctx context.Context, jobInstance port.Job, jobExecution *model.JobExecution) {
	if jobExecution.Status == model.BatchStatusStarting {
		jobExecution.MarkAsStarted()
		if err := r.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
			logger.Errorf("JobRunner: Failed to update JobExecution (ID: %s) status to STARTED: %v", jobExecution.ID, err)
		}
	}

	err := jobInstance.Run(ctx, jobExecution, jobExecution.Parameters)

	if err != nil {
		if !jobExecution.Status.IsFinished() {
			jobExecution.MarkAsFailed(err)
		}
	} else if !jobExecution.Status.IsFinished() {
		jobExecution.MarkAsCompleted()
	}

	if jobExecution.EndTime == nil {
		now := time.Now()
		jobExecution.EndTime = &now
	}

	// Persisting with a cancelled ctx would lose the final status.
	if updateErr := r.jobRepository.UpdateJobExecution(context.WithoutCancel(ctx), jobExecution); updateErr != nil {
		logger.Errorf("JobRunner: Failed to update final JobExecution (ID: %s) state: %v", jobExecution.ID, updateErr)
	}
}

var _ port.JobRunner = (*SimpleJobRunner)(nil)
