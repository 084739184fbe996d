package usecase

import (
	"context"
	"fmt"

	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/repository"
	exception "github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// SimpleJobExplorer queries batch metadata through a JobRepository.
type SimpleJobExplorer struct {
	jobRepository repository.JobRepository
}

var _ JobExplorer = (*SimpleJobExplorer)(nil)

// NewSimpleJobExplorer creates a new instance of SimpleJobExplorer.
func NewSimpleJobExplorer(jobRepository repository.JobRepository) *SimpleJobExplorer {
	return &SimpleJobExplorer{jobRepository: jobRepository}
}

// GetJobExecution retrieves a JobExecution by its ID.
func (e *SimpleJobExplorer) GetJobExecution(ctx context.Context, executionID string) (*model.JobExecution, error) {
	jobExecution, err := e.jobRepository.FindJobExecutionByID(ctx, executionID)
	if err != nil {
		return nil, exception.NewBatchError("job_explorer", fmt.Sprintf("Failed to retrieve JobExecution (ID: %s)", executionID), err)
	}
	return jobExecution, nil
}

// GetJobExecutions retrieves the executions of jobName, latest first.
func (e *SimpleJobExplorer) GetJobExecutions(ctx context.Context, jobName string) ([]*model.JobExecution, error) {
	executions, err := e.jobRepository.FindJobExecutionsByJobName(ctx, jobName)
	if err != nil {
		return nil, exception.NewBatchError("job_explorer", fmt.Sprintf("Failed to retrieve JobExecutions of '%s'", jobName), err)
	}
	logger.Debugf("Retrieved %d JobExecutions of '%s'.", len(executions), jobName)
	return executions, nil
}
