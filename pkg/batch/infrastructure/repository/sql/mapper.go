package sql

import (
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
)

func fromDomainJobExecution(je *model.JobExecution) *JobExecutionEntity {
	return &JobExecutionEntity{
		ID:              je.ID,
		JobName:         je.JobName,
		Parameters:      je.Parameters,
		StartTime:       je.StartTime,
		EndTime:         je.EndTime,
		Status:          je.Status,
		ExitStatus:      je.ExitStatus,
		Failures:        je.Failures,
		CreateTime:      je.CreateTime,
		LastUpdated:     je.LastUpdated,
		CurrentStepName: je.CurrentStepName,
	}
}

func toDomainJobExecution(e *JobExecutionEntity) *model.JobExecution {
	return &model.JobExecution{
		ID:               e.ID,
		JobName:          e.JobName,
		Parameters:       e.Parameters,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		Status:           e.Status,
		ExitStatus:       e.ExitStatus,
		Failures:         e.Failures,
		CreateTime:       e.CreateTime,
		LastUpdated:      e.LastUpdated,
		CurrentStepName:  e.CurrentStepName,
		StepExecutions:   make([]*model.StepExecution, 0),
		ExecutionContext: model.NewExecutionContext(),
	}
}

func fromDomainStepExecution(se *model.StepExecution) *StepExecutionEntity {
	return &StepExecutionEntity{
		ID:             se.ID,
		StepName:       se.StepName,
		JobExecutionID: se.JobExecutionID,
		StartTime:      se.StartTime,
		EndTime:        se.EndTime,
		Status:         se.Status,
		ExitStatus:     se.ExitStatus,
		Failures:       se.Failures,
		ReadCount:      se.ReadCount,
		WriteCount:     se.WriteCount,
		FilterCount:    se.FilterCount,
		LastUpdated:    se.LastUpdated,
	}
}

func toDomainStepExecution(e *StepExecutionEntity) *model.StepExecution {
	return &model.StepExecution{
		ID:             e.ID,
		StepName:       e.StepName,
		JobExecutionID: e.JobExecutionID,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		Status:         e.Status,
		ExitStatus:     e.ExitStatus,
		Failures:       e.Failures,
		ReadCount:      e.ReadCount,
		WriteCount:     e.WriteCount,
		FilterCount:    e.FilterCount,
		LastUpdated:    e.LastUpdated,
	}
}
