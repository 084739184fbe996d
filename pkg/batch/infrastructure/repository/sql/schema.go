package sql

import (
	"time"

	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
)

// JobExecutionEntity is the persisted form of a JobExecution.
// The ExecutionContext is not persisted; it only carries in-memory tables between steps.
type JobExecutionEntity struct {
	ID              string              `gorm:"primaryKey;size:36"`
	JobName         string              `gorm:"index;size:100"`
	Parameters      model.JobParameters `gorm:"type:text"`
	StartTime       time.Time
	EndTime         *time.Time
	Status          model.JobStatus   `gorm:"size:20"`
	ExitStatus      model.ExitStatus  `gorm:"size:20"`
	Failures        model.FailureList `gorm:"type:text"`
	CreateTime      time.Time
	LastUpdated     time.Time
	CurrentStepName string `gorm:"size:100"`
}

func (JobExecutionEntity) TableName() string {
	return "batch_job_execution"
}

// StepExecutionEntity is the persisted form of a StepExecution.
type StepExecutionEntity struct {
	ID             string `gorm:"primaryKey;size:36"`
	StepName       string `gorm:"size:100"`
	JobExecutionID string `gorm:"index;size:36"`
	StartTime      time.Time
	EndTime        *time.Time
	Status         model.JobStatus   `gorm:"size:20"`
	ExitStatus     model.ExitStatus  `gorm:"size:20"`
	Failures       model.FailureList `gorm:"type:text"`
	ReadCount      int
	WriteCount     int
	FilterCount    int
	LastUpdated    time.Time
}

func (StepExecutionEntity) TableName() string {
	return "batch_step_execution"
}
