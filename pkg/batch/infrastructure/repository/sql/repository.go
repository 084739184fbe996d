// Package sql provides a GORM-backed JobRepository so execution history survives the process.
package sql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/daioe-scb/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/daioe-scb/pkg/batch/adapter/database/gorm"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/core/domain/repository"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
)

const moduleName = "job_repository"

// SQLJobRepository stores execution metadata in a relational database through GORM.
type SQLJobRepository struct {
	db *gorm.DB
}

// NewSQLJobRepository opens cfg and migrates the metadata tables.
func NewSQLJobRepository(cfg dbconfig.DatabaseConfig) (*SQLJobRepository, error) {
	db, err := gormadapter.Open(cfg)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to open job repository database", err)
	}
	return NewSQLJobRepositoryFromDB(db)
}

// NewSQLJobRepositoryFromDB wraps an existing connection and migrates the metadata tables.
func NewSQLJobRepositoryFromDB(db *gorm.DB) (*SQLJobRepository, error) {
	if err := db.AutoMigrate(&JobExecutionEntity{}, &StepExecutionEntity{}); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to migrate job repository schema", err)
	}
	return &SQLJobRepository{db: db}, nil
}

// SaveJobExecution persists a new JobExecution.
func (r *SQLJobRepository) SaveJobExecution(ctx context.Context, je *model.JobExecution) error {
	if err := r.db.WithContext(ctx).Create(fromDomainJobExecution(je)).Error; err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to save JobExecution %s", je.ID, err)
	}
	return nil
}

// UpdateJobExecution updates an existing JobExecution.
func (r *SQLJobRepository) UpdateJobExecution(ctx context.Context, je *model.JobExecution) error {
	res := r.db.WithContext(ctx).Model(&JobExecutionEntity{ID: je.ID}).Select("*").Updates(fromDomainJobExecution(je))
	if res.Error != nil {
		return exception.NewBatchErrorf(moduleName, "failed to update JobExecution %s", je.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("JobExecution with ID %s not found for update", je.ID)
	}
	return nil
}

// FindJobExecutionByID loads a JobExecution and its StepExecutions.
func (r *SQLJobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	var entity JobExecutionEntity
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrJobExecutionNotFound
		}
		return nil, exception.NewBatchErrorf(moduleName, "failed to load JobExecution %s", id, err)
	}
	je := toDomainJobExecution(&entity)
	if err := r.attachSteps(ctx, je); err != nil {
		return nil, err
	}
	return je, nil
}

// FindJobExecutionsByJobName returns the executions of jobName, latest first.
func (r *SQLJobRepository) FindJobExecutionsByJobName(ctx context.Context, jobName string) ([]*model.JobExecution, error) {
	var entities []JobExecutionEntity
	if err := r.db.WithContext(ctx).Where("job_name = ?", jobName).Order("create_time DESC").Find(&entities).Error; err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "failed to list executions of %s", jobName, err)
	}
	executions := make([]*model.JobExecution, 0, len(entities))
	for i := range entities {
		je := toDomainJobExecution(&entities[i])
		if err := r.attachSteps(ctx, je); err != nil {
			return nil, err
		}
		executions = append(executions, je)
	}
	return executions, nil
}

func (r *SQLJobRepository) attachSteps(ctx context.Context, je *model.JobExecution) error {
	var steps []StepExecutionEntity
	if err := r.db.WithContext(ctx).Where("job_execution_id = ?", je.ID).Order("start_time ASC").Find(&steps).Error; err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to load steps of JobExecution %s", je.ID, err)
	}
	for i := range steps {
		se := toDomainStepExecution(&steps[i])
		se.JobExecution = je
		je.StepExecutions = append(je.StepExecutions, se)
	}
	return nil
}

// SaveStepExecution persists a new StepExecution.
func (r *SQLJobRepository) SaveStepExecution(ctx context.Context, se *model.StepExecution) error {
	if err := r.db.WithContext(ctx).Create(fromDomainStepExecution(se)).Error; err != nil {
		return exception.NewBatchErrorf(moduleName, "failed to save StepExecution %s", se.ID, err)
	}
	return nil
}

// UpdateStepExecution updates an existing StepExecution.
func (r *SQLJobRepository) UpdateStepExecution(ctx context.Context, se *model.StepExecution) error {
	res := r.db.WithContext(ctx).Model(&StepExecutionEntity{ID: se.ID}).Select("*").Updates(fromDomainStepExecution(se))
	if res.Error != nil {
		return exception.NewBatchErrorf(moduleName, "failed to update StepExecution %s", se.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("StepExecution with ID %s not found for update", se.ID)
	}
	return nil
}

// FindStepExecutionByID loads a StepExecution.
func (r *SQLJobRepository) FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error) {
	var entity StepExecutionEntity
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrStepExecutionNotFound
		}
		return nil, exception.NewBatchErrorf(moduleName, "failed to load StepExecution %s", id, err)
	}
	return toDomainStepExecution(&entity), nil
}

// Close closes the underlying connection pool.
func (r *SQLJobRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ repository.JobRepository = (*SQLJobRepository)(nil)
