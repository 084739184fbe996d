package runner

import (
	"context"
	"time"

	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/repository"
	metrics "github.com/tigerroll/daioe-scb/pkg/batch/core/metrics"
	exception "github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// SimpleJob runs its steps in order. It stops at the first failing step, and
// after a step that exits NO_OP, in which case the job completes as NO_OP.
type SimpleJob struct {
	id             string
	name           string
	steps          []port.Step
	requiredParams []string
	jobRepository  repository.JobRepository
	jobListeners   []port.JobExecutionListener
	metricRecorder metrics.MetricRecorder
	tracer         metrics.Tracer
}

var _ port.Job = (*SimpleJob)(nil)

// NewSimpleJob creates a new instance of SimpleJob. requiredParams lists the
// JobParameters keys that must be present and non-empty.
func NewSimpleJob(
	name string,
	steps []port.Step,
	requiredParams []string,
	jobRepository repository.JobRepository,
	jobListeners []port.JobExecutionListener,
	metricRecorder metrics.MetricRecorder,
	tracer metrics.Tracer,
) *SimpleJob {
	return &SimpleJob{
		id:             name,
		name:           name,
		steps:          steps,
		requiredParams: requiredParams,
		jobRepository:  jobRepository,
		jobListeners:   jobListeners,
		metricRecorder: metricRecorder,
		tracer:         tracer,
	}
}

// ID returns the job ID.
func (j *SimpleJob) ID() string {
	return j.id
}

// JobName returns the job name.
func (j *SimpleJob) JobName() string {
	return j.name
}

// ValidateParameters checks that every required parameter is set.
func (j *SimpleJob) ValidateParameters(params model.JobParameters) error {
	var missing exception.Collector
	for _, key := range j.requiredParams {
		if params[key] == "" {
			missing.Addf("required parameter '%s' is missing", key)
		}
	}
	if err := missing.ErrorOrNil(); err != nil {
		return exception.NewConfigError(j.name, "invalid job parameters", err)
	}
	return nil
}

func (j *SimpleJob) notifyBeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	for _, l := range j.jobListeners {
		l.BeforeJob(ctx, jobExecution)
	}
}

func (j *SimpleJob) notifyAfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	for _, l := range j.jobListeners {
		l.AfterJob(ctx, jobExecution)
	}
}

// Run executes the steps sequentially. The first step error fails the job
// and the remaining steps are not run. A step exiting NO_OP ends the job early
// with a completed status and a NO_OP exit status.
func (j *SimpleJob) Run(ctx context.Context, jobExecution *model.JobExecution, jobParameters model.JobParameters) error {
	logger.Infof("Starting Job '%s' (Execution ID: %s).", j.name, jobExecution.ID)

	ctx, finishSpan := j.tracer.StartJobSpan(ctx, jobExecution)
	defer finishSpan()

	j.metricRecorder.RecordJobStart(ctx, jobExecution)
	j.notifyBeforeJob(ctx, jobExecution)

	defer func() {
		if jobExecution.EndTime == nil {
			now := time.Now()
			jobExecution.EndTime = &now
		}
		j.notifyAfterJob(ctx, jobExecution)
		j.metricRecorder.RecordJobEnd(ctx, jobExecution)

		logger.Infof("Job '%s' (Execution ID: %s) finished. Final Status: %s, Exit Status: %s",
			j.name, jobExecution.ID, jobExecution.Status, jobExecution.ExitStatus)
	}()

	for _, step := range j.steps {
		if err := ctx.Err(); err != nil {
			logger.Warnf("Context cancelled, interrupting Job '%s': %v", j.name, err)
			jobExecution.MarkAsFailed(err)
			j.tracer.RecordError(ctx, "job_runner", err)
			return err
		}

		jobExecution.CurrentStepName = step.StepName()
		stepExecution := model.NewStepExecution(jobExecution, step.StepName())
		if err := j.jobRepository.SaveStepExecution(ctx, stepExecution); err != nil {
			err = exception.NewBatchError(j.name, "Failed to save StepExecution for '"+step.StepName()+"'", err)
			jobExecution.MarkAsFailed(err)
			return err
		}

		start := time.Now()
		err := step.Execute(ctx, jobExecution, stepExecution)
		j.metricRecorder.RecordDuration(ctx, "step_execution", time.Since(start), map[string]string{"step": step.StepName()})
		if err != nil {
			logger.Errorf("Job '%s': step '%s' failed: %v", j.name, step.StepName(), err)
			jobExecution.MarkAsFailed(err)
			j.tracer.RecordError(ctx, "job_runner", err)
			return err
		}
		if stepExecution.ExitStatus == model.ExitStatusNoOp {
			logger.Infof("Job '%s': step '%s' had nothing to do, skipping the remaining steps.", j.name, step.StepName())
			jobExecution.MarkAsCompleted()
			jobExecution.ExitStatus = model.ExitStatusNoOp
			return nil
		}
		if err := j.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
			logger.Warnf("Job '%s': failed to persist progress after step '%s': %v", j.name, step.StepName(), err)
		}
	}

	jobExecution.MarkAsCompleted()
	return nil
}
