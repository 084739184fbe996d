package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	runner "github.com/tigerroll/daioe-scb/pkg/batch/core/job/runner"
	metrics "github.com/tigerroll/daioe-scb/pkg/batch/core/metrics"
	inmemory "github.com/tigerroll/daioe-scb/pkg/batch/infrastructure/repository/inmemory"
	exception "github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
)

type fakeStep struct {
	name string
	err  error
	exit model.ExitStatus
	ran  *[]string
}

func (s *fakeStep) ID() string       { return s.name }
func (s *fakeStep) StepName() string { return s.name }

func (s *fakeStep) Execute(ctx context.Context, je *model.JobExecution, se *model.StepExecution) error {
	*s.ran = append(*s.ran, s.name)
	se.MarkAsStarted()
	if s.err != nil {
		se.MarkAsFailed(s.err)
		return s.err
	}
	exit := s.exit
	if exit == "" {
		exit = model.ExitStatusCompleted
	}
	se.MarkAsCompleted(exit)
	return nil
}

type countingJobListener struct {
	before, after int
}

func (l *countingJobListener) BeforeJob(ctx context.Context, je *model.JobExecution) { l.before++ }
func (l *countingJobListener) AfterJob(ctx context.Context, je *model.JobExecution)  { l.after++ }

func newJob(repo *inmemory.InMemoryJobRepository, listener port.JobExecutionListener, steps ...port.Step) *runner.SimpleJob {
	var listeners []port.JobExecutionListener
	if listener != nil {
		listeners = append(listeners, listener)
	}
	return runner.NewSimpleJob("daioeScbAggregationJob", steps, []string{"output_path"}, repo, listeners,
		metrics.NewNoOpMetricRecorder(), metrics.NewNoOpTracer())
}

func TestSimpleJob_RunsStepsInOrder(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	var ran []string
	listener := &countingJobListener{}
	job := newJob(repo, listener,
		&fakeStep{name: "extractStep", ran: &ran},
		&fakeStep{name: "aggregateStep", ran: &ran},
		&fakeStep{name: "exportStep", ran: &ran},
	)

	je := model.NewJobExecution(job.JobName(), model.JobParameters{"output_path": "out.parquet"})
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))

	runner.NewSimpleJobRunner(repo).Run(context.Background(), job, je)

	assert.Equal(t, []string{"extractStep", "aggregateStep", "exportStep"}, ran)
	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	assert.Len(t, je.StepExecutions, 3)
	assert.Equal(t, 1, listener.before)
	assert.Equal(t, 1, listener.after)

	stored, err := repo.FindJobExecutionByID(context.Background(), je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, stored.Status)
}

func TestSimpleJob_StopsAtFirstFailure(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	var ran []string
	listener := &countingJobListener{}
	job := newJob(repo, listener,
		&fakeStep{name: "extractStep", ran: &ran, err: errors.New("source unreachable")},
		&fakeStep{name: "aggregateStep", ran: &ran},
	)

	je := model.NewJobExecution(job.JobName(), model.JobParameters{"output_path": "out.parquet"})
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))

	runner.NewSimpleJobRunner(repo).Run(context.Background(), job, je)

	assert.Equal(t, []string{"extractStep"}, ran)
	assert.Equal(t, model.BatchStatusFailed, je.Status)
	assert.Equal(t, model.ExitStatusFailed, je.ExitStatus)
	assert.Contains(t, je.Failures, "source unreachable")
	assert.Equal(t, 1, listener.after)
}

func TestSimpleJob_NoOpStepEndsJob(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	var ran []string
	listener := &countingJobListener{}
	job := newJob(repo, listener,
		&fakeStep{name: "extractStep", ran: &ran},
		&fakeStep{name: "aggregateStep", ran: &ran, exit: model.ExitStatusNoOp},
		&fakeStep{name: "exportStep", ran: &ran},
	)

	je := model.NewJobExecution(job.JobName(), model.JobParameters{"output_path": "out.parquet"})
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))

	runner.NewSimpleJobRunner(repo).Run(context.Background(), job, je)

	assert.Equal(t, []string{"extractStep", "aggregateStep"}, ran)
	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	assert.Equal(t, model.ExitStatusNoOp, je.ExitStatus)
	assert.Len(t, je.StepExecutions, 2)
	assert.Equal(t, 1, listener.after)

	stored, err := repo.FindJobExecutionByID(context.Background(), je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusNoOp, stored.ExitStatus)
}

func TestSimpleJob_CancelledContext(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	var ran []string
	job := newJob(repo, nil, &fakeStep{name: "extractStep", ran: &ran})

	je := model.NewJobExecution(job.JobName(), model.JobParameters{"output_path": "out.parquet"})
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner.NewSimpleJobRunner(repo).Run(ctx, job, je)

	assert.Empty(t, ran)
	assert.Equal(t, model.BatchStatusFailed, je.Status)

	// The final state is persisted even though ctx was cancelled.
	stored, err := repo.FindJobExecutionByID(context.Background(), je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, stored.Status)
}

func TestSimpleJob_ValidateParameters(t *testing.T) {
	job := newJob(inmemory.NewInMemoryJobRepository(), nil)

	assert.NoError(t, job.ValidateParameters(model.JobParameters{"output_path": "x"}))

	err := job.ValidateParameters(model.JobParameters{"output_path": ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrConfig)
	assert.Contains(t, err.Error(), "output_path")
}
