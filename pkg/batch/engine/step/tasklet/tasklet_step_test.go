package tasklet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/daioe-scb/pkg/batch/core/metrics"
	tasklet "github.com/tigerroll/daioe-scb/pkg/batch/engine/step/tasklet"
	inmemory "github.com/tigerroll/daioe-scb/pkg/batch/infrastructure/repository/inmemory"
)

type fakeTasklet struct {
	exit     model.ExitStatus
	err      error
	closeErr error
	closed   bool
}

func (f *fakeTasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	se.ReadCount = 3
	return f.exit, f.err
}

func (f *fakeTasklet) Close(ctx context.Context) error {
	f.closed = true
	return f.closeErr
}

type recordingListener struct {
	events []string
}

func (l *recordingListener) BeforeStep(ctx context.Context, se *model.StepExecution) {
	l.events = append(l.events, "before:"+se.Status.String())
}

func (l *recordingListener) AfterStep(ctx context.Context, se *model.StepExecution) {
	l.events = append(l.events, "after:"+se.Status.String())
}

func newExecution(t *testing.T, repo *inmemory.InMemoryJobRepository) (*model.JobExecution, *model.StepExecution) {
	t.Helper()
	ctx := context.Background()
	je := model.NewJobExecution("job", nil)
	require.NoError(t, repo.SaveJobExecution(ctx, je))
	se := model.NewStepExecution(je, "extractStep")
	require.NoError(t, repo.SaveStepExecution(ctx, se))
	return je, se
}

func TestTaskletStep_Completed(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	je, se := newExecution(t, repo)
	tl := &fakeTasklet{exit: model.ExitStatusCompleted}
	listener := &recordingListener{}

	step := tasklet.NewTaskletStep("extractStep", tl, repo, []port.StepExecutionListener{listener},
		metrics.NewNoOpMetricRecorder(), metrics.NewNoOpTracer())

	require.NoError(t, step.Execute(context.Background(), je, se))

	assert.True(t, tl.closed)
	assert.Equal(t, model.BatchStatusCompleted, se.Status)
	assert.Equal(t, model.ExitStatusCompleted, se.ExitStatus)
	assert.Equal(t, 3, se.ReadCount)
	assert.Equal(t, []string{"before:STARTED", "after:COMPLETED"}, listener.events)

	stored, err := repo.FindStepExecutionByID(context.Background(), se.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, stored.Status)
}

func TestTaskletStep_Failed(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	je, se := newExecution(t, repo)
	boom := errors.New("boom")
	tl := &fakeTasklet{err: boom}

	step := tasklet.NewTaskletStep("aggregateStep", tl, repo, nil,
		metrics.NewNoOpMetricRecorder(), metrics.NewNoOpTracer())

	err := step.Execute(context.Background(), je, se)
	require.ErrorIs(t, err, boom)
	assert.True(t, tl.closed)
	assert.Equal(t, model.BatchStatusFailed, se.Status)
	assert.Equal(t, model.FailureList{"boom"}, se.Failures)
}

// TestTaskletStep_CloseError verifies a Close failure fails an otherwise successful step.
func TestTaskletStep_CloseError(t *testing.T) {
	repo := inmemory.NewInMemoryJobRepository()
	je, se := newExecution(t, repo)
	closeErr := errors.New("close failed")
	tl := &fakeTasklet{exit: model.ExitStatusCompleted, closeErr: closeErr}

	step := tasklet.NewTaskletStep("exportStep", tl, repo, nil,
		metrics.NewNoOpMetricRecorder(), metrics.NewNoOpTracer())

	require.ErrorIs(t, step.Execute(context.Background(), je, se), closeErr)
	assert.Equal(t, model.BatchStatusFailed, se.Status)
}
