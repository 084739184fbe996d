package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJobExecution_Lifecycle verifies the STARTING -> STARTED -> COMPLETED path.
func TestJobExecution_Lifecycle(t *testing.T) {
	je := NewJobExecution("daioeScbAggregationJob", JobParameters{"output_path": "out.parquet"})

	assert.NotEmpty(t, je.ID)
	assert.Equal(t, BatchStatusStarting, je.Status)
	assert.Equal(t, ExitStatusUnknown, je.ExitStatus)

	je.MarkAsStarted()
	assert.Equal(t, BatchStatusStarted, je.Status)
	assert.False(t, je.StartTime.IsZero())

	je.MarkAsCompleted()
	assert.Equal(t, BatchStatusCompleted, je.Status)
	assert.Equal(t, ExitStatusCompleted, je.ExitStatus)
	require.NotNil(t, je.EndTime)
	assert.True(t, je.Status.IsFinished())
}

// TestJobExecution_MarkAsFailed verifies the failure is recorded.
func TestJobExecution_MarkAsFailed(t *testing.T) {
	je := NewJobExecution("job", nil)
	je.MarkAsStarted()
	je.MarkAsFailed(errors.New("boom"))

	assert.Equal(t, BatchStatusFailed, je.Status)
	assert.Equal(t, ExitStatusFailed, je.ExitStatus)
	assert.Equal(t, FailureList{"boom"}, je.Failures)

	// A finished execution cannot be restarted.
	assert.Error(t, je.TransitionTo(BatchStatusStarted))
}

// TestStepExecution_AttachesToJob verifies NewStepExecution links both sides.
func TestStepExecution_AttachesToJob(t *testing.T) {
	je := NewJobExecution("job", nil)
	se := NewStepExecution(je, "extractStep")

	assert.Equal(t, je.ID, se.JobExecutionID)
	assert.Same(t, je, se.JobExecution)
	require.Len(t, je.StepExecutions, 1)

	se.MarkAsStarted()
	se.MarkAsCompleted(ExitStatusCompleted)
	assert.Equal(t, BatchStatusCompleted, se.Status)
}

// TestFailureList_ValueScan verifies the JSON column round trip used by the SQL repository.
func TestFailureList_ValueScan(t *testing.T) {
	v, err := FailureList{"a", "b"}.Value()
	require.NoError(t, err)

	var fl FailureList
	require.NoError(t, fl.Scan(v))
	assert.Equal(t, FailureList{"a", "b"}, fl)

	require.NoError(t, fl.Scan(nil))
	assert.Empty(t, fl)

	assert.Error(t, fl.Scan(42))
}

func TestJobParameters_ValueScan(t *testing.T) {
	v, err := JobParameters{"daioe_source": "daioe.csv"}.Value()
	require.NoError(t, err)

	var jp JobParameters
	require.NoError(t, jp.Scan([]byte(v.(string))))
	assert.Equal(t, "daioe.csv", jp["daioe_source"])
}
