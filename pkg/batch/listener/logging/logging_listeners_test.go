package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
)

func TestLoggingJobListener_FormatParameters(t *testing.T) {
	l := NewLoggingJobListener([]string{"API_KEY", "password"})

	got := l.FormatParameters(model.JobParameters{
		"output_path": "out.parquet",
		"api_key":     "abc123",
		"Password":    "hunter2",
	})

	assert.Equal(t, "{Password=********, api_key=********, output_path=out.parquet}", got)
	assert.Equal(t, "{}", l.FormatParameters(nil))
}

// TestListeners_DoNotPanic drives both listeners through a failed run.
func TestListeners_DoNotPanic(t *testing.T) {
	ctx := context.Background()
	je := model.NewJobExecution("job", model.JobParameters{"k": "v"})
	se := model.NewStepExecution(je, "extractStep")

	jl := NewLoggingJobListener(nil)
	sl := NewLoggingStepListener()

	assert.NotPanics(t, func() {
		jl.BeforeJob(ctx, je)
		sl.BeforeStep(ctx, se)
		se.MarkAsStarted()
		se.MarkAsFailed(errors.New("boom"))
		sl.AfterStep(ctx, se)
		je.MarkAsStarted()
		je.MarkAsFailed(errors.New("boom"))
		jl.AfterJob(ctx, je)
	})
}
