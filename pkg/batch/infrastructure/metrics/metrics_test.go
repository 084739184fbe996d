package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	config "github.com/tigerroll/daioe-scb/pkg/batch/core/config"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
)

func finishedStep(t *testing.T) (*model.JobExecution, *model.StepExecution) {
	t.Helper()
	je := model.NewJobExecution("daioeScbAggregationJob", nil)
	je.MarkAsStarted()
	se := model.NewStepExecution(je, "aggregateStep")
	se.MarkAsStarted()
	se.ReadCount = 10
	se.WriteCount = 7
	se.MarkAsCompleted(model.ExitStatusCompleted)
	je.MarkAsCompleted()
	return je, se
}

func TestPrometheusRecorder_Records(t *testing.T) {
	ctx := context.Background()
	r := NewPrometheusRecorder()
	je, se := finishedStep(t)

	r.RecordJobStart(ctx, je)
	r.RecordStepStart(ctx, se)
	r.RecordStepEnd(ctx, se)
	r.RecordJobEnd(ctx, je)
	r.RecordRows(ctx, "aggregated", 42)
	r.RecordRows(ctx, "aggregated", 40)
	r.RecordDuration(ctx, "step_execution", time.Second, map[string]string{"step": "aggregateStep"})

	assert.Equal(t, 10.0, testutil.ToFloat64(r.stepReadCount.WithLabelValues("daioeScbAggregationJob", "aggregateStep")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.stepWriteCount.WithLabelValues("daioeScbAggregationJob", "aggregateStep")))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.stageRows.WithLabelValues("aggregated")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.jobDurationSeconds))
	assert.Equal(t, 1, testutil.CollectAndCount(r.operationDurationSeconds))
}

func TestPrometheusRecorder_Push(t *testing.T) {
	var (
		method, path string
		body         []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		method, path = req.Method, req.URL.Path
		body, _ = io.ReadAll(req.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewPrometheusRecorder()
	r.RecordRows(context.Background(), "written", 5)
	require.NoError(t, r.Push(context.Background(), srv.URL, "daioeScbAggregationJob"))

	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasSuffix(path, "/job/daioeScbAggregationJob"))
	assert.NotEmpty(t, body)
}

func TestOpenTelemetryTracer_Spans(t *testing.T) {
	ctx := context.Background()
	sr := tracetest.NewSpanRecorder()
	tracer := NewOpenTelemetryTracerWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	je, se := finishedStep(t)

	jobCtx, endJob := tracer.StartJobSpan(ctx, je)
	stepCtx, endStep := tracer.StartStepSpan(jobCtx, se)
	tracer.RecordEvent(stepCtx, "rows", map[string]interface{}{"count": 7, "stage": "aggregated"})
	tracer.RecordError(stepCtx, "pipeline", errors.New("boom"))
	endStep()
	endJob()
	require.NoError(t, tracer.Shutdown(ctx))

	ended := sr.Ended()
	require.Len(t, ended, 2)
	step, job := ended[0], ended[1]
	assert.Equal(t, "step aggregateStep", step.Name())
	assert.Equal(t, "job daioeScbAggregationJob", job.Name())
	assert.Equal(t, job.SpanContext().SpanID(), step.Parent().SpanID())
	assert.Equal(t, codes.Error, step.Status().Code)
	assert.Len(t, step.Events(), 2) // "rows" and the recorded exception
}

func TestNewExporter_UnsupportedProtocol(t *testing.T) {
	_, err := newExporter(context.Background(), config.TracingConfig{Protocol: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestToAttributes(t *testing.T) {
	attrs := toAttributes(map[string]interface{}{"n": int64(3), "ok": true, "x": []int{1}})
	assert.Len(t, attrs, 3)
}
