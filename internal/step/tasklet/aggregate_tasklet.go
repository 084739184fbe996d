package tasklet

import (
	"context"

	"github.com/tigerroll/daioe-scb/internal/pipeline"
	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	batchModel "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/daioe-scb/pkg/batch/core/metrics"
)

const ModuleAggregate = "AggregateTasklet"

var _ port.Tasklet = (*AggregateTasklet)(nil)

// AggregateTasklet runs the pipeline over the extracted tables and replaces
// them in the ExecutionContext with the final table.
type AggregateTasklet struct {
	options  pipeline.Options
	recorder metrics.MetricRecorder
}

func NewAggregateTasklet(options pipeline.Options, recorder metrics.MetricRecorder) *AggregateTasklet {
	return &AggregateTasklet{options: options, recorder: recorder}
}

func (t *AggregateTasklet) Execute(ctx context.Context, stepExecution *batchModel.StepExecution) (batchModel.ExitStatus, error) {
	ec := stepExecution.JobExecution.ExecutionContext
	indicators, err := indicatorTable(ModuleAggregate, ec)
	if err != nil {
		return batchModel.ExitStatusFailed, err
	}
	employment, err := employmentTable(ModuleAggregate, ec)
	if err != nil {
		return batchModel.ExitStatusFailed, err
	}
	params, err := decodeParameters(ModuleAggregate, stepExecution.JobExecution.Parameters)
	if err != nil {
		return batchModel.ExitStatusFailed, err
	}
	opts := t.options
	if params.MinYear != 0 {
		opts.MinYear = params.MinYear
	}
	stepExecution.ReadCount = len(indicators.Rows)

	final, err := pipeline.Run(ctx, indicators, employment, opts)
	if err != nil {
		return batchModel.ExitStatusFailed, err
	}

	ec.Remove(KeyIndicators)
	ec.Remove(KeyEmployment)
	ec.Put(KeyFinalTable, final)

	stepExecution.WriteCount = len(final.Rows)
	t.recorder.RecordRows(ctx, "aggregated", len(final.Rows))
	if len(final.Rows) == 0 {
		return batchModel.ExitStatusNoOp, nil
	}
	return batchModel.ExitStatusCompleted, nil
}

func (t *AggregateTasklet) Close(ctx context.Context) error {
	return nil
}
