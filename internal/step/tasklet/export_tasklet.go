package tasklet

import (
	"context"

	"github.com/tigerroll/daioe-scb/internal/step/writer"
	"github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	batchModel "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/daioe-scb/pkg/batch/core/metrics"
	logger "github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const ModuleExport = "ExportTasklet"

var _ port.Tasklet = (*ExportTasklet)(nil)

// ExportTasklet publishes the final table as a single Parquet file.
type ExportTasklet struct {
	resolver *storage.Resolver
	config   writer.FinalRowWriterConfig
	recorder metrics.MetricRecorder
}

func NewExportTasklet(resolver *storage.Resolver, cfg writer.FinalRowWriterConfig, recorder metrics.MetricRecorder) *ExportTasklet {
	return &ExportTasklet{resolver: resolver, config: cfg, recorder: recorder}
}

func (t *ExportTasklet) Execute(ctx context.Context, stepExecution *batchModel.StepExecution) (batchModel.ExitStatus, error) {
	je := stepExecution.JobExecution
	params, err := decodeParameters(ModuleExport, je.Parameters)
	if err != nil {
		return batchModel.ExitStatusFailed, err
	}
	table, err := finalTable(ModuleExport, je.ExecutionContext)
	if err != nil {
		return batchModel.ExitStatusFailed, err
	}

	if len(table.Rows) == 0 {
		logger.Warnf("%s: final table is empty, nothing is published.", ModuleExport)
		return batchModel.ExitStatusNoOp, nil
	}

	cfg := t.config
	cfg.OutputPath = orDefault(params.OutputPath, cfg.OutputPath)
	if _, err := writer.NewFinalRowParquetWriter(t.resolver, cfg).Write(ctx, table); err != nil {
		return batchModel.ExitStatusFailed, err
	}

	stepExecution.WriteCount = len(table.Rows)
	t.recorder.RecordRows(ctx, "written", len(table.Rows))
	return batchModel.ExitStatusCompleted, nil
}

func (t *ExportTasklet) Close(ctx context.Context) error {
	return nil
}
