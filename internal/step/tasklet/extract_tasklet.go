// Package tasklet holds the three steps of the aggregation job: extract, aggregate and export.
package tasklet

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
	"github.com/tigerroll/daioe-scb/internal/step/reader"
	"github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	batchModel "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/daioe-scb/pkg/batch/core/metrics"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const ModuleExtract = "ExtractTasklet"

var _ port.Tasklet = (*ExtractTasklet)(nil)

// ExtractTasklet reads the DAIOE and SCB inputs concurrently and stores both
// tables in the job's ExecutionContext.
type ExtractTasklet struct {
	resolver *storage.Resolver
	daioe    reader.DAIOEReaderConfig
	scb      reader.SCBReaderConfig
	recorder metrics.MetricRecorder
}

// NewExtractTasklet creates an ExtractTasklet. The Source fields of the reader
// configs are the defaults used when the job parameters do not name a location.
func NewExtractTasklet(resolver *storage.Resolver, daioe reader.DAIOEReaderConfig, scb reader.SCBReaderConfig, recorder metrics.MetricRecorder) *ExtractTasklet {
	return &ExtractTasklet{resolver: resolver, daioe: daioe, scb: scb, recorder: recorder}
}

func (t *ExtractTasklet) Execute(ctx context.Context, stepExecution *batchModel.StepExecution) (batchModel.ExitStatus, error) {
	je := stepExecution.JobExecution
	params, err := decodeParameters(ModuleExtract, je.Parameters)
	if err != nil {
		return batchModel.ExitStatusFailed, err
	}

	daioeCfg := t.daioe
	daioeCfg.Source = orDefault(params.DaioeSource, daioeCfg.Source)
	scbCfg := t.scb
	scbCfg.Source = orDefault(params.ScbSource, scbCfg.Source)

	var (
		indicators model.IndicatorTable
		employment model.EmploymentTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		indicators, err = reader.NewDAIOECSVReader(t.resolver, daioeCfg).Read(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		employment, err = reader.NewSCBParquetReader(t.resolver, scbCfg).Read(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return batchModel.ExitStatusFailed, err
	}

	je.ExecutionContext.Put(KeyIndicators, indicators)
	je.ExecutionContext.Put(KeyEmployment, employment)

	stepExecution.ReadCount = len(indicators.Rows) + len(employment.Rows)
	t.recorder.RecordRows(ctx, "daioe_read", len(indicators.Rows))
	t.recorder.RecordRows(ctx, "scb_read", len(employment.Rows))
	logger.Debugf("Extracted indicators %v.", indicators.Names)
	return batchModel.ExitStatusCompleted, nil
}

func (t *ExtractTasklet) Close(ctx context.Context) error {
	return nil
}
