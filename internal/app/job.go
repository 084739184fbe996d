package app

import (
	"github.com/tigerroll/daioe-scb/internal/pipeline"
	"github.com/tigerroll/daioe-scb/internal/step/reader"
	"github.com/tigerroll/daioe-scb/internal/step/tasklet"
	"github.com/tigerroll/daioe-scb/internal/step/writer"
	"github.com/tigerroll/daioe-scb/pkg/batch/adapter/storage"
	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	config "github.com/tigerroll/daioe-scb/pkg/batch/core/config"
	"github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/core/domain/repository"
	runner "github.com/tigerroll/daioe-scb/pkg/batch/core/job/runner"
	metrics "github.com/tigerroll/daioe-scb/pkg/batch/core/metrics"
	stepTasklet "github.com/tigerroll/daioe-scb/pkg/batch/engine/step/tasklet"
	"github.com/tigerroll/daioe-scb/pkg/batch/listener/logging"
)

// Step names of the aggregation job.
const (
	StepExtract   = "extractStep"
	StepAggregate = "aggregateStep"
	StepExport    = "exportStep"
)

// NewAggregationJob assembles extract, aggregate and export into one job.
func NewAggregationJob(
	cfg *config.Config,
	resolver *storage.Resolver,
	repo repository.JobRepository,
	recorder metrics.MetricRecorder,
	tracer metrics.Tracer,
) port.Job {
	pc := &cfg.Surfin.Pipeline

	extract := tasklet.NewExtractTasklet(resolver,
		reader.DAIOEReaderConfig{
			Source:     pc.DaioeSource,
			CodeColumn: pc.CodeColumn,
			YearColumn: pc.YearColumn,
			Prefix:     pc.DaioePrefix,
		},
		reader.SCBReaderConfig{
			Source:      pc.ScbSource,
			CodeColumn:  pc.ScbCodeColumn,
			YearColumn:  pc.ScbYearColumn,
			CountColumn: pc.CountColumn,
		},
		recorder)
	aggregate := tasklet.NewAggregateTasklet(pipeline.OptionsFromConfig(pc), recorder)
	export := tasklet.NewExportTasklet(resolver,
		writer.FinalRowWriterConfig{OutputPath: pc.OutputPath, Compression: pc.Compression},
		recorder)

	stepListeners := []port.StepExecutionListener{logging.NewLoggingStepListener()}
	steps := []port.Step{
		stepTasklet.NewTaskletStep(StepExtract, extract, repo, stepListeners, recorder, tracer),
		stepTasklet.NewTaskletStep(StepAggregate, aggregate, repo, stepListeners, recorder, tracer),
		stepTasklet.NewTaskletStep(StepExport, export, repo, stepListeners, recorder, tracer),
	}
	jobListeners := []port.JobExecutionListener{
		logging.NewLoggingJobListener(cfg.Surfin.Security.MaskedParameterKeys),
	}
	return runner.NewSimpleJob(cfg.Surfin.Batch.JobName, steps,
		[]string{tasklet.ParamDaioeSource, tasklet.ParamScbSource, tasklet.ParamOutputPath},
		repo, jobListeners, recorder, tracer)
}

// JobParameters returns the run parameters of cfg with overrides applied. Empty overrides are ignored.
func JobParameters(cfg *config.Config, overrides map[string]string) model.JobParameters {
	pc := cfg.Surfin.Pipeline
	params := model.JobParameters{
		tasklet.ParamDaioeSource: pc.DaioeSource,
		tasklet.ParamScbSource:   pc.ScbSource,
		tasklet.ParamOutputPath:  pc.OutputPath,
	}
	for k, v := range overrides {
		if v != "" {
			params[k] = v
		}
	}
	return params
}
