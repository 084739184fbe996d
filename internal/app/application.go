// Package app wires the aggregation job together with fx and runs it.
package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"

	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	usecase "github.com/tigerroll/daioe-scb/pkg/batch/core/application/usecase"
	config "github.com/tigerroll/daioe-scb/pkg/batch/core/config"
	"github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	runner "github.com/tigerroll/daioe-scb/pkg/batch/core/job/runner"
	infraMetrics "github.com/tigerroll/daioe-scb/pkg/batch/infrastructure/metrics"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const moduleName = "app"

// Process exit codes.
const (
	ExitOK        = 0
	ExitJobFailed = 1
	ExitConfig    = 2
	ExitInternal  = 3
)

const stopTimeout = 30 * time.Second

// Options are the inputs of a run taken from the command line.
type Options struct {
	EnvFilePath    string
	Embedded       config.EmbeddedConfig
	OverrideFiles  []string
	ParamOverrides map[string]string
}

// LoadConfig loads the configuration and applies its logging and timezone settings.
func LoadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.EnvFilePath, opts.Embedded, opts.OverrideFiles...)
	if err != nil {
		return nil, err
	}
	logger.Initialize(logger.Config{
		Level:  cfg.Surfin.System.Logging.Level,
		Format: cfg.Surfin.System.Logging.Format,
	})
	if tz := cfg.Surfin.System.Timezone; tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, exception.NewConfigError(moduleName, "invalid timezone '"+tz+"'", err)
		}
		time.Local = loc
	}
	return cfg, nil
}

// newApp builds the fx application. targets are filled by fx.Populate.
func newApp(cfg *config.Config, targets ...interface{}) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		logger.Module,
		config.Module,
		infraMetrics.Module,
		usecase.Module,
		runner.Module,
		Module,
		fx.Populate(targets...),
	)
}

// RunApplication runs the aggregation job once and returns the process exit code.
func RunApplication(ctx context.Context, opts Options) int {
	cfg, err := LoadConfig(opts)
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		return ExitConfig
	}

	var (
		launcher usecase.JobLauncher
		job      port.Job
	)
	fxApp := newApp(cfg, &launcher, &job)
	if err := fxApp.Err(); err != nil {
		logger.Errorf("Failed to build application: %v", err)
		return exitCodeOf(err)
	}
	if err := fxApp.Start(ctx); err != nil {
		logger.Errorf("Failed to start application: %v", err)
		return exitCodeOf(err)
	}

	code := launch(ctx, launcher, job, JobParameters(cfg, opts.ParamOverrides))

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		logger.Warnf("Application did not stop cleanly: %v", err)
	}
	logger.Sync()
	return code
}

func launch(ctx context.Context, launcher usecase.JobLauncher, job port.Job, params model.JobParameters) (code int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Panic recovered in job execution: %v", r)
			code = ExitInternal
		}
	}()

	je, err := launcher.Launch(ctx, job, params)
	if err != nil {
		logger.Errorf("Failed to launch job '%s': %v", job.JobName(), err)
		return exitCodeOf(err)
	}
	if je.Status != model.BatchStatusCompleted {
		return ExitJobFailed
	}
	logger.Infof("Job '%s' completed (Execution ID: %s).", job.JobName(), je.ID)
	return ExitOK
}

// History returns the recorded executions of the configured job, latest first.
// It is only meaningful with a persistent job repository.
func History(ctx context.Context, opts Options) ([]*model.JobExecution, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	var explorer usecase.JobExplorer
	fxApp := newApp(cfg, &explorer)
	if err := fxApp.Err(); err != nil {
		return nil, err
	}
	if err := fxApp.Start(ctx); err != nil {
		return nil, err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()
		_ = fxApp.Stop(stopCtx)
	}()
	return explorer.GetJobExecutions(ctx, cfg.Surfin.Batch.JobName)
}

func exitCodeOf(err error) int {
	if errors.Is(err, exception.ErrConfig) {
		return ExitConfig
	}
	return ExitInternal
}
