package metrics

import (
	"context"

	"go.uber.org/fx"

	config "github.com/tigerroll/daioe-scb/pkg/batch/core/config"
	metrics "github.com/tigerroll/daioe-scb/pkg/batch/core/metrics"
	logger "github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

// NewMetricRecorder returns a PrometheusRecorder when metrics are enabled and a no-op recorder otherwise.
// With a Pushgateway configured, the registry is pushed when the application stops.
func NewMetricRecorder(lc fx.Lifecycle, cfg *config.Config) metrics.MetricRecorder {
	mc := cfg.Surfin.Infrastructure.Metrics
	if !mc.Enabled {
		return metrics.NewNoOpMetricRecorder()
	}
	r := NewPrometheusRecorder()
	if mc.PushgatewayURL != "" {
		jobName := cfg.Surfin.Batch.JobName
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if err := r.Push(ctx, mc.PushgatewayURL, jobName); err != nil {
					logger.Warnf("Failed to push metrics to '%s': %v", mc.PushgatewayURL, err)
				}
				return nil
			},
		})
	}
	return r
}

// NewTracer returns an OpenTelemetryTracer when tracing is enabled and a no-op tracer otherwise.
func NewTracer(lc fx.Lifecycle, cfg *config.Config) (metrics.Tracer, error) {
	tc := cfg.Surfin.Infrastructure.Tracing
	if !tc.Enabled {
		return metrics.NewNoOpTracer(), nil
	}
	t, err := NewOpenTelemetryTracer(context.Background(), tc)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: t.Shutdown})
	return t, nil
}

// Module provides the MetricRecorder and Tracer.
var Module = fx.Options(
	fx.Provide(NewMetricRecorder),
	fx.Provide(NewTracer),
)
