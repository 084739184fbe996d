// Package logging provides execution listeners that write job and step lifecycle events to the application log.
package logging

import (
	"context"
	"sort"
	"strings"

	port "github.com/tigerroll/daioe-scb/pkg/batch/core/application/port"
	model "github.com/tigerroll/daioe-scb/pkg/batch/core/domain/model"
	logger "github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const maskedValue = "********"

// LoggingJobListener logs the start and end of a job execution.
type LoggingJobListener struct {
	maskedKeys map[string]struct{}
}

// NewLoggingJobListener creates a LoggingJobListener. Parameters whose key
// is in maskedKeys (case-insensitive) are logged as a fixed mask.
func NewLoggingJobListener(maskedKeys []string) *LoggingJobListener {
	keys := make(map[string]struct{}, len(maskedKeys))
	for _, k := range maskedKeys {
		keys[strings.ToLower(k)] = struct{}{}
	}
	return &LoggingJobListener{maskedKeys: keys}
}

func (l *LoggingJobListener) BeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	logger.Infof("Job '%s' started (ID: %s, Params: %s)", jobExecution.JobName, jobExecution.ID, l.FormatParameters(jobExecution.Parameters))
}

func (l *LoggingJobListener) AfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	if jobExecution.Status == model.BatchStatusFailed {
		logger.Errorf("Job '%s' failed (ID: %s, Failures: %v)", jobExecution.JobName, jobExecution.ID, []string(jobExecution.Failures))
		return
	}
	logger.Infof("Job '%s' finished (ID: %s, Status: %s, ExitStatus: %s)", jobExecution.JobName, jobExecution.ID, jobExecution.Status, jobExecution.ExitStatus)
}

// FormatParameters renders params as "k=v" pairs sorted by key, with masked values hidden.
func (l *LoggingJobListener) FormatParameters(params model.JobParameters) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		v := params[k]
		if _, masked := l.maskedKeys[strings.ToLower(k)]; masked {
			v = maskedValue
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v)
	}
	sb.WriteByte('}')
	return sb.String()
}

var _ port.JobExecutionListener = (*LoggingJobListener)(nil)

// LoggingStepListener logs the start and end of each step execution.
type LoggingStepListener struct{}

func NewLoggingStepListener() *LoggingStepListener {
	return &LoggingStepListener{}
}

func (l *LoggingStepListener) BeforeStep(ctx context.Context, stepExecution *model.StepExecution) {
	logger.Infof("Step '%s' started (ID: %s)", stepExecution.StepName, stepExecution.ID)
}

func (l *LoggingStepListener) AfterStep(ctx context.Context, stepExecution *model.StepExecution) {
	var elapsed string
	if stepExecution.EndTime != nil {
		elapsed = stepExecution.EndTime.Sub(stepExecution.StartTime).String()
	}
	if stepExecution.Status == model.BatchStatusFailed {
		logger.Errorf("Step '%s' failed after %s: %v", stepExecution.StepName, elapsed, []string(stepExecution.Failures))
		return
	}
	logger.Infof("Step '%s' finished (Status: %s, ExitStatus: %s, Read: %d, Write: %d, Elapsed: %s)",
		stepExecution.StepName, stepExecution.Status, stepExecution.ExitStatus, stepExecution.ReadCount, stepExecution.WriteCount, elapsed)
}

var _ port.StepExecutionListener = (*LoggingStepListener)(nil)
