// Package pipeline joins DAIOE indicators to SCB employment counts and rolls them up
// to the four SSYK 2012 levels with weighted statistics and percentile ranks.
package pipeline

import (
	"fmt"
	"runtime"

	"github.com/tigerroll/daioe-scb/pkg/batch/core/config"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
)

// JoinType selects how indicator rows without an employment count are handled.
type JoinType string

const (
	// JoinInner drops indicator rows without a matching employment row.
	JoinInner JoinType = "inner"
	// JoinLeft keeps them with a missing count.
	JoinLeft JoinType = "left"
)

// DuplicatePolicy selects how repeated (code, year) indicator rows are handled.
type DuplicatePolicy string

const (
	// DuplicateReject fails the run with a schema error.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateLast keeps the last row read.
	DuplicateLast DuplicatePolicy = "last"
)

// Options controls a pipeline run.
type Options struct {
	MinYear         int
	ExtendYears     bool
	JoinType        JoinType
	DuplicatePolicy DuplicatePolicy
	DropMilitary    bool
	AddPercentiles  bool
	PctScale        float64
	Descending      bool
	// Workers bounds the number of partitions processed at once. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MinYear:         2014,
		ExtendYears:     true,
		JoinType:        JoinInner,
		DuplicatePolicy: DuplicateReject,
		DropMilitary:    true,
		AddPercentiles:  true,
		PctScale:        100,
	}
}

// OptionsFromConfig maps the pipeline configuration section onto Options.
func OptionsFromConfig(cfg *config.PipelineConfig) Options {
	return Options{
		MinYear:         cfg.MinYear,
		ExtendYears:     cfg.ExtendYears,
		JoinType:        JoinType(cfg.JoinType),
		DuplicatePolicy: DuplicatePolicy(cfg.DuplicatePolicy),
		DropMilitary:    cfg.DropMilitary,
		AddPercentiles:  cfg.AddPercentiles,
		PctScale:        float64(cfg.PctScale),
		Descending:      cfg.Descending,
		Workers:         cfg.Workers,
	}
}

func (o Options) validate() error {
	var c exception.Collector
	switch o.JoinType {
	case JoinInner, JoinLeft:
	default:
		c.Addf("unknown join type %q", o.JoinType)
	}
	switch o.DuplicatePolicy {
	case DuplicateReject, DuplicateLast:
	default:
		c.Addf("unknown duplicate policy %q", o.DuplicatePolicy)
	}
	if o.AddPercentiles && o.PctScale <= 0 {
		c.Addf("percentile scale must be positive, got %v", o.PctScale)
	}
	if o.Workers < 0 {
		c.Addf("workers must not be negative, got %d", o.Workers)
	}
	if err := c.ErrorOrNil(); err != nil {
		return exception.NewConfigError(moduleName, "invalid pipeline options", err)
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) String() string {
	return fmt.Sprintf("min_year=%d extend_years=%t join=%s duplicates=%s drop_military=%t percentiles=%t scale=%v descending=%t workers=%d",
		o.MinYear, o.ExtendYears, o.JoinType, o.DuplicatePolicy, o.DropMilitary, o.AddPercentiles, o.PctScale, o.Descending, o.workers())
}
