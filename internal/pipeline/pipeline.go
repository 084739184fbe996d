package pipeline

import (
	"cmp"
	"context"
	"slices"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const moduleName = "pipeline"

// Run builds the final table from the DAIOE indicators and the SCB employment counts.
//
// Indicator rows before MinYear are dropped, employment counts are summed per
// (code, year) at the finest indicator granularity, the indicators are joined on
// (code, year), rolled up to every SSYK level and ranked inside each (level, year).
// The rows of the result are sorted by (level, year, ssyk_code).
func Run(ctx context.Context, ind model.IndicatorTable, emp model.EmploymentTable, opts Options) (model.FinalTable, error) {
	if err := opts.validate(); err != nil {
		return model.FinalTable{}, err
	}
	indicators := len(ind.Names)
	for _, r := range ind.Rows {
		if len(r.Values) != indicators {
			return model.FinalTable{}, exception.NewSchemaError(moduleName,
				"indicator row does not match the indicator columns", nil)
		}
	}
	logger.Debugf("Pipeline options: %s", opts)

	rows := filterMinYear(ind.Rows, opts.MinYear)
	rows, err := dedupeIndicators(rows, opts.DuplicatePolicy)
	if err != nil {
		return model.FinalTable{}, err
	}

	digits := finestDigits(rows)
	counts := reduceEmployment(emp.Rows, digits)
	if opts.ExtendYears {
		if last, ok := maxKeyYear(counts); ok {
			before := len(rows)
			rows = extendYears(rows, last)
			if added := len(rows) - before; added > 0 {
				logger.Infof("Extended indicator data to %d (%d replicated rows).", last, added)
			}
		}
	}

	joined := join(rows, counts, opts.JoinType, opts.DropMilitary)
	logger.Infof("Joined %d of %d indicator rows with employment counts at %d digits.", len(joined), len(rows), digits)

	aggregates, err := aggregateLevels(ctx, expandLevels(joined), indicators, opts.workers())
	if err != nil {
		return model.FinalTable{}, err
	}

	final := make([]model.FinalRow, len(aggregates))
	for i, a := range aggregates {
		final[i] = model.FinalRow{AggregateRow: a}
	}
	slices.SortStableFunc(final, func(a, b model.FinalRow) int {
		if c := cmp.Compare(a.Level, b.Level); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.SSYKCode, b.SSYKCode)
	})
	logRowsPerLevel(final)

	if opts.AddPercentiles {
		if err := addPercentiles(ctx, final, indicators, opts); err != nil {
			return model.FinalTable{}, err
		}
	}

	return model.FinalTable{
		Indicators:  slices.Clone(ind.Names),
		Percentiles: opts.AddPercentiles,
		Rows:        final,
	}, nil
}

func logRowsPerLevel(rows []model.FinalRow) {
	perLevel := make(map[model.Level]int, len(model.Levels))
	for _, r := range rows {
		perLevel[r.Level]++
	}
	for _, l := range model.Levels {
		logger.Infof("Aggregated %s: %d rows.", l, perLevel[l])
	}
}
