package pipeline

import (
	"context"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
)

// aggregateLevels groups each level by (ssyk_code, year) in parallel. The result
// holds the levels in model.Levels order, each sorted by (ssyk_code, year).
func aggregateLevels(ctx context.Context, leveled map[model.Level][]model.LeveledRow, indicators, workers int) ([]model.AggregateRow, error) {
	results := make([][]model.AggregateRow, len(model.Levels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, l := range model.Levels {
		i := i
		rows := leveled[l]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = aggregateLevel(rows, indicators)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.AggregateRow
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// aggregateLevel reduces the rows of a single level.
func aggregateLevel(rows []model.LeveledRow, indicators int) []model.AggregateRow {
	sorted := slices.Clone(rows)
	// Stable so rows inside a group keep their (native code, year) order and sums
	// are accumulated the same way on every run.
	slices.SortStableFunc(sorted, func(a, b model.LeveledRow) int {
		return compareKey(key{a.SSYKCode, a.Year}, key{b.SSYKCode, b.Year})
	})

	var out []model.AggregateRow
	for lo := 0; lo < len(sorted); {
		hi := lo + 1
		for hi < len(sorted) && sorted[hi].SSYKCode == sorted[lo].SSYKCode && sorted[hi].Year == sorted[lo].Year {
			hi++
		}
		out = append(out, aggregateGroup(sorted[lo:hi], indicators))
		lo = hi
	}
	return out
}

// aggregateGroup computes the statistics of one (level, ssyk_code, year) group.
func aggregateGroup(group []model.LeveledRow, indicators int) model.AggregateRow {
	first := group[0]
	agg := model.AggregateRow{
		Level:    first.Level,
		SSYKCode: first.SSYKCode,
		Year:     first.Year,
		Avg:      make([]model.NullFloat, indicators),
		WAvg:     make([]model.NullFloat, indicators),
	}

	weights := make([]float64, 0, len(group))
	for _, r := range group {
		if r.Count.Valid {
			weights = append(weights, r.Count.Float64)
		}
	}
	agg.WeightSum = floats.Sum(weights)

	xs := make([]float64, 0, len(group))
	wxs := make([]float64, 0, len(group))
	ws := make([]float64, 0, len(group))
	for j := 0; j < indicators; j++ {
		xs, wxs, ws = xs[:0], wxs[:0], ws[:0]
		for _, r := range group {
			v := r.Values[j]
			if !v.Valid {
				continue
			}
			xs = append(xs, v.Float64)
			if r.Count.Valid {
				wxs = append(wxs, v.Float64)
				ws = append(ws, r.Count.Float64)
			}
		}
		if len(xs) > 0 {
			agg.Avg[j] = finite(stat.Mean(xs, nil))
		}
		if floats.Sum(ws) != 0 {
			agg.WAvg[j] = finite(stat.Mean(wxs, ws))
		}
	}
	return agg
}

// finite wraps v, mapping results that overflowed to ±Inf (or NaN) to null.
func finite(v float64) model.NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return model.NullFloat{}
	}
	return model.Float(v)
}
