package pipeline

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
)

// percentileRanks ranks the valid values with average ranks for ties and maps
// rank r of n onto (r-1)/(n-1)*scale. A single valid value gets 0. Missing
// values are left out of the ranking and stay missing.
func percentileRanks(values []model.NullFloat, scale float64, descending bool) []model.NullFloat {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if v.Valid {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if descending {
			return cmp.Compare(values[b].Float64, values[a].Float64)
		}
		return cmp.Compare(values[a].Float64, values[b].Float64)
	})

	out := make([]model.NullFloat, len(values))
	n := len(idx)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]].Float64 == values[idx[i]].Float64 {
			j++
		}
		p := 0.0
		if n > 1 {
			// Positions i..j share the average of ranks i+1..j+1.
			p = float64(i+j) / 2 / float64(n-1) * scale
		}
		for k := i; k <= j; k++ {
			out[idx[k]] = model.Float(p)
		}
		i = j + 1
	}
	return out
}

// partitionBounds returns [lo, hi) bounds of runs sharing (level, year).
// rows must be sorted by level then year.
func partitionBounds(rows []model.FinalRow) [][2]int {
	var bounds [][2]int
	for lo := 0; lo < len(rows); {
		hi := lo + 1
		for hi < len(rows) && rows[hi].Level == rows[lo].Level && rows[hi].Year == rows[lo].Year {
			hi++
		}
		bounds = append(bounds, [2]int{lo, hi})
		lo = hi
	}
	return bounds
}

// addPercentiles fills the percentile columns of rows. Partitions are disjoint
// slices of rows so they are ranked concurrently.
func addPercentiles(ctx context.Context, rows []model.FinalRow, indicators int, opts Options) error {
	for i := range rows {
		rows[i].PctlAvg = make([]model.NullFloat, indicators)
		rows[i].PctlWAvg = make([]model.NullFloat, indicators)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, b := range partitionBounds(rows) {
		part := rows[b[0]:b[1]]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rankPartition(part, indicators, opts.PctScale, opts.Descending)
			return nil
		})
	}
	return g.Wait()
}

func rankPartition(part []model.FinalRow, indicators int, scale float64, descending bool) {
	col := make([]model.NullFloat, len(part))
	for j := 0; j < indicators; j++ {
		for i := range part {
			col[i] = part[i].Avg[j]
		}
		for i, p := range percentileRanks(col, scale, descending) {
			part[i].PctlAvg[j] = p
		}

		for i := range part {
			col[i] = part[i].WAvg[j]
		}
		for i, p := range percentileRanks(col, scale, descending) {
			part[i].PctlWAvg[j] = p
		}
	}
}
