package pipeline

import (
	"cmp"
	"slices"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
)

type key struct {
	code string
	year int
}

func compareKey(a, b key) int {
	if c := cmp.Compare(a.code, b.code); c != 0 {
		return c
	}
	return cmp.Compare(a.year, b.year)
}

// filterMinYear drops indicator rows before minYear.
func filterMinYear(rows []model.IndicatorRow, minYear int) []model.IndicatorRow {
	out := make([]model.IndicatorRow, 0, len(rows))
	for _, r := range rows {
		if r.Year >= minYear {
			out = append(out, r)
		}
	}
	return out
}

// dedupeIndicators enforces one row per (code, year). Under DuplicateLast the
// surviving row takes the position of the first occurrence.
func dedupeIndicators(rows []model.IndicatorRow, policy DuplicatePolicy) ([]model.IndicatorRow, error) {
	pos := make(map[key]int, len(rows))
	out := make([]model.IndicatorRow, 0, len(rows))
	var dups exception.Collector
	for _, r := range rows {
		k := key{r.Code, r.Year}
		i, seen := pos[k]
		if !seen {
			pos[k] = len(out)
			out = append(out, r)
			continue
		}
		if policy == DuplicateLast {
			out[i] = r
			continue
		}
		dups.Addf("duplicate indicator row for code %q year %d", r.Code, r.Year)
	}
	if err := dups.ErrorOrNil(); err != nil {
		return nil, exception.NewSchemaError(moduleName, "indicator data has repeated (code, year) keys", err)
	}
	return out, nil
}

// finestDigits returns the longest indicator code length.
func finestDigits(rows []model.IndicatorRow) int {
	n := 0
	for _, r := range rows {
		if len(r.Code) > n {
			n = len(r.Code)
		}
	}
	return n
}

// reduceEmployment sums counts per (code, year) over breakdown dimensions, keeping
// only codes of the given length.
func reduceEmployment(rows []model.EmploymentRow, digits int) map[key]float64 {
	out := make(map[key]float64)
	for _, r := range rows {
		if len(r.Code) != digits {
			continue
		}
		out[key{r.Code, r.Year}] += r.Count
	}
	return out
}

// extendYears replicates the rows of the last indicator year for every later
// year up to lastYear.
func extendYears(rows []model.IndicatorRow, lastYear int) []model.IndicatorRow {
	if len(rows) == 0 {
		return rows
	}
	maxYear := rows[0].Year
	for _, r := range rows[1:] {
		maxYear = max(maxYear, r.Year)
	}
	if lastYear <= maxYear {
		return rows
	}

	var latest []model.IndicatorRow
	for _, r := range rows {
		if r.Year == maxYear {
			latest = append(latest, r)
		}
	}
	out := slices.Clip(rows)
	for y := maxYear + 1; y <= lastYear; y++ {
		for _, r := range latest {
			out = append(out, model.IndicatorRow{Code: r.Code, Year: y, Values: slices.Clone(r.Values)})
		}
	}
	return out
}

func maxKeyYear(counts map[key]float64) (int, bool) {
	found := false
	y := 0
	for k := range counts {
		if !found || k.year > y {
			y, found = k.year, true
		}
	}
	return y, found
}
