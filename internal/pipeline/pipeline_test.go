package pipeline

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/daioe-scb/internal/domain/model"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
)

func ind(code string, year int, values ...model.NullFloat) model.IndicatorRow {
	return model.IndicatorRow{Code: code, Year: year, Values: values}
}

func emp(code string, year int, count float64) model.EmploymentRow {
	return model.EmploymentRow{Code: code, Year: year, Count: count}
}

func f(v float64) model.NullFloat { return model.Float(v) }

func findRow(t *testing.T, table model.FinalTable, level model.Level, code string, year int) model.FinalRow {
	t.Helper()
	for _, r := range table.Rows {
		if r.Level == level && r.SSYKCode == code && r.Year == year {
			return r
		}
	}
	require.FailNowf(t, "row not found", "%s %s %d", level, code, year)
	return model.FinalRow{}
}

func run(t *testing.T, indicators model.IndicatorTable, employment model.EmploymentTable, opts Options) model.FinalTable {
	t.Helper()
	table, err := Run(context.Background(), indicators, employment, opts)
	require.NoError(t, err)
	return table
}

// TestRun_WeightedRollup checks the 7521/7522 example rolled up to 752.
func TestRun_WeightedRollup(t *testing.T) {
	indicators := model.IndicatorTable{
		Names: []string{"indicator_x"},
		Rows:  []model.IndicatorRow{ind("7521", 2020, f(10)), ind("7522", 2020, f(20))},
	}
	employment := model.EmploymentTable{Rows: []model.EmploymentRow{emp("7521", 2020, 100), emp("7522", 2020, 300)}}

	table := run(t, indicators, employment, DefaultOptions())

	r := findRow(t, table, model.SSYK3, "752", 2020)
	assert.Equal(t, 400.0, r.WeightSum)
	require.True(t, r.Avg[0].Valid)
	assert.InDelta(t, 15.0, r.Avg[0].Float64, 1e-12)
	require.True(t, r.WAvg[0].Valid)
	assert.InDelta(t, 17.5, r.WAvg[0].Float64, 1e-12)

	// 752 is alone in its partition.
	assert.Equal(t, f(0), r.PctlAvg[0])

	assert.Equal(t, f(0), findRow(t, table, model.SSYK4, "7521", 2020).PctlWAvg[0])
	assert.Equal(t, f(100), findRow(t, table, model.SSYK4, "7522", 2020).PctlWAvg[0])

	assert.Equal(t, []string{
		"level", "ssyk_code", "year", "weight_sum",
		"daioe_indicator_x_avg", "daioe_indicator_x_wavg", "pctl_indicator_x_avg", "pctl_indicator_x_wavg",
	}, table.Columns())

	// Sorted by (level, year, ssyk_code).
	var levels []model.Level
	for _, row := range table.Rows {
		levels = append(levels, row.Level)
	}
	assert.Equal(t, []model.Level{model.SSYK1, model.SSYK2, model.SSYK3, model.SSYK4, model.SSYK4}, levels)
}

func propertyFixture() (model.IndicatorTable, model.EmploymentTable) {
	indicators := model.IndicatorTable{
		Names: []string{"genai", "allapps"},
		Rows: []model.IndicatorRow{
			ind("0110", 2020, f(99), f(99)),
			ind("2511", 2020, f(3), f(1)),
			ind("2512", 2020, f(5), model.Null),
			ind("2611", 2020, f(1), f(4)),
			ind("5120", 2020, model.Null, f(2)),
			ind("5131", 2020, f(2), f(2)),
			ind("2511", 2021, f(4), f(1)),
			ind("2512", 2021, f(6), f(3)),
			ind("5120", 2021, f(1), f(2)),
		},
	}
	employment := model.EmploymentTable{Rows: []model.EmploymentRow{
		emp("0110", 2020, 5000),
		emp("2511", 2020, 120), emp("2511", 2020, 80),
		emp("2512", 2020, 50),
		emp("2611", 2020, 30),
		emp("5120", 2020, 400),
		emp("5131", 2020, 0),
		emp("2511", 2021, 210),
		emp("2512", 2021, 60),
		emp("5120", 2021, 390),
		emp("25", 2020, 123456),
	}}
	return indicators, employment
}

// TestRun_MilitaryExcluded checks that code 0 rows never reach an aggregate.
func TestRun_MilitaryExcluded(t *testing.T) {
	indicators, employment := propertyFixture()
	table := run(t, indicators, employment, DefaultOptions())

	for _, r := range table.Rows {
		assert.False(t, strings.HasPrefix(r.SSYKCode, "0"), "row %s %s", r.Level, r.SSYKCode)
		for _, v := range append(slices.Clone(r.Avg), r.WAvg...) {
			if v.Valid {
				assert.NotEqual(t, 99.0, v.Float64)
			}
		}
	}

	opts := DefaultOptions()
	opts.DropMilitary = false
	table = run(t, indicators, employment, opts)
	assert.Equal(t, 5000.0, findRow(t, table, model.SSYK1, "0", 2020).WeightSum)
}

// TestRun_LevelTruncation checks every code has the level's length and prefixes an input code.
func TestRun_LevelTruncation(t *testing.T) {
	indicators, employment := propertyFixture()
	table := run(t, indicators, employment, DefaultOptions())
	require.NotEmpty(t, table.Rows)

	for _, r := range table.Rows {
		assert.Len(t, r.SSYKCode, r.Level.Digits())
		assert.True(t, slices.ContainsFunc(indicators.Rows, func(in model.IndicatorRow) bool {
			return strings.HasPrefix(in.Code, r.SSYKCode)
		}), "code %s", r.SSYKCode)
	}
}

// TestRun_WeightConservation checks level-1 weight sums equal the sum of their level-4 groups.
func TestRun_WeightConservation(t *testing.T) {
	indicators, employment := propertyFixture()
	table := run(t, indicators, employment, DefaultOptions())

	type k struct {
		code string
		year int
	}
	level4 := map[k]float64{}
	for _, r := range table.Rows {
		if r.Level == model.SSYK4 {
			level4[k{r.SSYKCode[:1], r.Year}] += r.WeightSum
		}
	}
	checked := 0
	for _, r := range table.Rows {
		if r.Level == model.SSYK1 {
			assert.InDelta(t, level4[k{r.SSYKCode, r.Year}], r.WeightSum, 1e-9)
			checked++
		}
	}
	assert.Equal(t, 4, checked)

	// Breakdown rows are summed, coarser SCB codes ignored.
	assert.Equal(t, 200.0, findRow(t, table, model.SSYK4, "2511", 2020).WeightSum)
	assert.Equal(t, 250.0, findRow(t, table, model.SSYK2, "25", 2020).WeightSum)
}

// TestRun_NullSafety checks all-null groups yield null statistics and null percentiles.
func TestRun_NullSafety(t *testing.T) {
	indicators, employment := propertyFixture()
	table := run(t, indicators, employment, DefaultOptions())

	r := findRow(t, table, model.SSYK4, "5120", 2020)
	assert.False(t, r.Avg[0].Valid)
	assert.False(t, r.WAvg[0].Valid)
	assert.False(t, r.PctlAvg[0].Valid)
	assert.False(t, r.PctlWAvg[0].Valid)
	// The other indicator of the same group is unaffected.
	assert.Equal(t, f(2), r.Avg[1])
	assert.Equal(t, f(2), r.WAvg[1])

	// Zero total weight gives a null weighted mean but a valid mean.
	r = findRow(t, table, model.SSYK4, "5131", 2020)
	assert.Equal(t, f(2), r.Avg[0])
	assert.False(t, r.WAvg[0].Valid)

	// 5120 has no genai value so 513 alone makes up the 51 mean.
	r = findRow(t, table, model.SSYK2, "51", 2020)
	assert.Equal(t, 400.0, r.WeightSum)
	assert.Equal(t, f(2), r.Avg[0])
	assert.False(t, r.WAvg[0].Valid)

	// The null-indicator weight is left out of the denominator: 25 in 2020
	// has allapps only on 2511 (weight 200).
	r = findRow(t, table, model.SSYK2, "25", 2020)
	assert.InDelta(t, 1.0, r.WAvg[1].Float64, 1e-12)
	assert.InDelta(t, (3.0*200+5*50)/250, r.WAvg[0].Float64, 1e-12)
}

// TestRun_OverflowIsNull checks a weighted mean that overflows float64 is
// reported as missing instead of +Inf.
func TestRun_OverflowIsNull(t *testing.T) {
	indicators := model.IndicatorTable{
		Names: []string{"indicator_x"},
		Rows:  []model.IndicatorRow{ind("7521", 2020, f(1e308))},
	}
	employment := model.EmploymentTable{Rows: []model.EmploymentRow{emp("7521", 2020, 10)}}

	table := run(t, indicators, employment, DefaultOptions())

	r := findRow(t, table, model.SSYK4, "7521", 2020)
	assert.Equal(t, 10.0, r.WeightSum)
	assert.Equal(t, f(1e308), r.Avg[0])
	assert.False(t, r.WAvg[0].Valid)
	assert.False(t, r.PctlWAvg[0].Valid)
}

// TestRun_PercentileBounds checks percentiles stay in [0, scale] for both scales.
func TestRun_PercentileBounds(t *testing.T) {
	indicators, employment := propertyFixture()
	for _, scale := range []float64{1, 100} {
		opts := DefaultOptions()
		opts.PctScale = scale
		table := run(t, indicators, employment, opts)
		for _, r := range table.Rows {
			for _, v := range append(slices.Clone(r.PctlAvg), r.PctlWAvg...) {
				if v.Valid {
					assert.GreaterOrEqual(t, v.Float64, 0.0)
					assert.LessOrEqual(t, v.Float64, scale)
				}
			}
		}
	}
}

// TestRun_Deterministic checks the output does not depend on input order or worker count.
func TestRun_Deterministic(t *testing.T) {
	indicators, employment := propertyFixture()

	opts := DefaultOptions()
	opts.Workers = 1
	serial := run(t, indicators, employment, opts)

	reversed := indicators
	reversed.Rows = slices.Clone(indicators.Rows)
	slices.Reverse(reversed.Rows)
	reversedEmp := model.EmploymentTable{Rows: slices.Clone(employment.Rows)}
	slices.Reverse(reversedEmp.Rows)

	opts.Workers = 8
	for i := 0; i < 5; i++ {
		assert.Equal(t, serial, run(t, reversed, reversedEmp, opts))
	}
}

func TestRun_LeftJoin(t *testing.T) {
	indicators := model.IndicatorTable{
		Names: []string{"x"},
		Rows:  []model.IndicatorRow{ind("7521", 2020, f(10)), ind("7522", 2020, f(20))},
	}
	employment := model.EmploymentTable{Rows: []model.EmploymentRow{emp("7521", 2020, 100)}}

	inner := run(t, indicators, employment, DefaultOptions())
	r := findRow(t, inner, model.SSYK3, "752", 2020)
	assert.Equal(t, f(10), r.Avg[0])

	opts := DefaultOptions()
	opts.JoinType = JoinLeft
	left := run(t, indicators, employment, opts)
	r = findRow(t, left, model.SSYK3, "752", 2020)
	assert.Equal(t, 100.0, r.WeightSum)
	assert.Equal(t, f(15), r.Avg[0])
	assert.Equal(t, f(10), r.WAvg[0])
	assert.Equal(t, 0.0, findRow(t, left, model.SSYK4, "7522", 2020).WeightSum)
}

func TestRun_Duplicates(t *testing.T) {
	indicators := model.IndicatorTable{
		Names: []string{"x"},
		Rows:  []model.IndicatorRow{ind("7521", 2020, f(10)), ind("7521", 2020, f(30))},
	}
	employment := model.EmploymentTable{Rows: []model.EmploymentRow{emp("7521", 2020, 100)}}

	_, err := Run(context.Background(), indicators, employment, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrSchema))
	assert.Contains(t, err.Error(), "7521")

	opts := DefaultOptions()
	opts.DuplicatePolicy = DuplicateLast
	table := run(t, indicators, employment, opts)
	assert.Equal(t, f(30), findRow(t, table, model.SSYK4, "7521", 2020).Avg[0])
}

func TestRun_MinYearAndExtension(t *testing.T) {
	indicators := model.IndicatorTable{
		Names: []string{"x"},
		Rows:  []model.IndicatorRow{ind("7521", 2013, f(1)), ind("7521", 2020, f(10))},
	}
	employment := model.EmploymentTable{Rows: []model.EmploymentRow{
		emp("7521", 2013, 10), emp("7521", 2020, 100), emp("7521", 2021, 110), emp("7521", 2022, 120),
	}}

	years := func(table model.FinalTable) []int {
		var ys []int
		for _, r := range table.Rows {
			if r.Level == model.SSYK4 {
				ys = append(ys, r.Year)
			}
		}
		return ys
	}

	table := run(t, indicators, employment, DefaultOptions())
	assert.Equal(t, []int{2020, 2021, 2022}, years(table))
	r := findRow(t, table, model.SSYK4, "7521", 2022)
	assert.Equal(t, f(10), r.Avg[0])
	assert.Equal(t, 120.0, r.WeightSum)

	opts := DefaultOptions()
	opts.ExtendYears = false
	assert.Equal(t, []int{2020}, years(run(t, indicators, employment, opts)))

	opts.MinYear = 0
	assert.Equal(t, []int{2013, 2020}, years(run(t, indicators, employment, opts)))
}

func TestRun_WithoutPercentiles(t *testing.T) {
	indicators, employment := propertyFixture()
	opts := DefaultOptions()
	opts.AddPercentiles = false

	table := run(t, indicators, employment, opts)
	assert.False(t, table.Percentiles)
	for _, r := range table.Rows {
		assert.Nil(t, r.PctlAvg)
		assert.Nil(t, r.PctlWAvg)
	}
	assert.NotContains(t, table.Columns(), "pctl_genai_avg")
}

func TestRun_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.JoinType = "outer"
	opts.PctScale = 0

	_, err := Run(context.Background(), model.IndicatorTable{}, model.EmploymentTable{}, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrConfig))
	assert.Contains(t, err.Error(), "outer")
}

func TestRun_EmptyInput(t *testing.T) {
	table := run(t, model.IndicatorTable{Names: []string{"x"}}, model.EmploymentTable{}, DefaultOptions())
	assert.Empty(t, table.Rows)
	assert.Equal(t, []string{"x"}, table.Indicators)
}
