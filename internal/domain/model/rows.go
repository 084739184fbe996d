// Package model holds the tables that flow through the aggregation pipeline.
// Every table is built once by one stage and only read by the next.
package model

import "strings"

// IndicatorRow is one DAIOE row: indicator values of one occupation code in one year.
// Values is aligned with IndicatorTable.Names.
type IndicatorRow struct {
	Code   string
	Year   int
	Values []NullFloat
}

// IndicatorTable is the parsed DAIOE dataset.
type IndicatorTable struct {
	// Names are the indicator names without the DAIOE column prefix.
	Names []string
	Rows  []IndicatorRow
}

// EmploymentRow is one SCB employment count.
type EmploymentRow struct {
	Code  string
	Year  int
	Count float64
}

// EmploymentTable is the parsed SCB dataset.
type EmploymentTable struct {
	Rows []EmploymentRow
}

// MaxYear returns the largest year in the table, or false when it is empty.
func (t EmploymentTable) MaxYear() (int, bool) {
	if len(t.Rows) == 0 {
		return 0, false
	}
	max := t.Rows[0].Year
	for _, r := range t.Rows[1:] {
		if r.Year > max {
			max = r.Year
		}
	}
	return max, true
}

// JoinedRow is an indicator row with the employment count of the same (code, year).
// Count is missing for rows kept by a left join without a match.
type JoinedRow struct {
	Code   string
	Year   int
	Values []NullFloat
	Count  NullFloat
}

// LeveledRow is a JoinedRow assigned to one level.
type LeveledRow struct {
	Level    Level
	SSYKCode string
	Year     int
	Values   []NullFloat
	Count    NullFloat
}

// AggregateRow holds the statistics of one (level, ssyk_code, year) group.
// Avg and WAvg are aligned with the indicator names.
type AggregateRow struct {
	Level     Level
	SSYKCode  string
	Year      int
	WeightSum float64
	Avg       []NullFloat
	WAvg      []NullFloat
}

// FinalRow is an AggregateRow with its percentile ranks inside its (level, year) partition.
type FinalRow struct {
	AggregateRow
	PctlAvg  []NullFloat
	PctlWAvg []NullFloat
}

// FinalTable is the output of the pipeline.
type FinalTable struct {
	Indicators  []string
	Percentiles bool
	Rows        []FinalRow
}

// Columns returns the output column names in order.
func (t FinalTable) Columns() []string {
	cols := []string{ColumnLevel, ColumnSSYKCode, ColumnYear, ColumnWeightSum}
	for _, name := range t.Indicators {
		cols = append(cols, AvgColumn(name), WAvgColumn(name))
		if t.Percentiles {
			cols = append(cols, PctlAvgColumn(name), PctlWAvgColumn(name))
		}
	}
	return cols
}

// Output column names.
const (
	ColumnLevel     = "level"
	ColumnSSYKCode  = "ssyk_code"
	ColumnYear      = "year"
	ColumnWeightSum = "weight_sum"
)

func AvgColumn(name string) string      { return "daioe_" + name + "_avg" }
func WAvgColumn(name string) string     { return "daioe_" + name + "_wavg" }
func PctlAvgColumn(name string) string  { return "pctl_" + name + "_avg" }
func PctlWAvgColumn(name string) string { return "pctl_" + name + "_wavg" }

// IndicatorName strips prefix from a DAIOE column name. The second result is
// false when the column is not an indicator.
func IndicatorName(column, prefix string) (string, bool) {
	if !strings.HasPrefix(column, prefix) || len(column) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(column, prefix), true
}
