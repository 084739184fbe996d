package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_Truncate(t *testing.T) {
	code, ok := SSYK3.Truncate("7521")
	require.True(t, ok)
	assert.Equal(t, "752", code)

	_, ok = SSYK4.Truncate("75")
	assert.False(t, ok)

	l, err := LevelOf(2)
	require.NoError(t, err)
	assert.Equal(t, SSYK2, l)
	_, err = LevelOf(5)
	assert.Error(t, err)
}

func TestFinalTable_Columns(t *testing.T) {
	table := FinalTable{Indicators: []string{"genai"}, Percentiles: true}
	assert.Equal(t, []string{
		"level", "ssyk_code", "year", "weight_sum",
		"daioe_genai_avg", "daioe_genai_wavg", "pctl_genai_avg", "pctl_genai_wavg",
	}, table.Columns())

	table.Percentiles = false
	assert.Len(t, table.Columns(), 6)
}

func TestIndicatorName(t *testing.T) {
	name, ok := IndicatorName("daioe_genai", "daioe_")
	require.True(t, ok)
	assert.Equal(t, "genai", name)

	_, ok = IndicatorName("year", "daioe_")
	assert.False(t, ok)
	_, ok = IndicatorName("daioe_", "daioe_")
	assert.False(t, ok)
}

func TestEmploymentTable_MaxYear(t *testing.T) {
	_, ok := EmploymentTable{}.MaxYear()
	assert.False(t, ok)

	y, ok := EmploymentTable{Rows: []EmploymentRow{{Year: 2019}, {Year: 2023}, {Year: 2021}}}.MaxYear()
	require.True(t, ok)
	assert.Equal(t, 2023, y)
}
