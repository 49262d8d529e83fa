package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2024, Month: time.February}, m)
	assert.Equal(t, "2024-02", m.String())

	for _, bad := range []string{"", "2024", "02-2024", "2024-13", "feb 2024"} {
		_, err := ParseMonth(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestMonthNextRollsYear(t *testing.T) {
	assert.Equal(t, Month{2024, time.February}, Month{2024, time.January}.Next())
	assert.Equal(t, Month{2025, time.January}, Month{2024, time.December}.Next())
}

func TestMonthRange(t *testing.T) {
	months, err := MonthRange(Month{2024, time.January}, Month{2024, time.March})
	require.NoError(t, err)
	assert.Equal(t, []Month{
		{2024, time.January},
		{2024, time.February},
		{2024, time.March},
	}, months)
}

func TestMonthRangeSpansYears(t *testing.T) {
	months, err := MonthRange(Month{2023, time.November}, Month{2024, time.February})
	require.NoError(t, err)
	assert.Equal(t, []Month{
		{2023, time.November},
		{2023, time.December},
		{2024, time.January},
		{2024, time.February},
	}, months)
}

func TestMonthRangeSingleMonth(t *testing.T) {
	months, err := MonthRange(Month{2024, time.June}, Month{2024, time.June})
	require.NoError(t, err)
	assert.Len(t, months, 1)
}

func TestMonthRangeReversed(t *testing.T) {
	_, err := MonthRange(Month{2024, time.March}, Month{2024, time.January})
	assert.Error(t, err)
}
