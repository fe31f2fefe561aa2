package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstruct/utils"
)

func TestAddMonth_ClampsToMonthEnd(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start  time.Time
		months int
		want   time.Time
	}{
		{utils.Date(2024, 1, 31), 1, utils.Date(2024, 2, 29)},
		{utils.Date(2023, 1, 31), 1, utils.Date(2023, 2, 28)},
		{utils.Date(2023, 3, 31), -1, utils.Date(2023, 2, 28)},
		{utils.Date(2023, 6, 15), 18, utils.Date(2024, 12, 15)},
		{utils.Date(2023, 8, 31), 6, utils.Date(2024, 2, 29)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, utils.AddMonth(tc.start, tc.months), "start=%s months=%d", tc.start.Format(utils.DateLayout), tc.months)
	}
}

func TestDaysAndEndOfMonth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 60, utils.Days(utils.Date(2020, 1, 1), utils.Date(2020, 3, 1)))
	assert.Equal(t, -31, utils.Days(utils.Date(2020, 2, 1), utils.Date(2020, 1, 1)))
	assert.True(t, utils.IsEndOfMonth(utils.Date(2024, 2, 29)))
	assert.False(t, utils.IsEndOfMonth(utils.Date(2023, 2, 27)))
	assert.Equal(t, utils.Date(2023, 2, 28), utils.EndOfMonth(utils.Date(2023, 2, 3)))
	assert.True(t, utils.IsLeapYear(2000))
	assert.False(t, utils.IsLeapYear(1900))
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := utils.ParseDate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, utils.Date(2025, 6, 15), d)

	_, err = utils.ParseDate("15/06/2025")
	require.Error(t, err)
}

