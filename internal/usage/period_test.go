package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeriods_Contiguous(t *testing.T) {
	now := time.Date(2025, 12, 10, 9, 30, 0, 0, time.UTC)

	periods, err := Periods(4, now)
	require.NoError(t, err)
	require.Len(t, periods, 4)

	for i, p := range periods {
		require.Equal(t, i, p.Offset)
	}

	labels := []string{periods[0].Label, periods[1].Label, periods[2].Label, periods[3].Label}
	require.Equal(t, []string{"Current", "November,2025", "October,2025", "September,2025"}, labels)
}

func TestPeriods_Zero(t *testing.T) {
	periods, err := Periods(0, time.Now())
	require.NoError(t, err)
	require.Empty(t, periods)
}

func TestPeriods_Negative(t *testing.T) {
	_, err := Periods(-1, time.Now())
	require.ErrorIs(t, err, ErrInvalidPeriodCount)
}

func TestPeriodAt_YearBoundary(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	p := PeriodAt(2, now)
	require.Equal(t, "November,2025", p.Label)
	require.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), p.Start)
}

func TestPeriodAt_EndOfMonth(t *testing.T) {
	// AddDate(0, -1, 0) on March 31st lands on March 3rd.
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "February,2025", PeriodAt(1, now).Label)
}
