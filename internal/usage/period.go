package usage

import (
	"errors"
	"fmt"
	"time"
)

const (
	CurrentPeriodLabel = "Current"
	periodLabelLayout  = "January,2006"
)

var ErrInvalidPeriodCount = errors.New("period count must not be negative")

// Periods returns count billing periods, offset 0 first. A zero count yields
// an empty slice.
func Periods(count int, now time.Time) ([]BillingPeriod, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriodCount, count)
	}

	periods := make([]BillingPeriod, 0, count)
	for offset := 0; offset < count; offset++ {
		periods = append(periods, PeriodAt(offset, now))
	}
	return periods, nil
}

// PeriodAt maps a single offset. The month is normalized to its first day so
// that stepping back from e.g. March 31st never skips February.
func PeriodAt(offset int, now time.Time) BillingPeriod {
	month := time.Date(now.Year(), now.Month()-time.Month(offset), 1, 0, 0, 0, 0, time.UTC)

	label := CurrentPeriodLabel
	if offset > 0 {
		label = month.Format(periodLabelLayout)
	}

	return BillingPeriod{
		Offset: offset,
		Label:  label,
		Start:  month,
	}
}
