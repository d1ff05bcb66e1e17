package atmos

import (
	"context"

	"github.com/user/atmos-energy/internal/usage"
	"go.uber.org/zap"
)

// Single returns the readings of the current billing period with one
// download.
func (c *Client) Single(ctx context.Context, s *Session) ([]usage.Reading, error) {
	return c.History(ctx, s, 1)
}

// History downloads months billing periods one after another, most recent
// first, and merges them into a single ascending series. It makes exactly
// months downloads and gives up on the first failing period.
func (c *Client) History(ctx context.Context, s *Session, months int) ([]usage.Reading, error) {
	periods, err := usage.Periods(months, c.now())
	if err != nil {
		return nil, err
	}

	perPeriod := make([][]usage.Reading, 0, len(periods))
	for _, p := range periods {
		raw, err := c.Fetch(ctx, s, p)
		if err != nil {
			return nil, &PeriodError{Offset: p.Offset, Period: p.Label, Stage: StageFetch, Err: err}
		}

		readings, err := ParseWorkbook(raw)
		if err != nil {
			c.logger.Error("unable to open workbook", zap.String("period", p.Label), zap.Error(err))
			return nil, &PeriodError{Offset: p.Offset, Period: p.Label, Stage: StageParse, Err: err}
		}

		c.logger.Debug("processed usage rows",
			zap.Int("offset", p.Offset),
			zap.String("period", p.Label),
			zap.Int("readings", len(readings)),
		)
		perPeriod = append(perPeriod, readings)
	}

	return usage.Merge(perPeriod...), nil
}
