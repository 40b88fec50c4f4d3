package indicators

import (
	"time"

	"swingtrade-backend/internal/domain"
)

// Build derives the full indicator set for a bar sequence. Pure function:
// the input is never modified and two calls on the same input produce
// identical output.
func Build(bars []domain.PriceBar, rules domain.TradingRules) (*domain.IndicatorSeries, error) {
	if len(bars) == 0 {
		return nil, domain.ErrDataUnavailable
	}

	closes := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	volumeAbove := make([]bool, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		lows[i] = b.Low
		volumeAbove[i] = b.Volume >= rules.VolumeThreshold
	}

	maMid := RollingMean(closes, rules.MAMid)

	return &domain.IndicatorSeries{
		Bars:       bars,
		MAShort:    RollingMean(closes, rules.MAShort),
		MAMid:      maMid,
		MALong:     RollingMean(closes, rules.MALong),
		MAMidSlope: SlopePercent(maMid, rules.SlopePeriod),
		RecentLow:  RollingMin(lows, rules.StopLossLookback),
		VolumeOK:   RollingAllTrue(volumeAbove, rules.VolumeStreakDays),
	}, nil
}

// ResampleWeekly aggregates daily bars into weekly bars anchored on Friday
// (open = first, high = max, low = min, close = last, volume = sum). The
// returned bars are dated by the Friday that closes each week.
func ResampleWeekly(bars []domain.PriceBar) []domain.PriceBar {
	if len(bars) == 0 {
		return nil
	}

	var weekly []domain.PriceBar
	var cur domain.PriceBar
	var curEnd time.Time

	for _, b := range bars {
		end := weekEndingFriday(b.Date)
		if curEnd.IsZero() || !end.Equal(curEnd) {
			if !curEnd.IsZero() {
				weekly = append(weekly, cur)
			}
			cur = b
			cur.Date = end
			curEnd = end
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	weekly = append(weekly, cur)
	return weekly
}

func weekEndingFriday(d time.Time) time.Time {
	// Saturday and Sunday roll forward to the next Friday.
	offset := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	day := d.AddDate(0, 0, offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, d.Location())
}
