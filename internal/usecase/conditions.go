package usecase

import (
	"swingtrade-backend/internal/domain"
)

// EvaluateLatest builds the screening row for the newest bar of a series.
// Returns ErrInsufficientHistory while MA_long is still inside its warm-up
// window. Any condition that references an undefined indicator evaluates
// to false, never to a defaulted value.
func EvaluateLatest(inst domain.Instrument, series *domain.IndicatorSeries, rules domain.TradingRules) (*domain.ScreeningRow, error) {
	i := series.Len() - 1

	maLong, ok := series.MALongAt(i)
	if !ok {
		return nil, domain.ErrInsufficientHistory
	}

	// Window containment: MA_long defined implies the shorter windows are
	// filled too, but every read still goes through a guarded accessor.
	maShort, okShort := series.MAShortAt(i)
	maMid, okMid := series.MAMidAt(i)
	if !okShort || !okMid {
		return nil, domain.ErrInsufficientHistory
	}

	close := series.Bars[i].Close
	slope, slopeOK := series.MAMidSlopeAt(i)

	c1 := slopeOK && slope >= rules.SlopeThreshold
	if !slopeOK {
		slope = 0 // keep the row JSON-encodable
	}
	c2 := maMid > maLong
	c3 := maShort < maMid
	c4 := close > maShort

	return &domain.ScreeningRow{
		Code:       inst.Code,
		Name:       inst.Name,
		Close:      close,
		MAShort:    maShort,
		MAMid:      maMid,
		MALong:     maLong,
		Slope:      slope,
		C1Trend:    c1,
		C2Long:     c2,
		C3Pullback: c3,
		C4Trigger:  c4,
		AllSignal:  c1 && c2 && c3 && c4,
	}, nil
}
