package domain

import (
	"math"
	"time"
)

// PriceBar is one daily (or weekly, when resampled) OHLCV bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Stop-loss and exit method variants. The canonical strategy is
// recent_low + ma_cross; the others come from the richer rule sets.
const (
	StopLossRecentLow  = "recent_low"
	StopLossPercentage = "percentage"

	ExitMACross    = "ma_cross"
	ExitTakeProfit = "take_profit"
)

// TradingRules holds every tunable of the pullback strategy.
// Immutable per run: usecases take it by value.
type TradingRules struct {
	MAShort int `json:"maShort" yaml:"ma_short"`
	MAMid   int `json:"maMid" yaml:"ma_mid"`
	MALong  int `json:"maLong" yaml:"ma_long"`

	SlopePeriod    int     `json:"slopePeriod" yaml:"slope_period"`
	SlopeThreshold float64 `json:"slopeThreshold" yaml:"slope_threshold"`

	StopLossMethod    string  `json:"stopLossMethod" yaml:"stop_loss_method"`
	StopLossLookback  int     `json:"stopLossLookback" yaml:"stop_loss_lookback"`
	StopLossPercent   float64 `json:"stopLossPercent" yaml:"stop_loss_percent"`
	ExitMethod        string  `json:"exitMethod" yaml:"exit_method"`
	TakeProfitPercent float64 `json:"takeProfitPercent" yaml:"take_profit_percent"`

	// Optional entry filters from the experimental rule sets. Both default
	// to off so the base contract stays the simplest complete variant.
	UseVolumeFilter  bool    `json:"useVolumeFilter" yaml:"use_volume_filter"`
	VolumeThreshold  float64 `json:"volumeThreshold" yaml:"volume_threshold"`
	VolumeStreakDays int     `json:"volumeStreakDays" yaml:"volume_streak_days"`

	UseWeeklyFilter bool `json:"useWeeklyFilter" yaml:"use_weekly_filter"`
	MAWeeklyShort   int  `json:"maWeeklyShort" yaml:"ma_weekly_short"`
	MAWeeklyLong    int  `json:"maWeeklyLong" yaml:"ma_weekly_long"`
}

// DefaultTradingRules returns the canonical rule set.
func DefaultTradingRules() TradingRules {
	return TradingRules{
		MAShort:           7,
		MAMid:             20,
		MALong:            60,
		SlopePeriod:       5,
		SlopeThreshold:    1.2,
		StopLossMethod:    StopLossRecentLow,
		StopLossLookback:  5,
		StopLossPercent:   0.98,
		ExitMethod:        ExitMACross,
		TakeProfitPercent: 1.05,
		VolumeThreshold:   500000,
		VolumeStreakDays:  5,
		MAWeeklyShort:     20,
		MAWeeklyLong:      50,
	}
}

// IndicatorSeries is a PriceBar sequence augmented with rolling values.
// Derived slices are aligned 1:1 with Bars; indices inside an indicator's
// warm-up window hold NaN and must only be read through the (value, ok)
// accessors so an undefined value can never satisfy a condition.
type IndicatorSeries struct {
	Bars       []PriceBar
	MAShort    []float64
	MAMid      []float64
	MALong     []float64
	MAMidSlope []float64
	RecentLow  []float64
	VolumeOK   []bool
}

func Defined(v float64) bool {
	return !math.IsNaN(v)
}

func at(values []float64, i int) (float64, bool) {
	if i < 0 || i >= len(values) {
		return 0, false
	}
	v := values[i]
	if !Defined(v) {
		return 0, false
	}
	return v, true
}

func (s *IndicatorSeries) MAShortAt(i int) (float64, bool)    { return at(s.MAShort, i) }
func (s *IndicatorSeries) MAMidAt(i int) (float64, bool)      { return at(s.MAMid, i) }
func (s *IndicatorSeries) MALongAt(i int) (float64, bool)     { return at(s.MALong, i) }
func (s *IndicatorSeries) MAMidSlopeAt(i int) (float64, bool) { return at(s.MAMidSlope, i) }
func (s *IndicatorSeries) RecentLowAt(i int) (float64, bool)  { return at(s.RecentLow, i) }

func (s *IndicatorSeries) Len() int {
	return len(s.Bars)
}

// Instrument is one (code, display name) entry of a market universe.
type Instrument struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// ScreeningRow is the per-ticker result of a screening cycle, built from
// the latest bar only. Rows are produced fresh each cycle and never
// persisted across runs.
type ScreeningRow struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Close float64 `json:"close"`

	MAShort float64 `json:"maShort"`
	MAMid   float64 `json:"maMid"`
	MALong  float64 `json:"maLong"`
	Slope   float64 `json:"slope"`

	C1Trend    bool `json:"c1Trend"`
	C2Long     bool `json:"c2Long"`
	C3Pullback bool `json:"c3Pullback"`
	C4Trigger  bool `json:"c4Trigger"`
	AllSignal  bool `json:"allSignal"`
}
