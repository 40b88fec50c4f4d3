package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"swingtrade-backend/internal/domain"
	"swingtrade-backend/internal/infrastructure/indicators"
)

// Daily history is fetched this many calendar days before the nominal
// start so every rolling window is already full on the first bar of the
// backtest range.
const extendedLookbackDays = 400

type BacktestUsecase struct {
	bars domain.BarSource
}

func NewBacktestUsecase(bars domain.BarSource) *BacktestUsecase {
	return &BacktestUsecase{bars: bars}
}

// Run backtests one ticker over [start, end] with the given rules. A fetch
// failure fails the whole run; a series too short to fill MA_long simply
// produces no trades. Two runs with identical inputs yield identical
// trade lists.
func (uc *BacktestUsecase) Run(ctx context.Context, ticker string, start, end time.Time, rules domain.TradingRules) (*domain.BacktestRun, error) {
	bars, err := uc.bars.History(ctx, ticker, start.AddDate(0, 0, -extendedLookbackDays), end)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", ticker, err)
	}

	series, err := indicators.Build(bars, rules)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", ticker, err)
	}

	trades := generateTrades(series, rules, start)

	run := &domain.BacktestRun{
		Ticker:    ticker,
		StartDate: start,
		EndDate:   end,
		Rules:     rules,
		Trades:    trades,
	}
	if summary, err := Summarize(trades); err == nil {
		run.Summary = summary
	}
	return run, nil
}

// generateTrades walks the bar sequence from the first bar at or after
// start, driving the Flat / PendingEntry / InPosition state machine.
// Indicators were computed over the extended history, so rolling values
// are already defined at the nominal start.
func generateTrades(series *domain.IndicatorSeries, rules domain.TradingRules, start time.Time) []domain.Trade {
	bars := series.Bars
	startIdx := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Date.Before(start)
	})

	trades := []domain.Trade{}
	var position *domain.Position
	pending := false

	stopAt := newStopLossFunc(series, rules)
	exitCheck := newExitFunc(series, rules)
	var weekly *weeklyTrend
	if rules.UseWeeklyFilter {
		weekly = newWeeklyTrend(bars, rules)
	}

	for i := startIdx + 1; i < len(bars); i++ {
		bar := bars[i]

		if position == nil {
			// A signal confirmed on the previous bar fills at this bar's
			// open. The flag is consumed before anything else this bar.
			if pending {
				pending = false
				if stop, ok := stopAt(bar.Open, i-1); ok {
					position = &domain.Position{
						EntryDate:  bar.Date,
						EntryPrice: bar.Open,
						StopLoss:   stop,
					}
				}
				continue
			}

			if weekly != nil && !weekly.upAsOf(bar.Date) {
				continue
			}
			if entrySignal(series, rules, i) {
				pending = true
			}
			continue
		}

		// Stop-loss is checked before the profit exit: when both would
		// fire on the same bar, stop-loss wins.
		if bar.Close <= position.StopLoss {
			trades = append(trades, closeTrade(position, bar.Date, bar.Close, domain.ExitReasonStopLoss))
			position = nil
			continue
		}

		reason, fired := exitCheck(i, position)
		if !fired {
			continue
		}
		exitDate, exitPrice := bar.Date, bar.Close
		if i+1 < len(bars) {
			exitDate, exitPrice = bars[i+1].Date, bars[i+1].Open
		}
		trades = append(trades, closeTrade(position, exitDate, exitPrice, reason))
		position = nil
	}

	// A position still open at the end of data is force-closed on the last
	// bar so every run terminates with a complete trade list.
	if position != nil {
		last := bars[len(bars)-1]
		trades = append(trades, closeTrade(position, last.Date, last.Close, domain.ExitReasonTimeOut))
	}

	return trades
}

// entrySignal evaluates the pullback entry on bar i. Every referenced
// indicator must be defined; an undefined value can never pass.
func entrySignal(series *domain.IndicatorSeries, rules domain.TradingRules, i int) bool {
	maShort, ok := series.MAShortAt(i)
	if !ok {
		return false
	}
	maMid, ok := series.MAMidAt(i)
	if !ok {
		return false
	}
	maLong, ok := series.MALongAt(i)
	if !ok {
		return false
	}

	if maShort >= maMid { // pullback: short MA dipped under mid MA
		return false
	}
	slope, ok := series.MAMidSlopeAt(i)
	if !ok || slope <= rules.SlopeThreshold { // trending
		return false
	}
	if maMid <= maLong { // long trend intact
		return false
	}
	if rules.UseVolumeFilter && !series.VolumeOK[i] {
		return false
	}

	// Intraday touch of the short MA triggers; screening uses the close
	// instead, and that asymmetry is intentional.
	return series.Bars[i].High >= maShort
}

type stopLossFunc func(entryPrice float64, signalIdx int) (float64, bool)

func newStopLossFunc(series *domain.IndicatorSeries, rules domain.TradingRules) stopLossFunc {
	switch rules.StopLossMethod {
	case domain.StopLossPercentage:
		return func(entryPrice float64, _ int) (float64, bool) {
			return entryPrice * rules.StopLossPercent, true
		}
	default: // recent_low
		return func(_ float64, signalIdx int) (float64, bool) {
			low, ok := series.RecentLowAt(signalIdx)
			if !ok {
				return 0, false
			}
			return low * rules.StopLossPercent, true
		}
	}
}

type exitFunc func(i int, pos *domain.Position) (reason string, fired bool)

func newExitFunc(series *domain.IndicatorSeries, rules domain.TradingRules) exitFunc {
	switch rules.ExitMethod {
	case domain.ExitTakeProfit:
		return func(i int, pos *domain.Position) (string, bool) {
			if series.Bars[i].High >= pos.EntryPrice*rules.TakeProfitPercent {
				return domain.ExitReasonTakeProfit, true
			}
			return "", false
		}
	default: // ma_cross
		return func(i int, _ *domain.Position) (string, bool) {
			maShort, ok := series.MAShortAt(i)
			if ok && series.Bars[i].Close < maShort {
				return domain.ExitReasonMACross, true
			}
			return "", false
		}
	}
}

func closeTrade(pos *domain.Position, exitDate time.Time, exitPrice float64, reason string) domain.Trade {
	return domain.Trade{
		EntryDate:   pos.EntryDate,
		EntryPrice:  pos.EntryPrice,
		ExitDate:    exitDate,
		ExitPrice:   exitPrice,
		Profit:      exitPrice - pos.EntryPrice,
		ProfitPct:   (exitPrice/pos.EntryPrice - 1) * 100,
		ExitReason:  reason,
		HoldingDays: int(exitDate.Sub(pos.EntryDate).Hours() / 24),
	}
}

// weeklyTrend answers "was the weekly trend up as of this date" using the
// last completed Friday-anchored week.
type weeklyTrend struct {
	dates []time.Time
	up    []bool
}

func newWeeklyTrend(bars []domain.PriceBar, rules domain.TradingRules) *weeklyTrend {
	weekly := indicators.ResampleWeekly(bars)
	closes := make([]float64, len(weekly))
	for i, b := range weekly {
		closes[i] = b.Close
	}

	maShort := indicators.RollingMean(closes, rules.MAWeeklyShort)
	maLong := indicators.RollingMean(closes, rules.MAWeeklyLong)

	w := &weeklyTrend{
		dates: make([]time.Time, len(weekly)),
		up:    make([]bool, len(weekly)),
	}
	for i, b := range weekly {
		w.dates[i] = b.Date
		if !domain.Defined(maShort[i]) || !domain.Defined(maLong[i]) {
			continue
		}
		w.up[i] = maShort[i] > maLong[i] && b.Close >= maShort[i]
	}
	return w
}

func (w *weeklyTrend) upAsOf(d time.Time) bool {
	idx := sort.Search(len(w.dates), func(i int) bool {
		return w.dates[i].After(d)
	}) - 1
	if idx < 0 {
		return false
	}
	return w.up[idx]
}
