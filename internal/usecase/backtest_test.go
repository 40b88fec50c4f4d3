package usecase

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swingtrade-backend/internal/domain"
)

type fakeBarSource struct {
	bars map[string][]domain.PriceBar
	err  error
}

func (f *fakeBarSource) History(_ context.Context, symbol string, _, _ time.Time) ([]domain.PriceBar, error) {
	return f.lookup(symbol)
}

func (f *fakeBarSource) Recent(_ context.Context, symbol string, _ string) ([]domain.PriceBar, error) {
	return f.lookup(symbol)
}

func (f *fakeBarSource) lookup(symbol string) ([]domain.PriceBar, error) {
	if f.err != nil {
		return nil, f.err
	}
	bars, ok := f.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrDataUnavailable)
	}
	return bars, nil
}

// neutralSeries builds a hand-filled indicator series on which neither the
// entry nor any exit condition ever fires. Tests flip individual indices
// to stage the exact scenario they need.
func neutralSeries(n int) *domain.IndicatorSeries {
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	s := &domain.IndicatorSeries{
		Bars:       make([]domain.PriceBar, n),
		MAShort:    make([]float64, n),
		MAMid:      make([]float64, n),
		MALong:     make([]float64, n),
		MAMidSlope: make([]float64, n),
		RecentLow:  make([]float64, n),
		VolumeOK:   make([]bool, n),
	}
	for i := 0; i < n; i++ {
		s.Bars[i] = domain.PriceBar{
			Date:   base.AddDate(0, 0, i),
			Open:   100,
			High:   100.5,
			Low:    95,
			Close:  100,
			Volume: 1_000_000,
		}
		s.MAShort[i] = 90 // close never under it: no ma_cross exit
		s.MAMid[i] = 89   // short above mid: no pullback entry
		s.MALong[i] = 80
		s.MAMidSlope[i] = 2.0
		s.RecentLow[i] = 90
		s.VolumeOK[i] = true
	}
	return s
}

// stageSignal makes the entry conditions all pass on bar i.
func stageSignal(s *domain.IndicatorSeries, i int) {
	s.MAShort[i] = 95
	s.MAMid[i] = 100
	s.MALong[i] = 90
	s.MAMidSlope[i] = 2.0
	s.Bars[i].High = 96
}

func TestGenerateTradesEntryFillsAtNextOpen(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(8)
	stageSignal(s, 1)
	s.MAShort[4] = 105    // close 100 < 105: ma_cross fires on bar 4
	s.Bars[5].Open = 98.5 // exit fill

	trades := generateTrades(s, rules, s.Bars[0].Date)
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, s.Bars[2].Date, tr.EntryDate, "signal on bar 1 fills at bar 2 open")
	assert.InDelta(t, 100.0, tr.EntryPrice, 1e-9)
	assert.Equal(t, s.Bars[5].Date, tr.ExitDate, "ma_cross on bar 4 exits at bar 5 open")
	assert.InDelta(t, 98.5, tr.ExitPrice, 1e-9)
	assert.Equal(t, domain.ExitReasonMACross, tr.ExitReason)
	assert.InDelta(t, -1.5, tr.Profit, 1e-9)
	assert.InDelta(t, -1.5, tr.ProfitPct, 1e-9)
	assert.Equal(t, 3, tr.HoldingDays)
}

func TestGenerateTradesMACrossOnFinalBarExitsAtClose(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(8)
	stageSignal(s, 1)
	s.MAShort[7] = 105 // fires on the last bar: no next open to fill at

	trades := generateTrades(s, rules, s.Bars[0].Date)
	require.Len(t, trades, 1)

	assert.Equal(t, s.Bars[7].Date, trades[0].ExitDate)
	assert.InDelta(t, 100.0, trades[0].ExitPrice, 1e-9)
	assert.Equal(t, domain.ExitReasonMACross, trades[0].ExitReason)
}

func TestGenerateTradesStopLossBeatsMACross(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(8)
	stageSignal(s, 1)
	// Bar 3: close 85 is under both the stop (90 * 0.98 = 88.2) and the
	// short MA. Stop-loss must win and exit at this bar's close.
	s.Bars[3].Close = 85
	s.MAShort[3] = 100

	trades := generateTrades(s, rules, s.Bars[0].Date)
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, domain.ExitReasonStopLoss, tr.ExitReason)
	assert.Equal(t, s.Bars[3].Date, tr.ExitDate, "stop-loss exits same bar, not next open")
	assert.InDelta(t, 85.0, tr.ExitPrice, 1e-9)
	assert.InDelta(t, -15.0, tr.Profit, 1e-9)
}

func TestGenerateTradesForceCloseAtEndOfData(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(8)
	stageSignal(s, 1)

	trades := generateTrades(s, rules, s.Bars[0].Date)
	require.Len(t, trades, 1)

	tr := trades[0]
	assert.Equal(t, domain.ExitReasonTimeOut, tr.ExitReason)
	assert.Equal(t, s.Bars[7].Date, tr.ExitDate)
	assert.InDelta(t, 100.0, tr.ExitPrice, 1e-9)
	assert.Equal(t, 5, tr.HoldingDays)
}

func TestGenerateTradesSignalOnLastBarNeverFills(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(8)
	stageSignal(s, 7)

	trades := generateTrades(s, rules, s.Bars[0].Date)
	assert.Empty(t, trades, "no next bar to fill at")
}

func TestGenerateTradesUndefinedIndicatorBlocksEntry(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(8)
	stageSignal(s, 1)
	s.MAShort[1] = math.NaN()

	trades := generateTrades(s, rules, s.Bars[0].Date)
	assert.Empty(t, trades)
}

func TestGenerateTradesRespectsStartDate(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(8)
	stageSignal(s, 1)

	trades := generateTrades(s, rules, s.Bars[4].Date)
	assert.Empty(t, trades, "signal bar precedes the start date")
}

func TestGenerateTradesSequentialPositions(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(10)
	stageSignal(s, 1)
	s.Bars[3].Close = 85 // stop-loss exit of trade 1
	stageSignal(s, 4)
	s.MAShort[6] = 105 // ma_cross exit of trade 2
	s.Bars[7].Open = 99

	trades := generateTrades(s, rules, s.Bars[0].Date)
	require.Len(t, trades, 2)

	assert.Equal(t, domain.ExitReasonStopLoss, trades[0].ExitReason)
	assert.Equal(t, domain.ExitReasonMACross, trades[1].ExitReason)
	assert.Equal(t, s.Bars[5].Date, trades[1].EntryDate)
	assert.False(t, trades[1].EntryDate.Before(trades[0].ExitDate), "positions never overlap")
}

func TestGenerateTradesDeterministic(t *testing.T) {
	rules := domain.DefaultTradingRules()
	s := neutralSeries(8)
	stageSignal(s, 1)
	s.MAShort[4] = 105
	s.Bars[5].Open = 98.5

	first := generateTrades(s, rules, s.Bars[0].Date)
	second := generateTrades(s, rules, s.Bars[0].Date)
	assert.Equal(t, first, second)
}

func TestGenerateTradesPercentageStopLoss(t *testing.T) {
	rules := domain.DefaultTradingRules()
	rules.StopLossMethod = domain.StopLossPercentage
	rules.StopLossPercent = 0.95

	s := neutralSeries(8)
	stageSignal(s, 1)
	s.Bars[3].Close = 94.5 // under 100 * 0.95

	trades := generateTrades(s, rules, s.Bars[0].Date)
	require.Len(t, trades, 1)
	assert.Equal(t, domain.ExitReasonStopLoss, trades[0].ExitReason)
	assert.InDelta(t, 94.5, trades[0].ExitPrice, 1e-9)
}

func TestGenerateTradesTakeProfitExit(t *testing.T) {
	rules := domain.DefaultTradingRules()
	rules.ExitMethod = domain.ExitTakeProfit
	rules.TakeProfitPercent = 1.05

	s := neutralSeries(8)
	stageSignal(s, 1)
	s.Bars[4].High = 106 // touches 100 * 1.05
	s.Bars[5].Open = 105.5

	trades := generateTrades(s, rules, s.Bars[0].Date)
	require.Len(t, trades, 1)
	assert.Equal(t, domain.ExitReasonTakeProfit, trades[0].ExitReason)
	assert.Equal(t, s.Bars[5].Date, trades[0].ExitDate)
	assert.InDelta(t, 105.5, trades[0].ExitPrice, 1e-9)
}

func TestGenerateTradesVolumeFilter(t *testing.T) {
	rules := domain.DefaultTradingRules()
	rules.UseVolumeFilter = true

	s := neutralSeries(8)
	stageSignal(s, 1)
	s.VolumeOK[1] = false

	assert.Empty(t, generateTrades(s, rules, s.Bars[0].Date))

	s.VolumeOK[1] = true
	assert.Len(t, generateTrades(s, rules, s.Bars[0].Date), 1)
}

func TestGenerateTradesWeeklyFilterNeedsHistory(t *testing.T) {
	rules := domain.DefaultTradingRules()
	rules.UseWeeklyFilter = true

	// Too few bars for any weekly MA to be defined, so the weekly trend is
	// never up and the entry is suppressed.
	s := neutralSeries(8)
	stageSignal(s, 1)

	assert.Empty(t, generateTrades(s, rules, s.Bars[0].Date))
}

func TestBacktestRunPropagatesFetchError(t *testing.T) {
	uc := NewBacktestUsecase(&fakeBarSource{err: domain.ErrDataUnavailable})

	_, err := uc.Run(context.Background(), "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		domain.DefaultTradingRules())

	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestBacktestRunShortHistoryYieldsNoTrades(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.PriceBar, 10)
	for i := range bars {
		bars[i] = domain.PriceBar{
			Date: base.AddDate(0, 0, i),
			Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000,
		}
	}
	uc := NewBacktestUsecase(&fakeBarSource{bars: map[string][]domain.PriceBar{"AAPL": bars}})

	run, err := uc.Run(context.Background(), "AAPL", base, base.AddDate(0, 0, 9), domain.DefaultTradingRules())
	require.NoError(t, err)

	assert.Equal(t, "AAPL", run.Ticker)
	assert.Empty(t, run.Trades, "mid and long windows never fill")
	assert.Nil(t, run.Summary)
}
