package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swingtrade-backend/internal/domain"
)

func tradeOn(day int, profit, profitPct float64, holdingDays int) domain.Trade {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.Trade{
		EntryDate:   base.AddDate(0, 0, day-holdingDays),
		ExitDate:    base.AddDate(0, 0, day),
		EntryPrice:  100,
		ExitPrice:   100 + profit,
		Profit:      profit,
		ProfitPct:   profitPct,
		HoldingDays: holdingDays,
	}
}

func TestSummarize(t *testing.T) {
	trades := []domain.Trade{
		tradeOn(10, 100, 10, 5),
		tradeOn(20, -50, -5, 3),
		tradeOn(30, 200, 20, 10),
	}

	s, err := Summarize(trades)
	require.NoError(t, err)

	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 66.6667, s.WinRate, 0.001)

	assert.InDelta(t, 250.0, s.TotalProfit, 1e-9)
	assert.InDelta(t, 150.0, s.AvgProfit, 1e-9)
	assert.InDelta(t, -50.0, s.AvgLoss, 1e-9)
	assert.InDelta(t, 15.0, s.AvgProfitPct, 1e-9)
	assert.InDelta(t, -5.0, s.AvgLossPct, 1e-9)

	assert.InDelta(t, 3.0, s.ProfitFactor, 1e-9)
	assert.InDelta(t, -50.0, s.MaxDrawdown, 1e-9, "peak 100 to trough 50")
	assert.InDelta(t, 6.0, s.AvgHoldingDays, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, domain.ErrNoTrades)

	_, err = Summarize([]domain.Trade{})
	assert.ErrorIs(t, err, domain.ErrNoTrades)
}

func TestSummarizeNoLosingTrades(t *testing.T) {
	s, err := Summarize([]domain.Trade{
		tradeOn(10, 100, 10, 2),
		tradeOn(20, 50, 5, 2),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, s.LosingTrades)
	assert.InDelta(t, 100.0, s.WinRate, 1e-9)
	assert.InDelta(t, 0.0, s.AvgLoss, 1e-9)
	assert.InDelta(t, 0.0, s.ProfitFactor, 1e-9, "no losses reports 0, not infinity")
	assert.InDelta(t, 0.0, s.MaxDrawdown, 1e-9)
}

func TestSummarizeZeroProfitCountsAsLoss(t *testing.T) {
	s, err := Summarize([]domain.Trade{tradeOn(10, 0, 0, 1)})
	require.NoError(t, err)

	assert.Equal(t, 0, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 0.0, s.WinRate, 1e-9)
}

func TestSummarizeOrdersByExitDate(t *testing.T) {
	// Out-of-order input: drawdown must be computed in exit order.
	trades := []domain.Trade{
		tradeOn(30, 200, 20, 10),
		tradeOn(10, 100, 10, 5),
		tradeOn(20, -50, -5, 3),
	}

	s, err := Summarize(trades)
	require.NoError(t, err)
	assert.InDelta(t, -50.0, s.MaxDrawdown, 1e-9)

	// Input order untouched.
	assert.InDelta(t, 200.0, trades[0].Profit, 1e-9)
}
