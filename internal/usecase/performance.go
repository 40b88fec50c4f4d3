package usecase

import (
	"math"
	"sort"

	"swingtrade-backend/internal/domain"
)

// Summarize reduces a trade list into its performance summary. An empty
// list returns ErrNoTrades so "no trades at all" stays distinguishable
// from a run that netted zero. The input slice is not modified.
//
// ProfitFactor is |avgProfit/avgLoss|, 0 when there is no losing trade.
func Summarize(trades []domain.Trade) (*domain.PerformanceSummary, error) {
	if len(trades) == 0 {
		return nil, domain.ErrNoTrades
	}

	// The drawdown pass needs trades in exit order.
	ordered := make([]domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitDate.Before(ordered[j].ExitDate)
	})

	s := &domain.PerformanceSummary{TotalTrades: len(ordered)}

	var (
		sumProfit, sumWin, sumLoss       float64
		sumWinPct, sumLossPct            float64
		sumHolding                       float64
		cumulative, runningMax, drawdown float64
	)

	for i, t := range ordered {
		sumProfit += t.Profit
		sumHolding += float64(t.HoldingDays)

		if t.Profit > 0 {
			s.WinningTrades++
			sumWin += t.Profit
			sumWinPct += t.ProfitPct
		} else {
			s.LosingTrades++
			sumLoss += t.Profit
			sumLossPct += t.ProfitPct
		}

		cumulative += t.Profit
		if i == 0 || cumulative > runningMax {
			runningMax = cumulative
		}
		if dd := cumulative - runningMax; dd < drawdown {
			drawdown = dd
		}
	}

	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	s.TotalProfit = sumProfit
	s.AvgHoldingDays = sumHolding / float64(s.TotalTrades)
	s.MaxDrawdown = drawdown

	if s.WinningTrades > 0 {
		s.AvgProfit = sumWin / float64(s.WinningTrades)
		s.AvgProfitPct = sumWinPct / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = sumLoss / float64(s.LosingTrades)
		s.AvgLossPct = sumLossPct / float64(s.LosingTrades)
	}
	if s.AvgLoss != 0 {
		s.ProfitFactor = math.Abs(s.AvgProfit / s.AvgLoss)
	}

	return s, nil
}
