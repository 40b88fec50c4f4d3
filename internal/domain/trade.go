package domain

import "time"

// Exit reasons recorded on a Trade.
const (
	ExitReasonStopLoss   = "STOP_LOSS"
	ExitReasonMACross    = "MA_CROSS"
	ExitReasonTakeProfit = "TAKE_PROFIT"
	ExitReasonTimeOut    = "TIME_OUT"
)

// Position is the single open position of a backtest run. It exists from
// the fill at a bar's open until an exit condition fires.
type Position struct {
	EntryDate  time.Time `json:"entryDate"`
	EntryPrice float64   `json:"entryPrice"`
	StopLoss   float64   `json:"stopLoss"`
}

// Trade is a closed round trip. Immutable once appended to a run.
type Trade struct {
	EntryDate   time.Time `json:"entryDate"`
	EntryPrice  float64   `json:"entryPrice"`
	ExitDate    time.Time `json:"exitDate"`
	ExitPrice   float64   `json:"exitPrice"`
	Profit      float64   `json:"profit"`
	ProfitPct   float64   `json:"profitPct"`
	ExitReason  string    `json:"exitReason"`
	HoldingDays int       `json:"holdingDays"`
}

// PerformanceSummary is derived from a trade list and recomputed whenever
// the list changes; it has no independent state of its own.
type PerformanceSummary struct {
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	WinRate       float64 `json:"winRate"`

	TotalProfit  float64 `json:"totalProfit"`
	AvgProfit    float64 `json:"avgProfit"`
	AvgLoss      float64 `json:"avgLoss"`
	AvgProfitPct float64 `json:"avgProfitPct"`
	AvgLossPct   float64 `json:"avgLossPct"`

	MaxDrawdown    float64 `json:"maxDrawdown"`
	AvgHoldingDays float64 `json:"avgHoldingDays"`
	ProfitFactor   float64 `json:"profitFactor"`
}

// BacktestRun is a finished backtest: the inputs that produced it plus the
// recorded trades and their summary. Summary is nil when no trade fired.
type BacktestRun struct {
	ID        string              `json:"id"`
	Ticker    string              `json:"ticker"`
	StartDate time.Time           `json:"startDate"`
	EndDate   time.Time           `json:"endDate"`
	Rules     TradingRules        `json:"rules"`
	Trades    []Trade             `json:"trades"`
	Summary   *PerformanceSummary `json:"summary,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

// BacktestRepository persists finished runs.
type BacktestRepository interface {
	SaveRun(run *BacktestRun) error
	GetRunByID(id string) (*BacktestRun, error)
	ListRuns() []*BacktestRun
}
