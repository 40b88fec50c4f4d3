package domain

import "errors"

var (
	// ErrDataUnavailable means the data source returned nothing for the
	// requested symbol or range.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInsufficientHistory means the fetched series is too short to fill
	// the longest moving-average window. Screening skips the ticker; a
	// backtest yields an empty trade list instead of failing.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrNoTrades is the aggregator's sentinel for an empty trade list,
	// distinct from a summary whose totals happen to be zero.
	ErrNoTrades = errors.New("no trades")
)
