package domain

import (
	"context"
	"time"
)

type ScreenerRepository interface {
	SaveRows(rows []ScreeningRow)
	GetRows() []ScreeningRow
}

// BarSource supplies historical daily bars. Implementations must return
// bars in ascending date order and ErrDataUnavailable when the upstream
// has nothing for the symbol.
type BarSource interface {
	// History fetches daily bars covering [start, end).
	History(ctx context.Context, symbol string, start, end time.Time) ([]PriceBar, error)
	// Recent fetches daily bars for a look-back keyword such as "6mo".
	Recent(ctx context.Context, symbol string, lookback string) ([]PriceBar, error)
}

// UniverseProvider supplies the static ordered instrument list of a market.
type UniverseProvider interface {
	Instruments(market string) ([]Instrument, error)
	Markets() []string
}
