package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swingtrade-backend/internal/domain"
	"swingtrade-backend/internal/infrastructure/indicators"
)

func barsFromCloses(closes []float64) []domain.PriceBar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = domain.PriceBar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func linearCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return closes
}

// pullbackCloses is a steady rise followed by a dip that pulls the short
// MA under the mid MA, then a recovery bar closing back above the short
// MA. All four conditions hold on the last bar.
func pullbackCloses() []float64 {
	closes := linearCloses(70, 40, 3)
	closes[65], closes[66], closes[67], closes[68], closes[69] = 200, 193, 189, 187, 207
	return closes
}

func TestEvaluateLatestInsufficientHistory(t *testing.T) {
	rules := domain.DefaultTradingRules()
	series, err := indicators.Build(barsFromCloses(linearCloses(30, 100, 1)), rules)
	require.NoError(t, err)

	_, err = EvaluateLatest(domain.Instrument{Code: "AAPL"}, series, rules)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestEvaluateLatestTrendWithoutPullback(t *testing.T) {
	rules := domain.DefaultTradingRules()
	series, err := indicators.Build(barsFromCloses(linearCloses(70, 100, 1)), rules)
	require.NoError(t, err)

	row, err := EvaluateLatest(domain.Instrument{Code: "AAPL", Name: "Apple"}, series, rules)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", row.Code)
	assert.InDelta(t, 169.0, row.Close, 1e-9)
	assert.InDelta(t, 166.0, row.MAShort, 1e-9)
	assert.InDelta(t, 159.5, row.MAMid, 1e-9)
	assert.InDelta(t, 139.5, row.MALong, 1e-9)
	assert.InDelta(t, (159.5/154.5-1)*100, row.Slope, 1e-9)

	assert.True(t, row.C1Trend)
	assert.True(t, row.C2Long)
	assert.False(t, row.C3Pullback, "short MA sits above mid MA in a clean rise")
	assert.True(t, row.C4Trigger)
	assert.False(t, row.AllSignal)
}

func TestEvaluateLatestFullSignal(t *testing.T) {
	rules := domain.DefaultTradingRules()
	series, err := indicators.Build(barsFromCloses(pullbackCloses()), rules)
	require.NoError(t, err)

	row, err := EvaluateLatest(domain.Instrument{Code: "NVDA"}, series, rules)
	require.NoError(t, err)

	assert.True(t, row.C1Trend)
	assert.True(t, row.C2Long)
	assert.True(t, row.C3Pullback)
	assert.True(t, row.C4Trigger)
	assert.True(t, row.AllSignal)
}

func TestEvaluateLatestFlatSeriesFailsTrend(t *testing.T) {
	rules := domain.DefaultTradingRules()
	series, err := indicators.Build(barsFromCloses(linearCloses(70, 100, 0)), rules)
	require.NoError(t, err)

	row, err := EvaluateLatest(domain.Instrument{Code: "KO"}, series, rules)
	require.NoError(t, err)

	assert.False(t, row.C1Trend, "zero slope is below the threshold")
	assert.False(t, row.AllSignal)
}
