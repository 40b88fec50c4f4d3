package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"swingtrade-backend/internal/domain"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches daily OHLCV history from the Yahoo Finance chart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
}

// NewClient builds a client with the given request timeout and retry
// count. retries is the number of attempts after the first one.
func NewClient(baseURL string, timeout time.Duration, retries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches daily bars covering [start, end).
func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) ([]domain.PriceBar, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))
	return c.fetch(ctx, symbol, q)
}

// Recent fetches daily bars for a look-back keyword such as "6mo" or "1y".
func (c *Client) Recent(ctx context.Context, symbol string, lookback string) ([]domain.PriceBar, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("range", lookback)
	return c.fetch(ctx, symbol, q)
}

// RecentCloses fetches several symbols over a shared look-back and returns
// a per-symbol close-price table. Failed symbols are left out; the call
// errors only when every symbol failed.
func (c *Client) RecentCloses(ctx context.Context, symbols []string, lookback string) (map[string][]float64, error) {
	table := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		bars, err := c.Recent(ctx, symbol, lookback)
		if err != nil {
			continue
		}
		closes := make([]float64, len(bars))
		for i, b := range bars {
			closes[i] = b.Close
		}
		table[symbol] = closes
	}
	if len(symbols) > 0 && len(table) == 0 {
		return nil, domain.ErrDataUnavailable
	}
	return table, nil
}

func (c *Client) fetch(ctx context.Context, symbol string, q url.Values) ([]domain.PriceBar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		bars, err := c.fetchOnce(ctx, symbol, endpoint)
		if err == nil {
			return bars, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, symbol, endpoint string) ([]domain.PriceBar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "swingtrade-backend/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrDataUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API error for %s: %d", symbol, resp.StatusCode)
	}

	var data chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	if data.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s: %w", symbol, data.Chart.Error.Code, domain.ErrDataUnavailable)
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrDataUnavailable)
	}

	result := data.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]domain.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Yahoo pads halted sessions with nulls; skip those rows.
		if i >= len(quote.Close) || quote.Close[i] == nil ||
			quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil {
			continue
		}
		var volume float64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		bars = append(bars, domain.PriceBar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrDataUnavailable)
	}
	return bars, nil
}
