package usecase

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"swingtrade-backend/internal/domain"
	"swingtrade-backend/internal/infrastructure/fcm"
	"swingtrade-backend/internal/infrastructure/indicators"
	"swingtrade-backend/internal/repository"
)

// ScreenerConfig tunes a screening cycle.
type ScreenerConfig struct {
	Market      string
	Lookback    string // bar source look-back keyword, e.g. "6mo"
	Concurrency int    // max in-flight fetches
	Interval    time.Duration
}

func DefaultScreenerConfig() ScreenerConfig {
	return ScreenerConfig{
		Market:      "sp500",
		Lookback:    "6mo",
		Concurrency: 10,
		Interval:    10 * time.Minute,
	}
}

type ScreenerUsecase struct {
	repo      domain.ScreenerRepository
	bars      domain.BarSource
	universe  domain.UniverseProvider
	fcmClient *fcm.Client
	tokenRepo *repository.TokenRepository
	rules     domain.TradingRules
	cfg       ScreenerConfig

	notifiedCodes map[string]time.Time // signal notification cooldown
	mu            sync.RWMutex
}

func NewScreenerUsecase(
	repo domain.ScreenerRepository,
	bars domain.BarSource,
	universe domain.UniverseProvider,
	tokenRepo *repository.TokenRepository,
	fcmClient *fcm.Client,
	rules domain.TradingRules,
	cfg ScreenerConfig,
) *ScreenerUsecase {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &ScreenerUsecase{
		repo:          repo,
		bars:          bars,
		universe:      universe,
		fcmClient:     fcmClient,
		tokenRepo:     tokenRepo,
		rules:         rules,
		cfg:           cfg,
		notifiedCodes: make(map[string]time.Time),
	}
}

// Run starts the periodic screening loop for the configured market.
// Stops when ctx is cancelled.
func (uc *ScreenerUsecase) Run(ctx context.Context) {
	ticker := time.NewTicker(uc.cfg.Interval)
	defer ticker.Stop()

	uc.process(ctx, uc.cfg.Market)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.process(ctx, uc.cfg.Market)
		}
	}
}

func (uc *ScreenerUsecase) process(ctx context.Context, market string) {
	start := time.Now()
	log.Printf("Starting screening cycle for %s...", market)

	rows, err := uc.Screen(ctx, market)
	if err != nil {
		log.Printf("Screening cycle failed: %v", err)
		return
	}

	uc.repo.SaveRows(rows)
	uc.sendSignalNotifications(rows)

	log.Printf("Cycle completed in %v. %d rows in trend.", time.Since(start), len(rows))
}

type indexedRow struct {
	idx int
	row domain.ScreeningRow
}

// Screen evaluates the four pullback conditions on the latest bar of every
// instrument in the market and returns the ranked rows. Only instruments
// passing C1 (strong trend) are included; C2..C4 are reported per row.
// Per-ticker fetch or history problems skip that ticker, never the cycle.
func (uc *ScreenerUsecase) Screen(ctx context.Context, market string) ([]domain.ScreeningRow, error) {
	instruments, err := uc.universe.Instruments(market)
	if err != nil {
		return nil, err
	}

	log.Printf("Screening %d instruments", len(instruments))

	var (
		collected []indexedRow
		wg        sync.WaitGroup
		mu        sync.Mutex
	)
	sem := make(chan struct{}, uc.cfg.Concurrency)

	for idx, inst := range instruments {
		// Cooperative cancellation between tickers; an in-flight fetch is
		// allowed to finish on its own.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		wg.Add(1)
		go func(idx int, inst domain.Instrument) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			row, ok := uc.screenOne(ctx, inst)
			if !ok {
				return
			}

			mu.Lock()
			collected = append(collected, indexedRow{idx: idx, row: *row})
			mu.Unlock()
		}(idx, inst)
	}

	wg.Wait()

	// Restore universe order first so ranking is deterministic no matter
	// which fetch finished when, then rank: AllSignal desc, Slope desc.
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].idx < collected[j].idx
	})
	sort.SliceStable(collected, func(i, j int) bool {
		a, b := collected[i].row, collected[j].row
		if a.AllSignal != b.AllSignal {
			return a.AllSignal
		}
		return a.Slope > b.Slope
	})

	rows := make([]domain.ScreeningRow, len(collected))
	for i, c := range collected {
		rows[i] = c.row
	}
	return rows, nil
}

// screenOne fetches and evaluates one instrument. The second return is
// false when the instrument should be skipped (fetch failure, not enough
// history, or C1 not met).
func (uc *ScreenerUsecase) screenOne(ctx context.Context, inst domain.Instrument) (*domain.ScreeningRow, bool) {
	bars, err := uc.bars.Recent(ctx, inst.Code, uc.cfg.Lookback)
	if err != nil {
		log.Printf("Skipping %s: %v", inst.Code, err)
		return nil, false
	}

	series, err := indicators.Build(bars, uc.rules)
	if err != nil {
		log.Printf("Skipping %s: %v", inst.Code, err)
		return nil, false
	}

	row, err := EvaluateLatest(inst, series, uc.rules)
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientHistory) {
			log.Printf("Skipping %s: %v", inst.Code, err)
		}
		return nil, false
	}

	if !row.C1Trend {
		return nil, false
	}
	return row, true
}
