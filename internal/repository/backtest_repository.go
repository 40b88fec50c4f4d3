package repository

import (
	"fmt"
	"sort"
	"sync"

	"swingtrade-backend/internal/domain"
)

// InMemoryBacktestRepository stores finished backtest runs in memory.
// Used when no DATABASE_URL is configured.
type InMemoryBacktestRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.BacktestRun
}

func NewInMemoryBacktestRepository() domain.BacktestRepository {
	return &InMemoryBacktestRepository{
		runs: make(map[string]*domain.BacktestRun),
	}
}

func (r *InMemoryBacktestRepository) SaveRun(run *domain.BacktestRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run must have an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("run with ID %s already exists", run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

func (r *InMemoryBacktestRepository) GetRunByID(id string) (*domain.BacktestRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return nil, fmt.Errorf("run with ID %s not found", id)
	}
	return run, nil
}

func (r *InMemoryBacktestRepository) ListRuns() []*domain.BacktestRun {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*domain.BacktestRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}
