package repository

import (
	"sync"

	"swingtrade-backend/internal/domain"
)

// InMemoryScreenerRepository holds the latest screening snapshot. Rows
// are replaced wholesale each cycle and do not survive a restart.
type InMemoryScreenerRepository struct {
	rows []domain.ScreeningRow
	mu   sync.RWMutex
}

func NewInMemoryScreenerRepository() *InMemoryScreenerRepository {
	return &InMemoryScreenerRepository{
		rows: []domain.ScreeningRow{},
	}
}

func (r *InMemoryScreenerRepository) SaveRows(rows []domain.ScreeningRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
}

func (r *InMemoryScreenerRepository) GetRows() []domain.ScreeningRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// ScreeningRow is a value type, so a slice copy is a full copy.
	result := make([]domain.ScreeningRow, len(r.rows))
	copy(result, r.rows)
	return result
}
