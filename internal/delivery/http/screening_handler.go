package http

import (
	"encoding/json"
	"net/http"

	"swingtrade-backend/internal/domain"
	"swingtrade-backend/internal/usecase"
)

// ScreeningHandler serves the latest screening snapshot and manual
// cycle triggers.
type ScreeningHandler struct {
	repo     domain.ScreenerRepository
	screener *usecase.ScreenerUsecase
	universe domain.UniverseProvider
}

func NewScreeningHandler(repo domain.ScreenerRepository, screener *usecase.ScreenerUsecase, universe domain.UniverseProvider) *ScreeningHandler {
	return &ScreeningHandler{
		repo:     repo,
		screener: screener,
		universe: universe,
	}
}

// HandleGetRows handles GET /api/screening
func (h *ScreeningHandler) HandleGetRows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rows := h.repo.GetRows()
	if rows == nil {
		rows = make([]domain.ScreeningRow, 0)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// HandleRunScreening handles POST /api/screening/run?market={market}.
// Runs one cycle synchronously and returns the ranked rows.
func (h *ScreeningHandler) HandleRunScreening(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	market := r.URL.Query().Get("market")
	if market == "" {
		http.Error(w, "Missing market parameter", http.StatusBadRequest)
		return
	}

	rows, err := h.screener.Screen(r.Context(), market)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.repo.SaveRows(rows)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// HandleGetMarkets handles GET /api/markets
func (h *ScreeningHandler) HandleGetMarkets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.universe.Markets())
}
