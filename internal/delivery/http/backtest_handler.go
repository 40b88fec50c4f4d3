package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"swingtrade-backend/internal/domain"
	"swingtrade-backend/internal/usecase"
)

// BacktestHandler runs single-ticker backtests and serves their history.
type BacktestHandler struct {
	backtest *usecase.BacktestUsecase
	repo     domain.BacktestRepository
}

func NewBacktestHandler(backtest *usecase.BacktestUsecase, repo domain.BacktestRepository) *BacktestHandler {
	return &BacktestHandler{backtest: backtest, repo: repo}
}

type runBacktestRequest struct {
	Ticker string `json:"ticker"`
	Start  string `json:"start"` // YYYY-MM-DD
	End    string `json:"end"`   // YYYY-MM-DD

	// Rules starts from the defaults; fields present in the request body
	// override them.
	Rules domain.TradingRules `json:"rules"`
}

// HandleRunBacktest handles POST /api/backtest
func (h *BacktestHandler) HandleRunBacktest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := runBacktestRequest{Rules: domain.DefaultTradingRules()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Ticker == "" {
		http.Error(w, "Ticker is required", http.StatusBadRequest)
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		http.Error(w, "Invalid start date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		http.Error(w, "Invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		http.Error(w, "End date must be after start date", http.StatusBadRequest)
		return
	}

	run, err := h.backtest.Run(r.Context(), req.Ticker, start, end, req.Rules)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrDataUnavailable) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	run.ID = fmt.Sprintf("%d", time.Now().UnixNano())
	run.CreatedAt = time.Now()
	if err := h.repo.SaveRun(run); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// HandleGetRun handles GET /api/backtest?id={id}
func (h *BacktestHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	run, err := h.repo.GetRunByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// HandleGetHistory handles GET /api/backtest/history
func (h *BacktestHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runs := h.repo.ListRuns()
	if runs == nil {
		runs = make([]*domain.BacktestRun, 0)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
