package http

import (
	"encoding/json"
	"net/http"
	"time"

	"swingtrade-backend/internal/infrastructure/fcm"
	"swingtrade-backend/internal/repository"
)

// TestHandler verifies the push-notification path end to end without
// waiting for a real signal.
type TestHandler struct {
	fcmClient *fcm.Client
	tokenRepo *repository.TokenRepository
}

func NewTestHandler(fcmClient *fcm.Client, tokenRepo *repository.TokenRepository) *TestHandler {
	return &TestHandler{
		fcmClient: fcmClient,
		tokenRepo: tokenRepo,
	}
}

// SendTestNotification handles POST /api/notifications/test
func (h *TestHandler) SendTestNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if h.fcmClient == nil || !h.fcmClient.IsEnabled() {
		json.NewEncoder(w).Encode(TokenResponse{
			Success: false,
			Message: "FCM not configured",
		})
		return
	}

	tokens := h.tokenRepo.GetAllTokens()
	if len(tokens) == 0 {
		json.NewEncoder(w).Encode(TokenResponse{
			Success: false,
			Message: "No registered devices",
		})
		return
	}

	title := "Test notification"
	body := "Push delivery from the screener backend is working."
	data := map[string]string{
		"type":      "test",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if err := h.fcmClient.SendMulticast(tokens, title, body, data); err != nil {
		json.NewEncoder(w).Encode(TokenResponse{
			Success: false,
			Message: "Failed to send notification: " + err.Error(),
			Count:   len(tokens),
		})
		return
	}

	json.NewEncoder(w).Encode(TokenResponse{
		Success: true,
		Message: "Test notification sent",
		Count:   len(tokens),
	})
}
