package usecase

import (
	"fmt"
	"log"
	"time"

	"swingtrade-backend/internal/domain"
)

// sendSignalNotifications pushes FCM alerts for rows that satisfy the full
// condition set (AllSignal). C1-only rows are watchlist material and do
// not notify.
func (uc *ScreenerUsecase) sendSignalNotifications(rows []domain.ScreeningRow) {
	if uc.fcmClient == nil || !uc.fcmClient.IsEnabled() {
		return // FCM not configured
	}

	tokens := uc.tokenRepo.GetAllTokens()
	if len(tokens) == 0 {
		return // No registered devices
	}

	now := time.Now()
	cooldown := 24 * time.Hour // daily bars: one alert per ticker per day is plenty

	for _, row := range rows {
		if !row.AllSignal {
			continue
		}

		uc.mu.RLock()
		lastNotified, exists := uc.notifiedCodes[row.Code]
		uc.mu.RUnlock()

		if exists && now.Sub(lastNotified) < cooldown {
			continue
		}

		title := fmt.Sprintf("%s pullback setup", row.Code)
		body := fmt.Sprintf("%s | Close: %.2f | Mid-MA slope: %.2f%%",
			row.Name, row.Close, row.Slope)

		data := map[string]string{
			"code":  row.Code,
			"close": fmt.Sprintf("%.2f", row.Close),
			"slope": fmt.Sprintf("%.2f", row.Slope),
		}

		if err := uc.fcmClient.SendMulticast(tokens, title, body, data); err != nil {
			log.Printf("Error sending notification for %s: %v", row.Code, err)
			continue
		}
		log.Printf("Sent signal notification for %s to %d devices", row.Code, len(tokens))

		uc.mu.Lock()
		uc.notifiedCodes[row.Code] = now
		uc.mu.Unlock()
	}

	// Drop stale cooldown entries.
	uc.mu.Lock()
	for code, ts := range uc.notifiedCodes {
		if now.Sub(ts) > cooldown*2 {
			delete(uc.notifiedCodes, code)
		}
	}
	uc.mu.Unlock()
}
