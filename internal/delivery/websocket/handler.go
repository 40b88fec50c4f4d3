package websocket

import (
	"log"
	"net/http"
	"time"

	"swingtrade-backend/internal/domain"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Handler streams the current screening snapshot to connected clients.
type Handler struct {
	repo domain.ScreenerRepository
	poll time.Duration
}

func NewHandler(repo domain.ScreenerRepository, poll time.Duration) *Handler {
	if poll <= 0 {
		poll = 30 * time.Second
	}
	return &Handler{
		repo: repo,
		poll: poll,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	log.Println("New screening client connected")

	// Send the current snapshot immediately.
	if err := conn.WriteJSON(h.repo.GetRows()); err != nil {
		log.Println("Write error:", err)
		return
	}

	ticker := time.NewTicker(h.poll)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(h.repo.GetRows()); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
