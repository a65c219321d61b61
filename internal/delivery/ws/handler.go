package ws

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/media-api/internal/delivery"
	"github.com/google/uuid"
)

// Handler upgrades GET /api/v1/media/ws?room=<all|media id> and streams media
// events until the client disconnects. Incoming messages are ignored.
func Handler(hub *Hub, log *logger.ZapLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			roomID = RoomAll
		}
		if roomID != RoomAll {
			id, err := uuid.Parse(roomID)
			if err != nil {
				delivery.WriteError(w, log, &delivery.HTTPError{
					Status:  http.StatusBadRequest,
					Name:    "ValidationFault",
					Message: "room must be \"all\" or a media id",
					Err:     err,
				})
				return
			}
			roomID = id.String()
		}

		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client
			log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "ws upgrade failed",
				Error:   err,
			})
			return
		}

		c := hub.Register(roomID, conn)
		defer hub.Unregister(roomID, c)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
