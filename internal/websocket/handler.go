package websocket

import (
	"context"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
	"github.com/dukerupert/householder/internal/auth"
	"github.com/google/uuid"
)

// MembershipFunc lists the households a user currently belongs to.
type MembershipFunc func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

// HandleWebSocket returns an HTTP handler that upgrades authenticated
// connections and subscribes them to the caller's households.
func HandleWebSocket(hub *Hub, memberships MembershipFunc, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == uuid.Nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		households, err := memberships(r.Context(), userID)
		if err != nil {
			logger.Error("load memberships", "user_id", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn, userID, households)
		client.Run(r.Context())
	}
}
