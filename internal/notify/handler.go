package notify

import (
	"log/slog"
	"net/http"

	"github.com/brutalytics/server/internal/api"
	"github.com/brutalytics/server/internal/identity"
	"github.com/brutalytics/server/internal/store"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the notification list over REST and live pushes over
// WebSocket.
type Handler struct {
	repo          store.Repository
	hub           *Hub
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a notifications HTTP handler.
func NewHandler(repo store.Repository, hub *Hub, allowedOrigin string, isDev bool) *Handler {
	return &Handler{repo: repo, hub: hub, allowedOrigin: allowedOrigin, isDev: isDev}
}

// RegisterRoutes registers notification routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/unread", h.ListUnread)
		r.Post("/{notificationID}/read", h.MarkRead)
		r.Delete("/{notificationID}", h.Delete)
	})
	r.Get("/ws/notifications", h.Stream)
}

// List returns all notifications of the current user, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.repo.ListNotifications(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to list notifications", "user_id", userID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	api.JSON(w, http.StatusOK, list)
}

// ListUnread returns unread notifications of the current user, newest first.
func (h *Handler) ListUnread(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.repo.ListUnreadNotifications(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to list unread notifications", "user_id", userID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	api.JSON(w, http.StatusOK, list)
}

// MarkRead flips the read flag on one notification.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	notificationID := chi.URLParam(r, "notificationID")

	if err := h.repo.MarkNotificationRead(r.Context(), userID, notificationID); err != nil {
		slog.Error("Failed to mark notification read",
			"user_id", userID, "notification_id", notificationID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// Delete removes one notification.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	notificationID := chi.URLParam(r, "notificationID")

	if err := h.repo.DeleteNotification(r.Context(), userID, notificationID); err != nil {
		slog.Error("Failed to delete notification",
			"user_id", userID, "notification_id", notificationID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to delete notification")
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Stream upgrades to WebSocket and pushes new notifications until the client
// disconnects. The connection is receive-only; client frames are drained and
// discarded.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	slog.Info("Notification stream request", "user_id", userID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	id := h.hub.Register(userID, ws)
	defer h.hub.Unregister(userID, id)

	ctx := r.Context()
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else {
				slog.Debug("WebSocket read ended", "error", err, "user_id", userID)
			}
			return
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
