package coach

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brutalytics/server/internal/api"
	"github.com/brutalytics/server/internal/domain"
	"github.com/brutalytics/server/internal/goals"
	"github.com/brutalytics/server/internal/identity"
	"github.com/brutalytics/server/internal/store"
	"github.com/go-chi/chi/v5"
)

const maxMessageLength = 8000

// Handler exposes the coach chat over HTTP.
type Handler struct {
	service *Service
	repo    store.Repository
	limiter *RateLimiter
	fence   *requestFence
}

// NewHandler creates a coach HTTP handler.
func NewHandler(service *Service, repo store.Repository, limiter *RateLimiter) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		limiter: limiter,
		fence:   newRequestFence(),
	}
}

// RegisterRoutes registers coach routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/coach", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/status", h.Status)
		r.Post("/reset", h.Reset)
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response      domain.CoachResponse `json:"response"`
	Source        Source               `json:"source"`
	Status        string               `json:"status"`
	SuggestedGoal *domain.Goal         `json:"suggested_goal,omitempty"`
}

// Chat appends the user message to the session transcript, asks the coach
// for a reply, and persists both turns. One request per session at a time;
// concurrent sends get 409.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := identity.SessionIDFromContext(r.Context())

	if !h.limiter.Allow(userID) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded, slow down")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxMessageLength {
		api.Error(w, http.StatusBadRequest, "message too long")
		return
	}

	fenceKey := userID + ":" + sessionID
	token, ok := h.fence.Begin(fenceKey)
	if !ok {
		api.Error(w, http.StatusConflict, "a coach request is already in flight for this session")
		return
	}

	conv, err := h.repo.GetConversation(r.Context(), userID, sessionID)
	if err != nil {
		h.fence.End(fenceKey, token)
		slog.Error("Failed to load conversation", "user_id", userID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	now := time.Now()
	if conv == nil {
		conv = &domain.Conversation{UserID: userID, SessionID: sessionID, CreatedAt: now}
	}
	conv.Messages = append(conv.Messages, domain.NewMessage(domain.RoleUser, req.Message))

	resp, source, genErr := h.service.GetCoachResponse(r.Context(), conv.Messages)

	if h.fence.End(fenceKey, token) {
		modelTurn, err := json.Marshal(resp)
		if err == nil {
			conv.Messages = append(conv.Messages, domain.NewMessage(domain.RoleModel, string(modelTurn)))
			conv.UpdatedAt = time.Now()
			if err := h.repo.UpsertConversation(r.Context(), conv); err != nil {
				slog.Error("Failed to persist conversation", "user_id", userID, "error", err)
			}
		}
	}

	out := chatResponse{Response: resp, Source: source, Status: chatStatus(genErr)}
	if resp.IsDiagnosis() && resp.Meta != nil {
		out.SuggestedGoal = goals.ExtractDraft(*resp.Meta, resp.Plan, now)
	}
	api.JSON(w, http.StatusOK, out)
}

func chatStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoAPIKey):
		return "no-key"
	default:
		return "offline"
	}
}

// Status probes connectivity to the generative endpoint.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.service.TestConnection(r.Context())
	api.JSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// Reset clears the stored transcript for the current session.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := identity.SessionIDFromContext(r.Context())

	if err := h.repo.DeleteConversation(r.Context(), userID, sessionID); err != nil {
		slog.Error("Failed to reset conversation", "user_id", userID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to reset conversation")
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
