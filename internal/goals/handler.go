package goals

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brutalytics/server/internal/api"
	"github.com/brutalytics/server/internal/domain"
	"github.com/brutalytics/server/internal/identity"
	"github.com/brutalytics/server/internal/notify"
	"github.com/brutalytics/server/internal/store"
	"github.com/go-chi/chi/v5"
)

// Handler exposes goal tracking over HTTP.
type Handler struct {
	repo     store.Repository
	notifier *notify.Notifier
	worker   *notify.Worker
}

// NewHandler creates a goals HTTP handler.
func NewHandler(repo store.Repository, notifier *notify.Notifier, worker *notify.Worker) *Handler {
	return &Handler{repo: repo, notifier: notifier, worker: worker}
}

// RegisterRoutes registers goal routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/goals", func(r chi.Router) {
		r.Get("/", h.ListGoals)
		r.Post("/", h.CreateGoal)
		r.Get("/{goalID}", h.GetGoal)
		r.Post("/{goalID}/progress", h.AddProgress)
		r.Post("/{goalID}/micrometas/{micrometaID}/progress", h.AddMicrometaProgress)
	})
}

// ListGoals returns every goal of the current user.
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.repo.ListGoals(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to list goals", "user_id", userID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	api.JSON(w, http.StatusOK, list)
}

// CreateGoal persists a new goal (typically a suggested draft accepted by the
// user) and announces it.
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var goal domain.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal.Title = strings.TrimSpace(goal.Title)
	if goal.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if goal.Target < 0 || goal.Current < 0 {
		api.Error(w, http.StatusBadRequest, "current and target must not be negative")
		return
	}

	now := time.Now()
	goal.ID = 0
	goal.UserID = userID
	goal.CreatedAt = now
	goal.LastUpdated = now
	goal.ProgressHistory = nil
	goal.CompletedNotified = false
	if goal.ReminderFrequency == "" {
		goal.ReminderFrequency = domain.ReminderWeekly
	}
	if goal.NextReminder.IsZero() {
		goal.NextReminder = h.notifier.CalculateNextReminder(&goal, now)
	}
	for i := range goal.Micrometas {
		m := &goal.Micrometas[i]
		m.ID = 0
		m.CreatedAt = now
		m.LastUpdated = now
		m.ProgressHistory = nil
		if m.Priority == "" {
			m.Priority = domain.PriorityMedium
		}
	}

	if err := h.repo.CreateGoal(r.Context(), &goal); err != nil {
		slog.Error("Failed to create goal", "user_id", userID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	h.worker.Notify(r.Context(), h.notifier.GenerateNewGoalNotification(&goal, now))
	api.JSON(w, http.StatusCreated, &goal)
}

// GetGoal returns one goal with its micrometas and history.
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	goalID, ok := parseID(w, r, "goalID")
	if !ok {
		return
	}

	goal, err := h.repo.GetGoal(r.Context(), userID, goalID)
	if err != nil {
		slog.Error("Failed to load goal", "goal_id", goalID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to load goal")
		return
	}
	if goal == nil {
		api.Error(w, http.StatusNotFound, "goal not found")
		return
	}
	api.JSON(w, http.StatusOK, goal)
}

type progressRequest struct {
	Value    float64  `json:"value"`
	Notes    string   `json:"notes"`
	Evidence string   `json:"evidence"`
	Links    []string `json:"links"`
}

// AddProgress appends a progress entry to a goal.
func (h *Handler) AddProgress(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	goalID, ok := parseID(w, r, "goalID")
	if !ok {
		return
	}

	entry, ok := decodeProgress(w, r)
	if !ok {
		return
	}

	goal, err := h.repo.AddGoalProgress(r.Context(), userID, goalID, entry)
	if err != nil {
		slog.Error("Failed to record goal progress", "goal_id", goalID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to record progress")
		return
	}
	if goal == nil {
		api.Error(w, http.StatusNotFound, "goal not found")
		return
	}
	api.JSON(w, http.StatusOK, goal)
}

// AddMicrometaProgress appends a progress entry to one micrometa of a goal.
func (h *Handler) AddMicrometaProgress(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	goalID, ok := parseID(w, r, "goalID")
	if !ok {
		return
	}
	micrometaID, ok := parseID(w, r, "micrometaID")
	if !ok {
		return
	}

	entry, ok := decodeProgress(w, r)
	if !ok {
		return
	}

	micrometa, err := h.repo.AddMicrometaProgress(r.Context(), userID, goalID, micrometaID, entry)
	if err != nil {
		slog.Error("Failed to record micrometa progress",
			"goal_id", goalID, "micrometa_id", micrometaID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to record progress")
		return
	}
	if micrometa == nil {
		api.Error(w, http.StatusNotFound, "micrometa not found")
		return
	}
	api.JSON(w, http.StatusOK, micrometa)
}

func decodeProgress(w http.ResponseWriter, r *http.Request) (domain.ProgressEntry, bool) {
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return domain.ProgressEntry{}, false
	}
	if req.Value < 0 {
		api.Error(w, http.StatusBadRequest, "value must not be negative")
		return domain.ProgressEntry{}, false
	}
	return domain.ProgressEntry{
		Date:     time.Now(),
		Value:    req.Value,
		Notes:    strings.TrimSpace(req.Notes),
		Evidence: strings.TrimSpace(req.Evidence),
		Links:    req.Links,
	}, true
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		api.Error(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
