package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/brutalytics/server/internal/domain"
	"github.com/brutalytics/server/internal/store"
)

// notificationRetention is how long notifications are kept before GC.
const notificationRetention = 30 * 24 * time.Hour

// Worker periodically evaluates goal state and emits notifications: a slow
// sweep for cadence reminders (plus GC) and a fast sweep for completions and
// goals needing urgent attention.
type Worker struct {
	repo             store.Repository
	notifier         *Notifier
	hub              *Hub
	reminderInterval time.Duration
	urgentInterval   time.Duration
}

// NewWorker creates a notification worker.
func NewWorker(repo store.Repository, notifier *Notifier, hub *Hub, reminderInterval, urgentInterval time.Duration) *Worker {
	return &Worker{
		repo:             repo,
		notifier:         notifier,
		hub:              hub,
		reminderInterval: reminderInterval,
		urgentInterval:   urgentInterval,
	}
}

// Start runs the sweep loop in a background goroutine until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	reminderTicker := time.NewTicker(w.reminderInterval)
	urgentTicker := time.NewTicker(w.urgentInterval)

	go func() {
		defer reminderTicker.Stop()
		defer urgentTicker.Stop()
		slog.Info("Notification worker started",
			"reminder_interval", w.reminderInterval,
			"urgent_interval", w.urgentInterval)

		for {
			select {
			case <-reminderTicker.C:
				w.SweepScheduledReminders(ctx, time.Now())
			case <-urgentTicker.C:
				w.SweepUrgent(ctx, time.Now())
			case <-ctx.Done():
				slog.Info("Notification worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// SweepScheduledReminders emits cadence reminders for goals whose
// next-reminder time has elapsed, reschedules them, and garbage-collects
// old notifications.
func (w *Worker) SweepScheduledReminders(ctx context.Context, now time.Time) {
	due, err := w.repo.ListGoalsDueReminder(ctx, now)
	if err != nil {
		slog.Error("Reminder sweep failed to list due goals", "error", err)
		return
	}

	for _, goal := range due {
		n := w.notifier.GenerateScheduledReminder(goal, now)
		w.emit(ctx, n)

		next := w.notifier.CalculateNextReminder(goal, now)
		if err := w.repo.UpdateNextReminder(ctx, goal.ID, next); err != nil {
			slog.Warn("Failed to reschedule reminder", "goal_id", goal.ID, "error", err)
		}
	}

	if deleted, err := w.repo.CleanupOldNotifications(ctx, notificationRetention); err != nil {
		slog.Error("Notification cleanup failed", "error", err)
	} else if deleted > 0 {
		slog.Info("Cleaned up old notifications", "count", deleted)
	}
}

// SweepUrgent emits achievement notifications for newly completed goals and
// urgent-attention warnings for goals at risk.
func (w *Worker) SweepUrgent(ctx context.Context, now time.Time) {
	goals, err := w.repo.ListAllGoals(ctx)
	if err != nil {
		slog.Error("Urgent sweep failed to list goals", "error", err)
		return
	}

	for _, goal := range goals {
		switch {
		case goal.Progress() >= 100 && !goal.CompletedNotified:
			w.emit(ctx, w.notifier.GenerateGoalNotification(goal, now))
			if err := w.repo.MarkCompletedNotified(ctx, goal.ID); err != nil {
				slog.Warn("Failed to mark goal completion notified", "goal_id", goal.ID, "error", err)
			}

		case w.notifier.NeedsUrgentAttention(goal, now):
			exists, err := w.repo.HasUnreadGoalNotification(ctx, goal.UserID, goal.ID, domain.NotificationWarning)
			if err != nil {
				slog.Warn("Urgent sweep dedup check failed", "goal_id", goal.ID, "error", err)
				continue
			}
			if exists {
				continue
			}
			w.emit(ctx, w.notifier.GenerateGoalNotification(goal, now))
		}
	}
}

// Notify persists a notification and pushes it to the owner's open streams.
// Exposed for event-driven notifications (goal creation).
func (w *Worker) Notify(ctx context.Context, n *domain.Notification) {
	w.emit(ctx, n)
}

func (w *Worker) emit(ctx context.Context, n *domain.Notification) {
	if err := w.repo.AddNotification(ctx, n); err != nil {
		slog.Error("Failed to persist notification",
			"notification_id", n.ID, "goal_id", n.GoalID, "error", err)
		return
	}
	w.hub.Publish(n)
}
