// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/brutalytics/server/internal/domain"
)

// Repository defines the interface for persisting coach data.
type Repository interface {
	// GetUser retrieves a user by their user ID.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// CreateGoal inserts a goal together with its micrometas and assigns IDs.
	CreateGoal(ctx context.Context, goal *domain.Goal) error

	// GetGoal retrieves one goal (with micrometas and progress history)
	// owned by the given user. Returns nil if not found.
	GetGoal(ctx context.Context, userID string, goalID int64) (*domain.Goal, error)

	// ListGoals retrieves all goals owned by the given user.
	ListGoals(ctx context.Context, userID string) ([]*domain.Goal, error)

	// ListGoalsDueReminder retrieves goals (across all users) whose
	// next_reminder has elapsed.
	ListGoalsDueReminder(ctx context.Context, now time.Time) ([]*domain.Goal, error)

	// ListAllGoals retrieves every goal across all users for sweep passes.
	ListAllGoals(ctx context.Context) ([]*domain.Goal, error)

	// AddGoalProgress appends a progress entry and updates the goal's
	// running value. Returns the refreshed goal.
	AddGoalProgress(ctx context.Context, userID string, goalID int64, entry domain.ProgressEntry) (*domain.Goal, error)

	// AddMicrometaProgress appends a progress entry to a micrometa.
	AddMicrometaProgress(ctx context.Context, userID string, goalID, micrometaID int64, entry domain.ProgressEntry) (*domain.Micrometa, error)

	// UpdateNextReminder stores the next scheduled reminder time for a goal.
	UpdateNextReminder(ctx context.Context, goalID int64, next time.Time) error

	// MarkCompletedNotified records that the achievement notification for a
	// goal has been emitted, so sweeps do not repeat it.
	MarkCompletedNotified(ctx context.Context, goalID int64) error

	// AddNotification persists a notification.
	AddNotification(ctx context.Context, n *domain.Notification) error

	// ListNotifications retrieves all notifications for a user, newest first.
	ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error)

	// ListUnreadNotifications retrieves unread notifications, newest first.
	ListUnreadNotifications(ctx context.Context, userID string) ([]*domain.Notification, error)

	// HasUnreadGoalNotification reports whether an unread notification of
	// the given type already exists for a goal (sweep de-duplication).
	HasUnreadGoalNotification(ctx context.Context, userID string, goalID int64, typ domain.NotificationType) (bool, error)

	// MarkNotificationRead flips the read flag on one notification.
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error

	// DeleteNotification removes one notification.
	DeleteNotification(ctx context.Context, userID, notificationID string) error

	// CleanupOldNotifications drops notifications older than the retention
	// window and returns how many were removed.
	CleanupOldNotifications(ctx context.Context, retention time.Duration) (int64, error)

	// GetConversation retrieves the stored transcript for a chat session.
	// Returns nil if the session has no transcript yet.
	GetConversation(ctx context.Context, userID, sessionID string) (*domain.Conversation, error)

	// UpsertConversation creates or replaces the transcript for a session.
	UpsertConversation(ctx context.Context, conv *domain.Conversation) error

	// DeleteConversation removes the transcript for a session.
	DeleteConversation(ctx context.Context, userID, sessionID string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
