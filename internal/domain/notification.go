package domain

import (
	"time"
)

// NotificationType categorizes notifications for the UI.
type NotificationType string

const (
	NotificationInfo        NotificationType = "info"
	NotificationSuccess     NotificationType = "success"
	NotificationWarning     NotificationType = "warning"
	NotificationError       NotificationType = "error"
	NotificationReminder    NotificationType = "reminder"
	NotificationAchievement NotificationType = "achievement"
	NotificationMotivation  NotificationType = "motivation"
)

// NotificationPriority escalates how prominently a notification is shown.
type NotificationPriority string

const (
	NotificationPriorityLow      NotificationPriority = "low"
	NotificationPriorityMedium   NotificationPriority = "medium"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityCritical NotificationPriority = "critical"
)

// Notification is a coach message derived from goal state or user actions.
type Notification struct {
	ID             string               `json:"id"`
	UserID         string               `json:"-"`
	Type           NotificationType     `json:"type"`
	Title          string               `json:"title"`
	Message        string               `json:"message"`
	GoalID         int64                `json:"goal_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	IsRead         bool                 `json:"is_read"`
	Priority       NotificationPriority `json:"priority,omitempty"`
	ActionRequired bool                 `json:"action_required"`
	ActionURL      string               `json:"action_url,omitempty"`
}
