package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/brutalytics/server/internal/domain"
)

var notifyNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func makeGoal(current, target float64) *domain.Goal {
	return &domain.Goal{
		ID:                1,
		UserID:            "anon_0123456789abcdef0123456789abcdef",
		Title:             "Conseguir 100 usuarios",
		Metric:            "Usuarios Registrados",
		Current:           current,
		Target:            target,
		Unit:              "usuarios",
		CreatedAt:         notifyNow.Add(-30 * 24 * time.Hour),
		LastUpdated:       notifyNow.Add(-24 * time.Hour),
		ReminderFrequency: domain.ReminderWeekly,
	}
}

func withDeadline(g *domain.Goal, d time.Time) *domain.Goal {
	g.Deadline = &d
	return g
}

func stuckGoal(current, target float64) *domain.Goal {
	g := makeGoal(current, target)
	g.ProgressHistory = []domain.ProgressEntry{
		{Date: notifyNow.Add(-20 * 24 * time.Hour), Value: current / 2},
		{Date: notifyNow.Add(-10 * 24 * time.Hour), Value: current},
	}
	g.LastUpdated = notifyNow.Add(-10 * 24 * time.Hour)
	return g
}

func TestIsGoalStuck(t *testing.T) {
	t.Parallel()

	n := NewNotifier()

	tests := []struct {
		name string
		goal *domain.Goal
		want bool
	}{
		{"stale with history", stuckGoal(40, 100), true},
		{"fresh update", makeGoal(40, 100), false},
		{"no history", func() *domain.Goal {
			g := makeGoal(40, 100)
			g.LastUpdated = notifyNow.Add(-10 * 24 * time.Hour)
			return g
		}(), false},
		{"completed", func() *domain.Goal {
			g := stuckGoal(100, 100)
			return g
		}(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := n.IsGoalStuck(tt.goal, notifyNow); got != tt.want {
				t.Errorf("IsGoalStuck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedsUrgentAttention(t *testing.T) {
	t.Parallel()

	n := NewNotifier()

	tests := []struct {
		name string
		goal *domain.Goal
		want bool
	}{
		{"no deadline", stuckGoal(40, 100), false},
		{"stuck near deadline", withDeadline(stuckGoal(60, 100), notifyNow.Add(10*24*time.Hour)), true},
		{"low progress within 30d", withDeadline(makeGoal(20, 100), notifyNow.Add(25*24*time.Hour)), true},
		{"low progress far deadline", withDeadline(makeGoal(20, 100), notifyNow.Add(60*24*time.Hour)), false},
		{"good progress near deadline", withDeadline(makeGoal(70, 100), notifyNow.Add(10*24*time.Hour)), false},
		{"deadline already passed", withDeadline(makeGoal(20, 100), notifyNow.Add(-24*time.Hour)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := n.NeedsUrgentAttention(tt.goal, notifyNow); got != tt.want {
				t.Errorf("NeedsUrgentAttention() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateGoalNotificationCompletion(t *testing.T) {
	t.Parallel()

	n := NewNotifier()
	goal := makeGoal(100, 100)

	got := n.GenerateGoalNotification(goal, notifyNow)
	if got.Type != domain.NotificationAchievement {
		t.Errorf("type = %q, want achievement", got.Type)
	}
	if got.Priority != domain.NotificationPriorityCritical {
		t.Errorf("priority = %q, want critical", got.Priority)
	}
	if !strings.Contains(got.Title, "META COMPLETADA") {
		t.Errorf("title = %q", got.Title)
	}
	if got.GoalID != goal.ID || got.UserID != goal.UserID {
		t.Error("notification must carry goal and user identifiers")
	}
	if got.ID == "" {
		t.Error("notification must get a generated id")
	}
}

func TestGenerateGoalNotificationCompletionBeatsUrgency(t *testing.T) {
	t.Parallel()

	n := NewNotifier()
	// Completed goal that would otherwise classify as urgent.
	goal := withDeadline(stuckGoal(100, 100), notifyNow.Add(5*24*time.Hour))

	got := n.GenerateGoalNotification(goal, notifyNow)
	if got.Type != domain.NotificationAchievement {
		t.Errorf("type = %q, want achievement to win", got.Type)
	}
}

func TestGenerateGoalNotificationUrgent(t *testing.T) {
	t.Parallel()

	n := NewNotifier()
	goal := withDeadline(stuckGoal(30, 100), notifyNow.Add(10*24*time.Hour))

	got := n.GenerateGoalNotification(goal, notifyNow)
	if got.Type != domain.NotificationWarning {
		t.Errorf("type = %q, want warning", got.Type)
	}
	if !got.ActionRequired {
		t.Error("urgent notification must require action")
	}
	if !strings.Contains(got.Message, "7 días") {
		t.Errorf("stuck reason missing from message: %q", got.Message)
	}
}

func TestGenerateGoalNotificationTiers(t *testing.T) {
	t.Parallel()

	n := NewNotifier()

	tests := []struct {
		name string
		goal *domain.Goal
		want domain.NotificationType
	}{
		{"almost there", makeGoal(85, 100), domain.NotificationMotivation},
		{"deadline soon", withDeadline(makeGoal(60, 100), notifyNow.Add(5*24*time.Hour)), domain.NotificationWarning},
		{"just started", makeGoal(10, 100), domain.NotificationMotivation},
		{"steady middle", makeGoal(50, 100), domain.NotificationReminder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := n.GenerateGoalNotification(tt.goal, notifyNow); got.Type != tt.want {
				t.Errorf("type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestGenerateNewGoalNotification(t *testing.T) {
	t.Parallel()

	n := NewNotifier()
	got := n.GenerateNewGoalNotification(makeGoal(0, 100), notifyNow)
	if got.Type != domain.NotificationInfo {
		t.Errorf("type = %q, want info", got.Type)
	}
	if got.Priority != domain.NotificationPriorityHigh {
		t.Errorf("priority = %q, want high", got.Priority)
	}
	if !strings.Contains(got.Title, "Nueva meta") {
		t.Errorf("title = %q", got.Title)
	}
}

func TestGenerateScheduledReminderTiers(t *testing.T) {
	t.Parallel()

	n := NewNotifier()

	tests := []struct {
		name         string
		goal         *domain.Goal
		wantType     domain.NotificationType
		wantPriority domain.NotificationPriority
	}{
		{"urgent", withDeadline(makeGoal(20, 100), notifyNow.Add(20*24*time.Hour)), domain.NotificationWarning, domain.NotificationPriorityCritical},
		{"stuck", stuckGoal(60, 100), domain.NotificationMotivation, domain.NotificationPriorityHigh},
		{"near completion", makeGoal(90, 100), domain.NotificationSuccess, domain.NotificationPriorityMedium},
		{"routine", makeGoal(50, 100), domain.NotificationReminder, domain.NotificationPriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := n.GenerateScheduledReminder(tt.goal, notifyNow)
			if got.Type != tt.wantType {
				t.Errorf("type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Priority != tt.wantPriority {
				t.Errorf("priority = %q, want %q", got.Priority, tt.wantPriority)
			}
			if !strings.Contains(got.Message, tt.goal.Title) {
				t.Errorf("message %q does not mention the goal", got.Message)
			}
		})
	}
}

func TestCalculateNextReminder(t *testing.T) {
	t.Parallel()

	n := NewNotifier()

	tests := []struct {
		name string
		goal *domain.Goal
		want time.Time
	}{
		{"urgent 12h", withDeadline(makeGoal(20, 100), notifyNow.Add(20*24*time.Hour)), notifyNow.Add(12 * time.Hour)},
		{"stuck 24h", stuckGoal(60, 100), notifyNow.Add(24 * time.Hour)},
		{"daily cadence", func() *domain.Goal {
			g := makeGoal(60, 100)
			g.ReminderFrequency = domain.ReminderDaily
			return g
		}(), notifyNow.Add(24 * time.Hour)},
		{"weekly cadence", makeGoal(60, 100), notifyNow.Add(7 * 24 * time.Hour)},
		{"monthly cadence", func() *domain.Goal {
			g := makeGoal(60, 100)
			g.ReminderFrequency = domain.ReminderMonthly
			return g
		}(), notifyNow.Add(30 * 24 * time.Hour)},
		{"unset cadence defaults weekly", func() *domain.Goal {
			g := makeGoal(60, 100)
			g.ReminderFrequency = ""
			return g
		}(), notifyNow.Add(7 * 24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := n.CalculateNextReminder(tt.goal, notifyNow); !got.Equal(tt.want) {
				t.Errorf("CalculateNextReminder() = %v, want %v", got, tt.want)
			}
		})
	}
}
