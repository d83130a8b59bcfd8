package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brutalytics/server/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return repo
}

const testUserID = "anon_0123456789abcdef0123456789abcdef"

func seedUser(t *testing.T, repo Repository, userID string) {
	t.Helper()
	now := time.Now()
	err := repo.UpsertUser(context.Background(), &domain.User{
		UserID:     userID,
		Username:   "anon-test",
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
}

func seedGoal(t *testing.T, repo Repository, userID string) *domain.Goal {
	t.Helper()
	now := time.Now().Truncate(time.Second)
	deadline := now.Add(21 * 24 * time.Hour)
	goal := &domain.Goal{
		UserID:            userID,
		Title:             "Conseguir 100 usuarios",
		Metric:            "Usuarios Registrados",
		Current:           0,
		Target:            100,
		Unit:              "usuarios",
		CreatedAt:         now,
		LastUpdated:       now,
		ReminderFrequency: domain.ReminderWeekly,
		NextReminder:      now.Add(7 * 24 * time.Hour),
		Deadline:          &deadline,
		Micrometas: []domain.Micrometa{
			{
				Title:       "Lanza la encuesta",
				Description: "Lanza la encuesta a la lista de correo",
				Target:      1,
				Unit:        "completado",
				Priority:    domain.PriorityHigh,
				CreatedAt:   now,
				LastUpdated: now,
			},
		},
	}
	if err := repo.CreateGoal(context.Background(), goal); err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}
	return goal
}

func TestUserLifecycle(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if user, err := repo.GetUser(ctx, testUserID); err != nil || user != nil {
		t.Fatalf("GetUser(missing) = %v, %v, want nil, nil", user, err)
	}

	seedUser(t, repo, testUserID)

	user, err := repo.GetUser(ctx, testUserID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user == nil || user.Username != "anon-test" {
		t.Fatalf("GetUser() = %+v", user)
	}

	later := time.Now().Add(time.Hour)
	if err := repo.UpdateLastSeen(ctx, testUserID, later); err != nil {
		t.Fatalf("UpdateLastSeen() error = %v", err)
	}
	user, err = repo.GetUser(ctx, testUserID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.LastSeenAt.Unix() != later.Unix() {
		t.Errorf("LastSeenAt = %v, want %v", user.LastSeenAt, later)
	}
}

func TestGoalCreateAndGet(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	seedUser(t, repo, testUserID)
	created := seedGoal(t, repo, testUserID)
	if created.ID == 0 {
		t.Fatal("CreateGoal() did not assign an id")
	}
	if created.Micrometas[0].ID == 0 || created.Micrometas[0].ParentGoalID != created.ID {
		t.Fatal("CreateGoal() did not wire micrometa ids")
	}

	goal, err := repo.GetGoal(ctx, testUserID, created.ID)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	if goal == nil {
		t.Fatal("GetGoal() = nil")
	}
	if goal.Title != created.Title || goal.Target != 100 {
		t.Errorf("round-trip mismatch: %+v", goal)
	}
	if goal.Deadline == nil || goal.Deadline.Unix() != created.Deadline.Unix() {
		t.Errorf("deadline = %v, want %v", goal.Deadline, created.Deadline)
	}
	if len(goal.Micrometas) != 1 || goal.Micrometas[0].Priority != domain.PriorityHigh {
		t.Errorf("micrometas = %+v", goal.Micrometas)
	}
	if goal.Status() != domain.StatusInProgress {
		t.Errorf("status = %q", goal.Status())
	}

	// Ownership is enforced.
	other, err := repo.GetGoal(ctx, "anon_ffffffffffffffffffffffffffffffff", created.ID)
	if err != nil {
		t.Fatalf("GetGoal(other user) error = %v", err)
	}
	if other != nil {
		t.Error("goal leaked across users")
	}
}

func TestAddGoalProgress(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	seedUser(t, repo, testUserID)
	created := seedGoal(t, repo, testUserID)

	entry := domain.ProgressEntry{
		Date:  time.Now().Truncate(time.Second),
		Value: 40,
		Notes: "primera campaña",
		Links: []string{"https://example.com/campaign"},
	}
	goal, err := repo.AddGoalProgress(ctx, testUserID, created.ID, entry)
	if err != nil {
		t.Fatalf("AddGoalProgress() error = %v", err)
	}
	if goal.Current != 40 {
		t.Errorf("current = %v, want 40", goal.Current)
	}
	if len(goal.ProgressHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(goal.ProgressHistory))
	}

	reloaded, err := repo.GetGoal(ctx, testUserID, created.ID)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	if reloaded.Current != 40 || len(reloaded.ProgressHistory) != 1 {
		t.Errorf("persisted state: current = %v, history = %d", reloaded.Current, len(reloaded.ProgressHistory))
	}
	if got := reloaded.ProgressHistory[0]; got.Notes != "primera campaña" || len(got.Links) != 1 {
		t.Errorf("entry round-trip mismatch: %+v", got)
	}

	if goal, err := repo.AddGoalProgress(ctx, testUserID, 9999, entry); err != nil || goal != nil {
		t.Errorf("AddGoalProgress(missing) = %v, %v, want nil, nil", goal, err)
	}
}

func TestAddMicrometaProgress(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	seedUser(t, repo, testUserID)
	created := seedGoal(t, repo, testUserID)
	mid := created.Micrometas[0].ID

	entry := domain.ProgressEntry{Date: time.Now().Truncate(time.Second), Value: 1}
	m, err := repo.AddMicrometaProgress(ctx, testUserID, created.ID, mid, entry)
	if err != nil {
		t.Fatalf("AddMicrometaProgress() error = %v", err)
	}
	if m == nil || m.Current != 1 {
		t.Fatalf("micrometa = %+v", m)
	}
	if m.Status() != domain.StatusCompleted {
		t.Errorf("status = %q, want completed", m.Status())
	}

	if m, err := repo.AddMicrometaProgress(ctx, testUserID, created.ID, 9999, entry); err != nil || m != nil {
		t.Errorf("AddMicrometaProgress(missing) = %v, %v, want nil, nil", m, err)
	}
}

func TestListGoalsDueReminder(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	seedUser(t, repo, testUserID)
	goal := seedGoal(t, repo, testUserID)

	due, err := repo.ListGoalsDueReminder(ctx, time.Now())
	if err != nil {
		t.Fatalf("ListGoalsDueReminder() error = %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("due = %d goals, want 0", len(due))
	}

	if err := repo.UpdateNextReminder(ctx, goal.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("UpdateNextReminder() error = %v", err)
	}
	due, err = repo.ListGoalsDueReminder(ctx, time.Now())
	if err != nil {
		t.Fatalf("ListGoalsDueReminder() error = %v", err)
	}
	if len(due) != 1 || due[0].ID != goal.ID {
		t.Fatalf("due = %+v, want the seeded goal", due)
	}
}

func TestMarkCompletedNotified(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	seedUser(t, repo, testUserID)
	goal := seedGoal(t, repo, testUserID)

	if err := repo.MarkCompletedNotified(ctx, goal.ID); err != nil {
		t.Fatalf("MarkCompletedNotified() error = %v", err)
	}
	reloaded, err := repo.GetGoal(ctx, testUserID, goal.ID)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	if !reloaded.CompletedNotified {
		t.Error("completed_notified flag not persisted")
	}
}

func seedNotification(t *testing.T, repo Repository, id string, goalID int64, typ domain.NotificationType, createdAt time.Time) {
	t.Helper()
	err := repo.AddNotification(context.Background(), &domain.Notification{
		ID:        id,
		UserID:    testUserID,
		Type:      typ,
		Title:     "t",
		Message:   "m",
		GoalID:    goalID,
		Priority:  domain.NotificationPriorityLow,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("AddNotification() error = %v", err)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	seedNotification(t, repo, "n1", 1, domain.NotificationReminder, now.Add(-2*time.Hour))
	seedNotification(t, repo, "n2", 1, domain.NotificationWarning, now.Add(-time.Hour))
	seedNotification(t, repo, "n3", 2, domain.NotificationInfo, now)

	all, err := repo.ListNotifications(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != "n3" || all[2].ID != "n1" {
		t.Errorf("order = [%s %s %s], want newest first", all[0].ID, all[1].ID, all[2].ID)
	}

	exists, err := repo.HasUnreadGoalNotification(ctx, testUserID, 1, domain.NotificationWarning)
	if err != nil || !exists {
		t.Fatalf("HasUnreadGoalNotification() = %v, %v, want true", exists, err)
	}

	if err := repo.MarkNotificationRead(ctx, testUserID, "n2"); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	exists, err = repo.HasUnreadGoalNotification(ctx, testUserID, 1, domain.NotificationWarning)
	if err != nil || exists {
		t.Fatalf("HasUnreadGoalNotification() after read = %v, %v, want false", exists, err)
	}

	unread, err := repo.ListUnreadNotifications(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListUnreadNotifications() error = %v", err)
	}
	if len(unread) != 2 {
		t.Errorf("unread = %d, want 2", len(unread))
	}

	if err := repo.MarkNotificationRead(ctx, testUserID, "missing"); err == nil {
		t.Error("MarkNotificationRead(missing) expected an error")
	}

	if err := repo.DeleteNotification(ctx, testUserID, "n1"); err != nil {
		t.Fatalf("DeleteNotification() error = %v", err)
	}
	all, err = repo.ListNotifications(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len after delete = %d, want 2", len(all))
	}
}

func TestCleanupOldNotifications(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	seedNotification(t, repo, "old", 1, domain.NotificationReminder, now.Add(-40*24*time.Hour))
	seedNotification(t, repo, "fresh", 1, domain.NotificationReminder, now)

	deleted, err := repo.CleanupOldNotifications(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOldNotifications() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	all, err := repo.ListNotifications(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(all) != 1 || all[0].ID != "fresh" {
		t.Errorf("remaining = %+v, want only the fresh notification", all)
	}
}

func TestConversationLifecycle(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if conv, err := repo.GetConversation(ctx, testUserID, "default"); err != nil || conv != nil {
		t.Fatalf("GetConversation(missing) = %v, %v, want nil, nil", conv, err)
	}

	now := time.Now().Truncate(time.Second)
	conv := &domain.Conversation{
		UserID:    testUserID,
		SessionID: "default",
		Messages: []domain.ConversationMessage{
			domain.NewMessage(domain.RoleUser, "hola"),
			domain.NewMessage(domain.RoleModel, `{"challenge":"¿qué quieres lograr?"}`),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.UpsertConversation(ctx, conv); err != nil {
		t.Fatalf("UpsertConversation() error = %v", err)
	}

	loaded, err := repo.GetConversation(ctx, testUserID, "default")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if loaded == nil || len(loaded.Messages) != 2 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Messages[0].Text() != "hola" {
		t.Errorf("first message = %q", loaded.Messages[0].Text())
	}

	// Sessions are isolated.
	if conv, err := repo.GetConversation(ctx, testUserID, "other-tab"); err != nil || conv != nil {
		t.Fatalf("GetConversation(other session) = %v, %v, want nil, nil", conv, err)
	}

	conv.Messages = append(conv.Messages, domain.NewMessage(domain.RoleUser, "segunda"))
	if err := repo.UpsertConversation(ctx, conv); err != nil {
		t.Fatalf("UpsertConversation(update) error = %v", err)
	}
	loaded, err = repo.GetConversation(ctx, testUserID, "default")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if len(loaded.Messages) != 3 {
		t.Errorf("messages = %d, want 3", len(loaded.Messages))
	}

	if err := repo.DeleteConversation(ctx, testUserID, "default"); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}
	if conv, err := repo.GetConversation(ctx, testUserID, "default"); err != nil || conv != nil {
		t.Fatalf("GetConversation(deleted) = %v, %v, want nil, nil", conv, err)
	}
}
