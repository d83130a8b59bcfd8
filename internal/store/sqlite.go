package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/brutalytics/server/internal/domain"
	"github.com/brutalytics/server/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db             *sql.DB
	conversationMu sync.Mutex // Serializes conversation writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		metric TEXT NOT NULL,
		current REAL NOT NULL,
		target REAL NOT NULL,
		unit TEXT NOT NULL,
		reminder_frequency TEXT NOT NULL,
		next_reminder INTEGER NOT NULL,
		deadline INTEGER,
		completed_notified INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_updated INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
	CREATE INDEX IF NOT EXISTS idx_goals_next_reminder ON goals(next_reminder);

	CREATE TABLE IF NOT EXISTS micrometas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		goal_id INTEGER NOT NULL REFERENCES goals(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		current REAL NOT NULL,
		target REAL NOT NULL,
		unit TEXT NOT NULL,
		priority TEXT NOT NULL,
		deadline INTEGER,
		created_at INTEGER NOT NULL,
		last_updated INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_micrometas_goal ON micrometas(goal_id);

	CREATE TABLE IF NOT EXISTS progress_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		goal_id INTEGER,
		micrometa_id INTEGER,
		date INTEGER NOT NULL,
		value REAL NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		evidence TEXT NOT NULL DEFAULT '',
		links_json TEXT NOT NULL DEFAULT '[]'
	);
	CREATE INDEX IF NOT EXISTS idx_progress_goal ON progress_entries(goal_id) WHERE goal_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_progress_micrometa ON progress_entries(micrometa_id) WHERE micrometa_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		goal_id INTEGER,
		priority TEXT NOT NULL DEFAULT '',
		action_required INTEGER NOT NULL DEFAULT 0,
		action_url TEXT NOT NULL DEFAULT '',
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(user_id) WHERE is_read = 0;

	CREATE TABLE IF NOT EXISTS conversations (
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, session_id)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, username, last_seen_at, created_at, updated_at
		FROM users WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var lastSeen, createdAt, updatedAt int64

	err := row.Scan(&user.UserID, &user.Username, &lastSeen, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.LastSeenAt = time.Unix(lastSeen, 0)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, username, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = excluded.username,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		user.UserID, user.Username,
		user.LastSeenAt.Unix(), user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// UpdateLastSeen updates the last_seen_at timestamp for a user.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE users SET last_seen_at = ?, updated_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateLastSeen affected 0 rows", "user_id", userID)
	}

	return nil
}

// CreateGoal inserts a goal together with its micrometas and assigns IDs.
func (s *SQLiteStore) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin goal insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var deadline interface{}
	if goal.Deadline != nil {
		deadline = goal.Deadline.Unix()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO goals (user_id, title, metric, current, target, unit,
			reminder_frequency, next_reminder, deadline, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.UserID, goal.Title, goal.Metric, goal.Current, goal.Target, goal.Unit,
		string(goal.ReminderFrequency), goal.NextReminder.Unix(), deadline,
		goal.CreatedAt.Unix(), goal.LastUpdated.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	goal.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("goal insert id: %w", err)
	}

	for i := range goal.Micrometas {
		m := &goal.Micrometas[i]
		m.ParentGoalID = goal.ID

		var mDeadline interface{}
		if m.Deadline != nil {
			mDeadline = m.Deadline.Unix()
		}

		mRes, err := tx.ExecContext(ctx, `
			INSERT INTO micrometas (goal_id, title, description, current, target,
				unit, priority, deadline, created_at, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			goal.ID, m.Title, m.Description, m.Current, m.Target,
			m.Unit, string(m.Priority), mDeadline,
			m.CreatedAt.Unix(), m.LastUpdated.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert micrometa: %w", err)
		}
		m.ID, err = mRes.LastInsertId()
		if err != nil {
			return fmt.Errorf("micrometa insert id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit goal insert: %w", err)
	}
	return nil
}

const goalColumns = `id, user_id, title, metric, current, target, unit,
	reminder_frequency, next_reminder, deadline, completed_notified,
	created_at, last_updated`

func scanGoal(row interface{ Scan(...interface{}) error }) (*domain.Goal, error) {
	var goal domain.Goal
	var freq string
	var nextReminder, createdAt, lastUpdated int64
	var deadline sql.NullInt64

	err := row.Scan(
		&goal.ID, &goal.UserID, &goal.Title, &goal.Metric,
		&goal.Current, &goal.Target, &goal.Unit,
		&freq, &nextReminder, &deadline, &goal.CompletedNotified,
		&createdAt, &lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	goal.ReminderFrequency = domain.ReminderFrequency(freq)
	goal.NextReminder = time.Unix(nextReminder, 0)
	goal.CreatedAt = time.Unix(createdAt, 0)
	goal.LastUpdated = time.Unix(lastUpdated, 0)
	if deadline.Valid {
		d := time.Unix(deadline.Int64, 0)
		goal.Deadline = &d
	}
	return &goal, nil
}

// GetGoal retrieves one goal owned by the given user.
func (s *SQLiteStore) GetGoal(ctx context.Context, userID string, goalID int64) (*domain.Goal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`,
		goalID, userID)

	goal, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan goal row: %w", err)
	}

	if err := s.loadGoalChildren(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// ListGoals retrieves all goals owned by the given user.
func (s *SQLiteStore) ListGoals(ctx context.Context, userID string) ([]*domain.Goal, error) {
	return s.queryGoals(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at`, userID)
}

// ListGoalsDueReminder retrieves goals whose next_reminder has elapsed.
func (s *SQLiteStore) ListGoalsDueReminder(ctx context.Context, now time.Time) ([]*domain.Goal, error) {
	return s.queryGoals(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE next_reminder <= ? ORDER BY next_reminder`,
		now.Unix())
}

// ListAllGoals retrieves every goal for sweep passes.
func (s *SQLiteStore) ListAllGoals(ctx context.Context) ([]*domain.Goal, error) {
	return s.queryGoals(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY id`)
}

func (s *SQLiteStore) queryGoals(ctx context.Context, query string, args ...interface{}) ([]*domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close goal rows", "error", closeErr)
		}
	}()

	var goals []*domain.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal row: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}

	for _, goal := range goals {
		if err := s.loadGoalChildren(ctx, goal); err != nil {
			return nil, err
		}
	}
	return goals, nil
}

func (s *SQLiteStore) loadGoalChildren(ctx context.Context, goal *domain.Goal) error {
	history, err := s.loadProgress(ctx, `goal_id`, goal.ID)
	if err != nil {
		return fmt.Errorf("load goal history: %w", err)
	}
	goal.ProgressHistory = history

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, goal_id, title, description, current, target, unit,
		       priority, deadline, created_at, last_updated
		FROM micrometas WHERE goal_id = ? ORDER BY id`, goal.ID)
	if err != nil {
		return fmt.Errorf("query micrometas: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close micrometa rows", "error", closeErr)
		}
	}()

	for rows.Next() {
		var m domain.Micrometa
		var priority string
		var deadline sql.NullInt64
		var createdAt, lastUpdated int64

		if err := rows.Scan(
			&m.ID, &m.ParentGoalID, &m.Title, &m.Description,
			&m.Current, &m.Target, &m.Unit,
			&priority, &deadline, &createdAt, &lastUpdated,
		); err != nil {
			return fmt.Errorf("scan micrometa row: %w", err)
		}

		m.Priority = domain.MicrometaPriority(priority)
		m.CreatedAt = time.Unix(createdAt, 0)
		m.LastUpdated = time.Unix(lastUpdated, 0)
		if deadline.Valid {
			d := time.Unix(deadline.Int64, 0)
			m.Deadline = &d
		}

		m.ProgressHistory, err = s.loadProgress(ctx, `micrometa_id`, m.ID)
		if err != nil {
			return fmt.Errorf("load micrometa history: %w", err)
		}

		goal.Micrometas = append(goal.Micrometas, m)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadProgress(ctx context.Context, ownerColumn string, ownerID int64) ([]domain.ProgressEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, value, notes, evidence, links_json
		 FROM progress_entries WHERE `+ownerColumn+` = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query progress entries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close progress rows", "error", closeErr)
		}
	}()

	var entries []domain.ProgressEntry
	for rows.Next() {
		var e domain.ProgressEntry
		var date int64
		var linksJSON string

		if err := rows.Scan(&date, &e.Value, &e.Notes, &e.Evidence, &linksJSON); err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		e.Date = time.Unix(date, 0)
		if linksJSON != "" && linksJSON != "[]" {
			if err := json.Unmarshal([]byte(linksJSON), &e.Links); err != nil {
				slog.Warn("failed to decode progress links", "error", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddGoalProgress appends a progress entry and updates the goal's value.
func (s *SQLiteStore) AddGoalProgress(ctx context.Context, userID string, goalID int64, entry domain.ProgressEntry) (*domain.Goal, error) {
	goal, err := s.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	if err := s.insertProgress(ctx, `goal_id`, goalID, entry); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE goals SET current = ?, last_updated = ? WHERE id = ?`,
		entry.Value, entry.Date.Unix(), goalID)
	if err != nil {
		return nil, fmt.Errorf("update goal progress: %w", err)
	}

	goal.RecordProgress(entry)
	return goal, nil
}

// AddMicrometaProgress appends a progress entry to a micrometa.
func (s *SQLiteStore) AddMicrometaProgress(ctx context.Context, userID string, goalID, micrometaID int64, entry domain.ProgressEntry) (*domain.Micrometa, error) {
	goal, err := s.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	var target *domain.Micrometa
	for i := range goal.Micrometas {
		if goal.Micrometas[i].ID == micrometaID {
			target = &goal.Micrometas[i]
			break
		}
	}
	if target == nil {
		return nil, nil
	}

	if err := s.insertProgress(ctx, `micrometa_id`, micrometaID, entry); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE micrometas SET current = ?, last_updated = ? WHERE id = ?`,
		entry.Value, entry.Date.Unix(), micrometaID)
	if err != nil {
		return nil, fmt.Errorf("update micrometa progress: %w", err)
	}

	target.RecordProgress(entry)
	return target, nil
}

func (s *SQLiteStore) insertProgress(ctx context.Context, ownerColumn string, ownerID int64, entry domain.ProgressEntry) error {
	links := entry.Links
	if links == nil {
		links = []string{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("encode progress links: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO progress_entries (`+ownerColumn+`, date, value, notes, evidence, links_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ownerID, entry.Date.Unix(), entry.Value, entry.Notes, entry.Evidence, string(linksJSON))
	if err != nil {
		return fmt.Errorf("insert progress entry: %w", err)
	}
	return nil
}

// UpdateNextReminder stores the next scheduled reminder time for a goal.
func (s *SQLiteStore) UpdateNextReminder(ctx context.Context, goalID int64, next time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE goals SET next_reminder = ? WHERE id = ?`, next.Unix(), goalID)
	if err != nil {
		return fmt.Errorf("update next reminder: %w", err)
	}
	return nil
}

// MarkCompletedNotified records that the achievement notification fired.
func (s *SQLiteStore) MarkCompletedNotified(ctx context.Context, goalID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE goals SET completed_notified = 1 WHERE id = ?`, goalID)
	if err != nil {
		return fmt.Errorf("mark completed notified: %w", err)
	}
	return nil
}

// AddNotification persists a notification. Writes are retried on
// SQLITE_BUSY because notifier sweeps and HTTP handlers share the store.
func (s *SQLiteStore) AddNotification(ctx context.Context, n *domain.Notification) error {
	var goalID interface{}
	if n.GoalID != 0 {
		goalID = n.GoalID
	}

	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO notifications (id, user_id, type, title, message, goal_id,
				priority, action_required, action_url, is_read, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.UserID, string(n.Type), n.Title, n.Message, goalID,
			string(n.Priority), n.ActionRequired, n.ActionURL, n.IsRead, n.CreatedAt.Unix())
		if err == nil {
			return nil
		}
		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("AddNotification hit SQLITE_BUSY, retrying",
				"notification_id", n.ID, "attempt", i+1, "delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}
	return fmt.Errorf("insert notification: %w", err)
}

const notificationColumns = `id, user_id, type, title, message, goal_id,
	priority, action_required, action_url, is_read, created_at`

func (s *SQLiteStore) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close notification rows", "error", closeErr)
		}
	}()

	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ, priority string
		var goalID sql.NullInt64
		var createdAt int64

		if err := rows.Scan(
			&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &goalID,
			&priority, &n.ActionRequired, &n.ActionURL, &n.IsRead, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}

		n.Type = domain.NotificationType(typ)
		n.Priority = domain.NotificationPriority(priority)
		n.GoalID = goalID.Int64
		n.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, &n)
	}
	return out, rows.Err()
}

// ListNotifications retrieves all notifications for a user, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return s.queryNotifications(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// ListUnreadNotifications retrieves unread notifications, newest first.
func (s *SQLiteStore) ListUnreadNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return s.queryNotifications(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? AND is_read = 0 ORDER BY created_at DESC, id DESC`, userID)
}

// HasUnreadGoalNotification reports whether an unread notification of the
// given type already exists for a goal.
func (s *SQLiteStore) HasUnreadGoalNotification(ctx context.Context, userID string, goalID int64, typ domain.NotificationType) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM notifications
		WHERE user_id = ? AND goal_id = ? AND type = ? AND is_read = 0`,
		userID, goalID, string(typ))

	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("count unread goal notifications: %w", err)
	}
	return count > 0, nil
}

// MarkNotificationRead flips the read flag on one notification.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// DeleteNotification removes one notification.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND user_id = ?`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// CleanupOldNotifications drops notifications older than the retention window.
func (s *SQLiteStore) CleanupOldNotifications(ctx context.Context, retention time.Duration) (int64, error) {
	threshold := time.Now().Add(-retention).Unix()
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup old notifications: %w", err)
	}
	return result.RowsAffected()
}

// GetConversation retrieves the stored transcript for a chat session.
func (s *SQLiteStore) GetConversation(ctx context.Context, userID, sessionID string) (*domain.Conversation, error) {
	s.conversationMu.Lock()
	defer s.conversationMu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT messages_json, created_at, updated_at
		FROM conversations WHERE user_id = ? AND session_id = ?`,
		userID, sessionID)

	var messagesJSON string
	var createdAt, updatedAt int64

	err := row.Scan(&messagesJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}

	conv := &domain.Conversation{
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: time.Unix(createdAt, 0),
		UpdatedAt: time.Unix(updatedAt, 0),
	}
	if err := json.Unmarshal([]byte(messagesJSON), &conv.Messages); err != nil {
		return nil, fmt.Errorf("decode conversation messages: %w", err)
	}
	return conv, nil
}

// UpsertConversation creates or replaces the transcript for a session.
func (s *SQLiteStore) UpsertConversation(ctx context.Context, conv *domain.Conversation) error {
	s.conversationMu.Lock()
	defer s.conversationMu.Unlock()

	messagesJSON, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("encode conversation messages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (user_id, session_id, messages_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, session_id) DO UPDATE SET
			messages_json = excluded.messages_json,
			updated_at = excluded.updated_at`,
		conv.UserID, conv.SessionID, string(messagesJSON),
		conv.CreatedAt.Unix(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

// DeleteConversation removes the transcript for a session.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, userID, sessionID string) error {
	s.conversationMu.Lock()
	defer s.conversationMu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE user_id = ? AND session_id = ?`,
		userID, sessionID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
