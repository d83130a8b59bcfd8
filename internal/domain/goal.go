// Package domain contains core domain types for the Brutalytics backend.
package domain

import (
	"time"
)

// GoalStatus describes the lifecycle state of a goal or micrometa.
type GoalStatus string

const (
	// StatusInProgress means the target has not been reached yet.
	StatusInProgress GoalStatus = "En Progreso"
	// StatusCompleted means current has reached or passed the target.
	StatusCompleted GoalStatus = "Completado"
)

// ReminderFrequency is the configured reminder cadence of a goal.
type ReminderFrequency string

const (
	ReminderDaily   ReminderFrequency = "daily"
	ReminderWeekly  ReminderFrequency = "weekly"
	ReminderMonthly ReminderFrequency = "monthly"
)

// MicrometaPriority orders micrometas by urgency.
type MicrometaPriority string

const (
	PriorityLow    MicrometaPriority = "low"
	PriorityMedium MicrometaPriority = "medium"
	PriorityHigh   MicrometaPriority = "high"
)

// ProgressEntry is one append-only progress history record.
type ProgressEntry struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Notes    string    `json:"notes,omitempty"`
	Evidence string    `json:"evidence,omitempty"`
	Links    []string  `json:"links,omitempty"`
}

// Goal is a user-defined numeric target with progress tracking.
//
// Status is always derived from Current/Target via Status(); it is never
// stored or set independently, so the stored and computed values cannot
// disagree.
type Goal struct {
	ID                int64             `json:"id"`
	UserID            string            `json:"-"`
	Title             string            `json:"title"`
	Metric            string            `json:"metric"`
	Current           float64           `json:"current"`
	Target            float64           `json:"target"`
	Unit              string            `json:"unit"`
	CreatedAt         time.Time         `json:"created_at"`
	LastUpdated       time.Time         `json:"last_updated"`
	ProgressHistory   []ProgressEntry   `json:"progress_history"`
	ReminderFrequency ReminderFrequency `json:"reminder_frequency"`
	NextReminder      time.Time         `json:"next_reminder"`
	Deadline          *time.Time        `json:"deadline,omitempty"`
	Micrometas        []Micrometa       `json:"micrometas,omitempty"`

	// CompletedNotified records that the achievement notification for this
	// goal has already been emitted, so periodic sweeps do not repeat it.
	CompletedNotified bool `json:"-"`
}

// Status derives the goal status from its progress pair.
func (g *Goal) Status() GoalStatus {
	return statusOf(g.Current, g.Target)
}

// Progress returns completion as a percentage of the target.
// A zero target counts as 100% to avoid dividing by zero.
func (g *Goal) Progress() float64 {
	return progressOf(g.Current, g.Target)
}

// DaysUntilDeadline returns the number of days (rounded up) until the
// deadline, or false if the goal has none.
func (g *Goal) DaysUntilDeadline(now time.Time) (int, bool) {
	if g.Deadline == nil {
		return 0, false
	}
	return daysUntil(*g.Deadline, now), true
}

// RecordProgress appends a history entry and updates the running value.
func (g *Goal) RecordProgress(entry ProgressEntry) {
	g.ProgressHistory = append(g.ProgressHistory, entry)
	g.Current = entry.Value
	g.LastUpdated = entry.Date
}

// Micrometa is a sub-goal derived from one action item of a coach plan.
type Micrometa struct {
	ID              int64             `json:"id"`
	ParentGoalID    int64             `json:"parent_goal_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Current         float64           `json:"current"`
	Target          float64           `json:"target"`
	Unit            string            `json:"unit"`
	CreatedAt       time.Time         `json:"created_at"`
	LastUpdated     time.Time         `json:"last_updated"`
	ProgressHistory []ProgressEntry   `json:"progress_history"`
	Priority        MicrometaPriority `json:"priority"`
	Deadline        *time.Time        `json:"deadline,omitempty"`
}

// Status derives the micrometa status from its progress pair.
func (m *Micrometa) Status() GoalStatus {
	return statusOf(m.Current, m.Target)
}

// Progress returns completion as a percentage of the target.
func (m *Micrometa) Progress() float64 {
	return progressOf(m.Current, m.Target)
}

// RecordProgress appends a history entry and updates the running value.
func (m *Micrometa) RecordProgress(entry ProgressEntry) {
	m.ProgressHistory = append(m.ProgressHistory, entry)
	m.Current = entry.Value
	m.LastUpdated = entry.Date
}

func statusOf(current, target float64) GoalStatus {
	if target > 0 && current >= target {
		return StatusCompleted
	}
	return StatusInProgress
}

func progressOf(current, target float64) float64 {
	if target == 0 {
		return 100
	}
	return current / target * 100
}

func daysUntil(deadline, now time.Time) int {
	diff := deadline.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
