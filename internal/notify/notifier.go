// Package notify implements the goal notifier: it classifies goal state
// into coach notifications, maintains the persisted notification list, and
// pushes new entries to connected clients.
package notify

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brutalytics/server/internal/domain"
	"github.com/google/uuid"
)

const goalsActionURL = "/metas"

// Notifier derives notifications from goal state. All methods are pure
// functions of the goal and the supplied clock reading, except for the
// random pick among reminder template variants.
type Notifier struct {
	rand *rand.Rand
}

// NewNotifier creates a notifier seeded from the current time.
func NewNotifier() *Notifier {
	return &Notifier{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// IsGoalStuck reports whether a goal has progress history but no update in
// the last 7 days while still in progress.
func (n *Notifier) IsGoalStuck(goal *domain.Goal, now time.Time) bool {
	if len(goal.ProgressHistory) < 2 {
		return false
	}
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour)
	return goal.LastUpdated.Before(sevenDaysAgo) && goal.Status() == domain.StatusInProgress
}

// NeedsUrgentAttention combines staleness and deadline proximity: a stuck
// goal with a deadline within 14 days, or progress under 50% with a deadline
// within 30 days.
func (n *Notifier) NeedsUrgentAttention(goal *domain.Goal, now time.Time) bool {
	days, hasDeadline := goal.DaysUntilDeadline(now)
	if !hasDeadline || days <= 0 {
		return false
	}
	if n.IsGoalStuck(goal, now) && days <= 14 {
		return true
	}
	return goal.Progress() < 50 && days <= 30
}

// GenerateGoalNotification classifies a goal into a notification. The rules
// are checked in priority order and the first match wins.
func (n *Notifier) GenerateGoalNotification(goal *domain.Goal, now time.Time) *domain.Notification {
	progress := goal.Progress()
	days, hasDeadline := goal.DaysUntilDeadline(now)

	// Completion beats everything else.
	if progress >= 100 && !goal.CompletedNotified {
		return n.newNotification(goal, now, domain.NotificationAchievement,
			fmt.Sprintf("🎉 ¡META COMPLETADA: %s!", goal.Title),
			fmt.Sprintf("¡BRUTAL! Has alcanzado el 100%% de tu meta \"%s\". Eres una máquina de resultados. ¿Cuál será tu próximo desafío? ¡No te detengas ahora!", goal.Title),
			domain.NotificationPriorityCritical, false)
	}

	if n.NeedsUrgentAttention(goal, now) {
		reason := "Progreso muy bajo con deadline próximo."
		if n.IsGoalStuck(goal, now) {
			reason = "No has reportado progreso en 7 días."
		}
		return n.newNotification(goal, now, domain.NotificationWarning,
			fmt.Sprintf("🚨 ATENCIÓN URGENTE: %s", goal.Title),
			fmt.Sprintf("¡ALERTA! Tu meta \"%s\" necesita atención inmediata. %s ¿Qué está bloqueando tu avance? Necesito que actúes HOY.", goal.Title, reason),
			domain.NotificationPriorityCritical, true)
	}

	switch {
	case progress >= 80:
		return n.newNotification(goal, now, domain.NotificationMotivation,
			fmt.Sprintf("📈 ¡Casi lo logras: %s", goal.Title),
			fmt.Sprintf("¡Excelente progreso! Estás al %.1f%% de tu meta. El último esfuerzo es el más importante. ¿Qué necesitas para cruzar la meta? ¡No aflojes ahora!", progress),
			"", false)
	case hasDeadline && days <= 7:
		return n.newNotification(goal, now, domain.NotificationWarning,
			fmt.Sprintf("⚠️ ¡Urgente: %s", goal.Title),
			fmt.Sprintf("¡Atención! Solo quedan %d días para tu deadline. Estás al %.1f%% de tu meta. ¿Necesitas ayuda para acelerar el progreso?", days, progress),
			"", true)
	case progress < 30:
		return n.newNotification(goal, now, domain.NotificationMotivation,
			fmt.Sprintf("🚀 ¡Empieza fuerte: %s", goal.Title),
			fmt.Sprintf("Veo que estás comenzando con %s. ¿Qué obstáculos has identificado? ¿Cómo puedo ayudarte a avanzar más rápido? ¡No te quedes en la zona de confort!", goal.Title),
			"", false)
	default:
		return n.newNotification(goal, now, domain.NotificationReminder,
			fmt.Sprintf("📊 Actualización: %s", goal.Title),
			fmt.Sprintf("¿Cómo va el progreso con %s? Estás al %.1f%% de tu meta. ¿Qué necesitas para mantener el momentum?", goal.Title, progress),
			"", true)
	}
}

// GenerateNewGoalNotification announces a freshly created goal.
func (n *Notifier) GenerateNewGoalNotification(goal *domain.Goal, now time.Time) *domain.Notification {
	return n.newNotification(goal, now, domain.NotificationInfo,
		fmt.Sprintf("🎯 ¡Nueva meta establecida: %s!", goal.Title),
		fmt.Sprintf("Has creado exitosamente tu meta \"%s\" con objetivo de %g %s. La meta está ahora en seguimiento activo. ¡Es hora de empezar a trabajar!", goal.Title, goal.Target, goal.Unit),
		domain.NotificationPriorityHigh, false)
}

// GenerateScheduledReminder produces a cadence reminder, picking one of
// three template variants per situation tier.
func (n *Notifier) GenerateScheduledReminder(goal *domain.Goal, now time.Time) *domain.Notification {
	progress := goal.Progress()

	var (
		messages []string
		typ      domain.NotificationType
		priority domain.NotificationPriority
		action   bool
	)

	switch {
	case n.NeedsUrgentAttention(goal, now):
		typ, priority, action = domain.NotificationWarning, domain.NotificationPriorityCritical, true
		messages = []string{
			fmt.Sprintf("🚨 URGENTE: %s necesita atención inmediata. ¿Qué estás haciendo HOY para avanzar?", goal.Title),
			fmt.Sprintf("⚠️ ALERTA: %s está en riesgo. ¿Cuál es tu plan de acción para los próximos 3 días?", goal.Title),
			fmt.Sprintf("🔥 CRÍTICO: %s requiere acción inmediata. ¿Qué obstáculo vas a eliminar hoy?", goal.Title),
		}
	case n.IsGoalStuck(goal, now):
		typ, priority, action = domain.NotificationMotivation, domain.NotificationPriorityHigh, true
		messages = []string{
			fmt.Sprintf("💪 ¿Estás desafiándote lo suficiente con %s? A veces necesitamos salir de nuestra zona de confort.", goal.Title),
			fmt.Sprintf("🎯 ¿Qué obstáculo te está impidiendo avanzar más rápido en %s?", goal.Title),
			fmt.Sprintf("⚡ ¿Has considerado todas las opciones para acelerar %s?", goal.Title),
		}
	case progress >= 80:
		typ, priority = domain.NotificationSuccess, domain.NotificationPriorityMedium
		messages = []string{
			fmt.Sprintf("🎉 ¡Excelente trabajo en %s! ¿Qué te gustaría celebrar hoy?", goal.Title),
			fmt.Sprintf("🏆 Has hecho un progreso significativo en %s. ¿Qué te hace sentir más orgulloso?", goal.Title),
			fmt.Sprintf("⭐ ¡Bien hecho! %s está avanzando. ¿Qué estrategia te está funcionando mejor?", goal.Title),
		}
	default:
		typ, priority = domain.NotificationReminder, domain.NotificationPriorityLow
		messages = []string{
			fmt.Sprintf("💪 ¿Cómo va el progreso con %s? Recuerda que cada pequeño paso cuenta.", goal.Title),
			fmt.Sprintf("🚀 ¡Hoy es un buen día para avanzar en %s! ¿Qué puedes hacer diferente?", goal.Title),
			fmt.Sprintf("📈 Veo que has progresado en %s. ¿Qué te está funcionando mejor?", goal.Title),
		}
	}

	message := messages[n.rand.Intn(len(messages))]
	return n.newNotification(goal, now, typ,
		fmt.Sprintf("📊 Recordatorio: %s", goal.Title), message, priority, action)
}

// CalculateNextReminder derives when the goal should next be checked: 12h
// when urgent, 24h when stuck, otherwise the goal's configured cadence.
// Pure function of current goal state, recomputed every evaluation pass.
func (n *Notifier) CalculateNextReminder(goal *domain.Goal, now time.Time) time.Time {
	if n.NeedsUrgentAttention(goal, now) {
		return now.Add(12 * time.Hour)
	}
	if n.IsGoalStuck(goal, now) {
		return now.Add(24 * time.Hour)
	}
	switch goal.ReminderFrequency {
	case domain.ReminderDaily:
		return now.Add(24 * time.Hour)
	case domain.ReminderWeekly:
		return now.Add(7 * 24 * time.Hour)
	case domain.ReminderMonthly:
		return now.Add(30 * 24 * time.Hour)
	default:
		return now.Add(7 * 24 * time.Hour)
	}
}

func (n *Notifier) newNotification(goal *domain.Goal, now time.Time, typ domain.NotificationType, title, message string, priority domain.NotificationPriority, actionRequired bool) *domain.Notification {
	return &domain.Notification{
		ID:             uuid.NewString(),
		UserID:         goal.UserID,
		Type:           typ,
		Title:          title,
		Message:        message,
		GoalID:         goal.ID,
		CreatedAt:      now,
		IsRead:         false,
		Priority:       priority,
		ActionRequired: actionRequired,
		ActionURL:      goalsActionURL,
	}
}
