package goals

import (
	"strings"
	"time"

	"github.com/brutalytics/server/internal/domain"
)

var (
	urgencyKeywords  = []string{"hoy", "ahora", "inmediat", "urgente", "24 horas"}
	deferralKeywords = []string{"después", "despues", "luego", "más adelante", "mas adelante", "eventualmente", "largo plazo", "considera"}
)

// Deadline offsets per priority tier.
const (
	highPriorityWindow   = 14 * 24 * time.Hour
	mediumPriorityWindow = 30 * 24 * time.Hour
	lowPriorityWindow    = 60 * 24 * time.Hour
)

// MicrometasFromPlan derives one micrometa per plan action. The first item
// and anything urgent-sounding gets high priority, deferral wording gets
// low, everything else medium; the deadline window widens with lower
// priority.
func MicrometasFromPlan(plan []string, now time.Time) []domain.Micrometa {
	var out []domain.Micrometa
	for i, action := range plan {
		action = strings.TrimSpace(action)
		if action == "" {
			continue
		}

		priority := planPriority(i, action)
		deadline := now.Add(priorityWindow(priority))

		out = append(out, domain.Micrometa{
			Title:       truncate(action, 50),
			Description: action,
			Current:     0,
			Target:      1,
			Unit:        "completado",
			Priority:    priority,
			Deadline:    &deadline,
			CreatedAt:   now,
			LastUpdated: now,
		})
	}
	return out
}

func planPriority(index int, action string) domain.MicrometaPriority {
	lower := strings.ToLower(action)
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			return domain.PriorityHigh
		}
	}
	if index == 0 {
		return domain.PriorityHigh
	}
	for _, kw := range deferralKeywords {
		if strings.Contains(lower, kw) {
			return domain.PriorityLow
		}
	}
	return domain.PriorityMedium
}

func priorityWindow(p domain.MicrometaPriority) time.Duration {
	switch p {
	case domain.PriorityHigh:
		return highPriorityWindow
	case domain.PriorityLow:
		return lowPriorityWindow
	default:
		return mediumPriorityWindow
	}
}
