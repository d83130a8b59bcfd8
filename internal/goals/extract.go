// Package goals implements goal tracking and the goal-from-text extractor
// that turns a diagnosis "meta" string into a creatable goal.
package goals

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brutalytics/server/internal/domain"
)

// Extraction rules are an ordered list of independent matcher/builder pairs
// evaluated in fixed priority order; the first match wins. Keeping each rule
// self-contained makes the policy auditable and testable per rule.
type rule struct {
	re    *regexp.Regexp
	build func(match []string, meta string, now time.Time) *domain.Goal
}

var (
	moneyRe    = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{3})*)\s*(USD|MXN|EUR|\$|pesos|dólares|dolares)`)
	activityRe = regexp.MustCompile(`(?i)(\d+)\s*(entrenamientos?|sesi(?:ones|ón|on)|veces)\s*por\s*(semana|día|dia|mes)`)
	usersRe    = regexp.MustCompile(`(?i)(\d+)\s*usuarios`)
	commentsRe = regexp.MustCompile(`(?i)(\d+)\s*comentarios`)
	hoursRe    = regexp.MustCompile(`(?i)(\d+)\s*horas`)
	bareTimeRe = regexp.MustCompile(`(?i)^\s*(\d+)\s*(días|dias|semanas|meses)\s*$`)

	durationRe = regexp.MustCompile(`(?i)(\d+)\s*(día|días|dia|dias|semana|semanas|mes|meses|año|años|ano|anos)`)
)

var extractionRules = []rule{
	{moneyRe, buildMoneyGoal},
	{activityRe, buildActivityGoal},
	{usersRe, buildCountGoal("Usuarios Registrados", "usuarios")},
	{commentsRe, buildCountGoal("Comentarios Recibidos", "comentarios")},
	{hoursRe, buildCountGoal("Horas Invertidas", "horas")},
	{bareTimeRe, buildTimeBoundGoal},
}

// ExtractDraft synthesizes a creatable goal from the free-text meta of a
// diagnosis, with one micrometa per plan line. Returns nil for empty input;
// any non-empty text always yields at least the catch-all goal.
func ExtractDraft(meta string, plan []string, now time.Time) *domain.Goal {
	meta = strings.TrimSpace(meta)
	if meta == "" {
		return nil
	}

	var goal *domain.Goal
	for _, r := range extractionRules {
		if match := r.re.FindStringSubmatch(meta); match != nil {
			goal = r.build(match, meta, now)
			break
		}
	}

	if goal == nil {
		if deadline := deadlineFrom(meta, now); deadline != nil {
			// Recognized duration but no countable quantity: track
			// overall progress as a percentage.
			goal = newDraft(meta, "Avance General", 100, "%", now)
		} else {
			// Catch-all so extraction never silently fails when the
			// coach included a meta.
			goal = newDraft(meta, "Objetivo Cumplido", 1, "completado", now)
		}
	}

	if goal.Deadline == nil {
		goal.Deadline = deadlineFrom(meta, now)
	}
	goal.Micrometas = MicrometasFromPlan(plan, now)
	return goal
}

func newDraft(meta, metric string, target float64, unit string, now time.Time) *domain.Goal {
	return &domain.Goal{
		Title:             truncate(meta, 60),
		Metric:            metric,
		Current:           0,
		Target:            target,
		Unit:              unit,
		CreatedAt:         now,
		LastUpdated:       now,
		ReminderFrequency: domain.ReminderWeekly,
		NextReminder:      now.Add(7 * 24 * time.Hour),
	}
}

func buildMoneyGoal(match []string, meta string, now time.Time) *domain.Goal {
	target := parseAmount(match[1])
	return newDraft(meta, "Ingresos Generados", target, normalizeCurrency(match[2]), now)
}

func buildActivityGoal(match []string, meta string, now time.Time) *domain.Goal {
	target, _ := strconv.ParseFloat(match[1], 64)
	period := strings.ToLower(match[3])
	if period == "dia" {
		period = "día"
	}
	return newDraft(meta, "Frecuencia de Actividad", target, "por "+period, now)
}

func buildCountGoal(metric, unit string) func([]string, string, time.Time) *domain.Goal {
	return func(match []string, meta string, now time.Time) *domain.Goal {
		target, _ := strconv.ParseFloat(match[1], 64)
		return newDraft(meta, metric, target, unit, now)
	}
}

func buildTimeBoundGoal(match []string, meta string, now time.Time) *domain.Goal {
	goal := newDraft(meta, "Avance General", 100, "%", now)
	goal.Deadline = deadlineFrom(meta, now)
	return goal
}

// parseAmount strips thousands separators from a matched number.
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", "")
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func normalizeCurrency(token string) string {
	switch upper := strings.ToUpper(token); upper {
	case "USD", "MXN", "EUR", "$":
		return upper
	default:
		return strings.ToLower(token)
	}
}

// deadlineFrom computes "now + duration" when the text names a duration.
// The upstream prompt instructs the model to only emit future-relative
// durations; no clamping of past-dated results happens here.
func deadlineFrom(text string, now time.Time) *time.Time {
	match := durationRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}

	var deadline time.Time
	switch unit := strings.ToLower(match[2]); {
	case strings.HasPrefix(unit, "d"):
		deadline = now.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "s"):
		deadline = now.AddDate(0, 0, n*7)
	case strings.HasPrefix(unit, "m"):
		deadline = now.AddDate(0, n, 0)
	default:
		deadline = now.AddDate(n, 0, 0)
	}
	return &deadline
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
