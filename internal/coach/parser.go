package coach

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/brutalytics/server/internal/domain"
)

// Source tags how a coach response was obtained, so callers can distinguish
// parser confidence levels.
type Source string

const (
	// SourceStrict means the response decoded cleanly from the expected JSON.
	SourceStrict Source = "strict"
	// SourceHeuristic means the response was scraped from free-form text.
	SourceHeuristic Source = "heuristic"
	// SourceOffline means the canned offline response was substituted.
	SourceOffline Source = "offline"
)

var labelPrefix = regexp.MustCompile(`^.*?[:=]\s*`)

// stripCodeFences removes leading/trailing markdown code-fence markers the
// model sometimes wraps its JSON in.
func stripCodeFences(text string) string {
	clean := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(clean, "```json"):
		clean = strings.TrimPrefix(clean, "```json")
	case strings.HasPrefix(clean, "```"):
		clean = strings.TrimPrefix(clean, "```")
	default:
		return clean
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// parseResponse turns raw model output into a CoachResponse.
//
// Stage 1 decodes the expected JSON schema and fails closed on invariant
// violations: structurally valid but semantically broken output degrades to
// canned content instead of keyword-scraping a JSON blob. Stage 2 is a
// best-effort line-oriented scraper for prose output, filling missing fields
// with stock text.
func parseResponse(raw string) (domain.CoachResponse, Source, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return domain.CoachResponse{}, SourceOffline,
			fmt.Errorf("%w: empty model output", ErrMalformedResponse)
	}

	var decoded struct {
		Truth             string          `json:"truth"`
		Plan              json.RawMessage `json:"plan"`
		Challenge         string          `json:"challenge"`
		SuggestedResource *string         `json:"suggestedResource"`
		SuggestionContext *string         `json:"suggestionContext"`
		Meta              *string         `json:"meta"`
	}
	if err := json.Unmarshal([]byte(clean), &decoded); err == nil {
		resp := domain.CoachResponse{
			Truth:             decoded.Truth,
			Plan:              decodePlan(decoded.Plan),
			Challenge:         decoded.Challenge,
			SuggestedResource: decoded.SuggestedResource,
			SuggestionContext: decoded.SuggestionContext,
			Meta:              decoded.Meta,
		}
		if err := resp.Validate(); err != nil {
			return domain.CoachResponse{}, SourceOffline,
				fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return resp, SourceStrict, nil
	}

	resp, ok := extractHeuristic(clean)
	if !ok {
		return domain.CoachResponse{}, SourceOffline,
			fmt.Errorf("%w: no usable content found", ErrMalformedResponse)
	}
	return resp, SourceHeuristic, nil
}

// decodePlan tolerates a plan that is missing or not a string array.
func decodePlan(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var plan []string
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil
	}
	return plan
}

// extractHeuristic recovers a best-effort CoachResponse from prose.
func extractHeuristic(text string) (domain.CoachResponse, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.CoachResponse{}, false
	}

	// A direct question is taken wholesale as the challenge.
	if strings.ContainsAny(trimmed, "¿?") {
		return domain.CoachResponse{
			Truth: "La IA está funcionando pero no está devolviendo el formato esperado. Esto es temporal.",
			Plan: []string{
				"Revisa tu conexión a internet",
				"Verifica que tu API Key esté configurada correctamente",
				"Mientras tanto, enfócate en lo que puedes controlar",
			},
			Challenge: trimmed,
			Meta:      stringPtr("Resuelve el problema técnico en las próximas 24 horas"),
		}, true
	}

	var truth, challenge, meta string
	var plan []string

	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case containsAny(lower, "verdad", "truth", "realidad"):
			truth = labelPrefix.ReplaceAllString(line, "")
		case containsAny(lower, "plan", "paso", "acción", "accion"):
			if action := labelPrefix.ReplaceAllString(line, ""); action != "" {
				plan = append(plan, action)
			}
		case containsAny(lower, "desafío", "desafio", "challenge", "reto"):
			challenge = labelPrefix.ReplaceAllString(line, "")
		case containsAny(lower, "meta", "objetivo"):
			meta = labelPrefix.ReplaceAllString(line, "")
		}
	}

	if truth != "" || len(plan) > 0 || challenge != "" {
		if truth == "" {
			truth = "Necesito más información para darte una respuesta específica."
		}
		if len(plan) == 0 {
			plan = []string{"Reflexiona sobre lo que realmente quieres lograr"}
		}
		if challenge == "" {
			challenge = "¿Qué es lo que realmente te está impidiendo avanzar?"
		}
		if meta == "" {
			meta = "Define una meta específica en las próximas 24 horas"
		}
		return domain.CoachResponse{
			Truth:     truth,
			Plan:      plan,
			Challenge: challenge,
			Meta:      stringPtr(meta),
		}, true
	}

	// No recognizable structure: the whole text becomes the challenge.
	return domain.CoachResponse{
		Truth: "La IA está respondiendo pero no en el formato esperado. Esto es temporal.",
		Plan: []string{
			"Verifica tu conexión a internet",
			"Revisa la configuración de la API",
			"Mientras tanto, enfócate en lo que puedes controlar",
		},
		Challenge: trimmed,
		Meta:      stringPtr("Resuelve el problema técnico en las próximas 24 horas"),
	}, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func stringPtr(s string) *string {
	return &s
}
