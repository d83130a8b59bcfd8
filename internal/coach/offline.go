package coach

import (
	"github.com/brutalytics/server/internal/domain"
)

// offlineResponse is the canned in-persona reply substituted whenever the
// remote generator cannot produce a usable response. It satisfies the
// challenge-non-empty invariant so rendering code has no special case.
func offlineResponse() domain.CoachResponse {
	return domain.CoachResponse{
		Truth: "Hay un problema técnico con la IA. Pero eso no es excusa para no avanzar.",
		Plan: []string{
			"Verifica tu conexión a internet",
			"Revisa que tu API Key de Gemini esté configurada correctamente",
			"Mientras tanto, enfócate en lo que SÍ puedes controlar",
		},
		Challenge: "¿Qué acción específica puedes tomar HOY para avanzar hacia tu objetivo, independientemente de los problemas técnicos?",
		Meta:      stringPtr("Resuelve el problema técnico en las próximas 24 horas"),
	}
}
