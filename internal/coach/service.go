package coach

import (
	"context"
	"log/slog"

	"github.com/brutalytics/server/internal/domain"
)

// ConnectionStatus is the result of a connectivity probe.
type ConnectionStatus string

const (
	StatusConnected ConnectionStatus = "connected"
	StatusNoKey     ConnectionStatus = "no-key"
	StatusError     ConnectionStatus = "error"
)

// Service turns a conversation transcript into a CoachResponse, tolerating a
// remote generator that does not reliably emit well-formed JSON. Every
// failure mode degrades to a renderable response; the returned error only
// reports why degradation happened.
type Service struct {
	client    *Client
	resources []domain.Resource
}

// NewService creates a coach service backed by the given Gemini client.
func NewService(client *Client, resources []domain.Resource) *Service {
	return &Service{client: client, resources: resources}
}

// Resources returns the static reference content offered to the model.
func (s *Service) Resources() []domain.Resource {
	return s.resources
}

// GetCoachResponse produces the coach reply for the given transcript.
//
// The returned response is always valid for rendering. When err is non-nil
// it is one of ErrNoAPIKey, ErrRemoteUnavailable or ErrMalformedResponse and
// the response is the canned offline substitution.
func (s *Service) GetCoachResponse(ctx context.Context, history []domain.ConversationMessage) (domain.CoachResponse, Source, error) {
	if !s.client.Configured() {
		return offlineResponse(), SourceOffline, ErrNoAPIKey
	}

	contents := make([]domain.ConversationMessage, 0, len(history)+1)
	contents = append(contents, domain.NewMessage(domain.RoleUser, buildSystemPrompt(s.resources)))
	contents = append(contents, history...)

	text, err := s.client.Generate(ctx, contents)
	if err != nil {
		slog.Warn("coach generation failed, substituting offline response", "error", err)
		return offlineResponse(), SourceOffline, err
	}

	resp, source, err := parseResponse(text)
	if err != nil {
		slog.Warn("coach response unparseable, substituting offline response", "error", err)
		return offlineResponse(), SourceOffline, err
	}
	return resp, source, nil
}

// TestConnection probes the generative endpoint. It never returns an error;
// every outcome maps to one of the three statuses. Without a configured
// credential no network call is made.
func (s *Service) TestConnection(ctx context.Context) ConnectionStatus {
	if !s.client.Configured() {
		return StatusNoKey
	}
	if err := s.client.Probe(ctx); err != nil {
		slog.Warn("gemini connection probe failed", "error", err)
		return StatusError
	}
	return StatusConnected
}
