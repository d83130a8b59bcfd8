package domain

import (
	"fmt"
	"time"
)

// Message roles as the generative endpoint expects them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// MessagePart is one text fragment of a conversation message.
type MessagePart struct {
	Text string `json:"text"`
}

// ConversationMessage is one turn of the coach conversation. Messages are
// append-only; the transcript is owned by the chat session.
type ConversationMessage struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts"`
}

// NewMessage builds a single-part conversation message.
func NewMessage(role, text string) ConversationMessage {
	return ConversationMessage{Role: role, Parts: []MessagePart{{Text: text}}}
}

// Text joins all parts of the message.
func (m ConversationMessage) Text() string {
	switch len(m.Parts) {
	case 0:
		return ""
	case 1:
		return m.Parts[0].Text
	}
	var out string
	for _, p := range m.Parts {
		out += p.Text
	}
	return out
}

// Conversation is the persisted transcript for a user's chat session.
type Conversation struct {
	UserID    string                `json:"-"`
	SessionID string                `json:"-"`
	Messages  []ConversationMessage `json:"messages"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// CoachResponse is the structured output of the persona text generator:
// either a follow-up question (challenge only, plan empty) or a final
// diagnosis (truth + plan + challenge, usually with a meta).
type CoachResponse struct {
	Truth             string   `json:"truth"`
	Plan              []string `json:"plan"`
	Challenge         string   `json:"challenge"`
	SuggestedResource *string  `json:"suggestedResource"`
	SuggestionContext *string  `json:"suggestionContext"`
	Meta              *string  `json:"meta,omitempty"`
}

// IsDiagnosis reports whether the response is a final diagnosis rather than
// a follow-up question. The whole UI keys its rendering mode on this.
func (r *CoachResponse) IsDiagnosis() bool {
	return len(r.Plan) > 0
}

// Validate enforces the conversational invariants: challenge must always be
// present, and a non-empty plan (final diagnosis) requires a non-empty truth.
func (r *CoachResponse) Validate() error {
	if r.Challenge == "" {
		return fmt.Errorf("coach response missing challenge")
	}
	if len(r.Plan) > 0 && r.Truth == "" {
		return fmt.Errorf("final diagnosis missing truth")
	}
	return nil
}
