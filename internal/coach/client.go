package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brutalytics/server/internal/config"
	"github.com/brutalytics/server/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client is a thin HTTP client for the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient creates a Gemini client for the given credential and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

// Configured reports whether the client holds a usable credential.
// The scaffold placeholder counts as unconfigured.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiKey != config.APIKeyPlaceholder
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func defaultSafetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]safetySetting, len(categories))
	for i, c := range categories {
		settings[i] = safetySetting{Category: c, Threshold: "BLOCK_MEDIUM_AND_ABOVE"}
	}
	return settings
}

func toContents(messages []domain.ConversationMessage) []content {
	out := make([]content, len(messages))
	for i, m := range messages {
		parts := make([]contentPart, len(m.Parts))
		for j, p := range m.Parts {
			parts[j] = contentPart{Text: p.Text}
		}
		role := m.Role
		if role != domain.RoleUser {
			role = domain.RoleModel
		}
		out[i] = content{Role: role, Parts: parts}
	}
	return out
}

// Generate sends the transcript to the generative endpoint and returns the
// first candidate's text.
func (c *Client) Generate(ctx context.Context, messages []domain.ConversationMessage) (string, error) {
	req := generateRequest{
		Contents: toContents(messages),
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
		SafetySettings: defaultSafetySettings(),
	}

	body, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: decode endpoint response: %v", ErrMalformedResponse, err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: response has no text candidate", ErrMalformedResponse)
	}

	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("%w: candidate text is empty", ErrMalformedResponse)
	}
	return text, nil
}

// Probe issues a minimal-cost request to verify connectivity. A nil return
// means the endpoint answered with success.
func (c *Client) Probe(ctx context.Context) error {
	req := generateRequest{
		Contents: []content{{
			Role:  domain.RoleUser,
			Parts: []contentPart{{Text: `Responde solo con "OK" si puedes leer este mensaje.`}},
		}},
		GenerationConfig: generationConfig{MaxOutputTokens: 10},
	}
	_, err := c.post(ctx, req)
	return err
}

func (c *Client) post(ctx context.Context, payload generateRequest) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ErrRemoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d %s", ErrRemoteUnavailable, resp.StatusCode, resp.Status)
	}
	return respBody, nil
}
