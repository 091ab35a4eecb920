package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 30 * time.Second
)

// systemPrompt frames every generation request. The formatting rules keep the
// model from wrapping its JSON in markdown fences or falling back to HTML,
// which the normalizer would reject.
const systemPrompt = `You are an expert form designer creating JSON form structures. Follow these rules strictly:
1. Return ONLY pure JSON (no markdown, no code blocks)
2. Fields must include: name (snake_case), label, type, required
3. For select/radio/checkbox fields, provide options as STRINGS (not objects)
4. For file fields, include accept and maxSizeMB parameters
5. Never return HTML or any non-JSON content

Example valid structure:
{
  "fields": [
    {
      "name": "full_name",
      "label": "Full Name",
      "type": "text",
      "required": true
    },
    {
      "name": "gender",
      "label": "Gender",
      "type": "radio",
      "options": ["Male", "Female", "Other"],
      "required": true
    }
  ]
}

User Request:
`

// GeminiConfig configures the Gemini-backed Generator. APIKey is the only
// required value.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
	Logger  *zap.Logger
}

// Gemini calls the generateContent endpoint of the Gemini REST API.
type Gemini struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     *zap.Logger
}

// NewGemini builds a Gemini generator, filling unset config values with
// defaults.
func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	g := &Gemini{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  cfg.Client,
		log:     cfg.Logger,
	}
	if g.baseURL == "" {
		g.baseURL = defaultBaseURL
	}
	if g.model == "" {
		g.model = defaultModel
	}
	if g.client == nil {
		g.client = &http.Client{Timeout: defaultTimeout}
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	return g, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt wrapped in the system framing and returns the
// first candidate's text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("oracle: prompt is required")
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: systemPrompt + prompt}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("oracle: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("oracle: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle: call model endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("oracle: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.log.Warn("model endpoint returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("model", g.model))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("oracle: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("oracle: model returned no candidates")
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	g.log.Debug("generated schema text",
		zap.String("model", g.model),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(started)))
	return text, nil
}
