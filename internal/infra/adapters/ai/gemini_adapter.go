// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"legal-ai-relay/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
// httpClient may be nil; its Timeout bounds every call.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, httpClient *http.Client) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model}, nil
}

func (g *GeminiAdapter) Provider() string { return "gemini" }

func (g *GeminiAdapter) Model() string { return g.model }

func (g *GeminiAdapter) Complete(ctx context.Context, prompt adapter.Prompt) (string, adapter.Usage, error) {
	if len(prompt.Parts) == 0 {
		return "", adapter.Usage{}, errors.New("gemini: no prompt parts")
	}
	parts := make([]*genai.Part, 0, len(prompt.Parts))
	for _, p := range prompt.Parts {
		switch p.Kind {
		case adapter.PartFile:
			// Gemini takes raw bytes; the SDK encodes them on the wire
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
		default:
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}

	var cfg *genai.GenerateContentConfig
	if prompt.System != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", adapter.Usage{}, fmt.Errorf("gemini: %w", err)
	}

	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return resp.Text(), u, nil
}
