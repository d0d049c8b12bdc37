package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"legal-ai-relay/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev testing.
// It logs the prompt shape instead of sending real AI requests.
type NoopAIAdapter struct {
	log *zerolog.Logger
}

func NewNoopAIAdapter(logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: logger}
}

func (a *NoopAIAdapter) Provider() string { return "noop" }

func (a *NoopAIAdapter) Model() string { return "noop-ai-model" }

func (a *NoopAIAdapter) Complete(ctx context.Context, prompt adapter.Prompt) (string, adapter.Usage, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	fileBytes := 0
	for _, p := range prompt.Parts {
		fileBytes += len(p.Data)
	}
	a.log.Info().Int("parts", len(prompt.Parts)).Int("file_bytes", fileBytes).Msg("[noop-ai] completion requested")
	return "This is a noop AI response.", adapter.Usage{}, nil
}
