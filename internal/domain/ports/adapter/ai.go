package adapter

import (
	"context"
	"encoding/base64"
)

type PartKind string

const (
	PartText PartKind = "text"
	PartFile PartKind = "file"
)

// Part is one user-side piece of a prompt: either text or an attached file.
type Part struct {
	Kind     PartKind
	Text     string
	MIMEType string
	Filename string
	Data     []byte
}

// Base64 returns the standard base64 encoding of a file part's bytes.
func (p Part) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// Prompt is built per request and discarded after the completion call.
type Prompt struct {
	System string
	Parts  []Part
}

// Usage for a single completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AIServiceAdapter is the port for LLM completion.
type AIServiceAdapter interface {
	// Provider names the upstream, e.g. "openai".
	Provider() string
	Model() string

	// Complete returns the raw assistant text; callers trim and apply fallbacks.
	Complete(ctx context.Context, prompt Prompt) (string, Usage, error)
}
