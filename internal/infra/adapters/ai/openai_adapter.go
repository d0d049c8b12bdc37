package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"legal-ai-relay/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.AIServiceAdapter using the Chat Completions API.
// A custom base URL points it at OpenAI-compatible gateways.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

func NewOpenAIAdapter(apiKey, model, baseURL string, timeout time.Duration, extra ...option.RequestOption) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// completions are never retried
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)
	return &OpenAIAdapter{client: openai.NewClient(opts...), model: model}, nil
}

func (o *OpenAIAdapter) Provider() string { return "openai" }

func (o *OpenAIAdapter) Model() string { return o.model }

func (o *OpenAIAdapter) Complete(ctx context.Context, prompt adapter.Prompt) (string, adapter.Usage, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: toOpenAIMessages(prompt),
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", adapter.Usage{}, fmt.Errorf("openai http %d: %w", apiErr.StatusCode, err)
		}
		return "", adapter.Usage{}, fmt.Errorf("openai: %w", err)
	}

	u := adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Message.Content) != "" {
			return c.Message.Content, u, nil
		}
	}
	return "", u, nil
}

// toOpenAIMessages maps the prompt to one system message plus one user message
// per part; files travel as base64 data URLs.
func toOpenAIMessages(prompt adapter.Prompt) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompt.Parts)+1)
	if prompt.System != "" {
		out = append(out, openai.SystemMessage(prompt.System))
	}
	for _, p := range prompt.Parts {
		switch p.Kind {
		case adapter.PartFile:
			file := openai.ChatCompletionContentPartFileFileParam{
				FileData: openai.String("data:" + p.MIMEType + ";base64," + p.Base64()),
			}
			if p.Filename != "" {
				file.Filename = openai.String(p.Filename)
			}
			out = append(out, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.FileContentPart(file),
			}))
		default:
			out = append(out, openai.UserMessage(p.Text))
		}
	}
	return out
}
