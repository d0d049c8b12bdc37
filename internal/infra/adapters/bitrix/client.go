package bitrix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"legal-ai-relay/internal/domain/ports/adapter"
	"legal-ai-relay/internal/infra/logging"
	"legal-ai-relay/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ChatDeliveryAdapter = (*Client)(nil)

const (
	methodMessageAdd = "im.message.add"
	maxAttempts      = 2
)

// Client posts messages into Bitrix24 chat dialogs through an incoming webhook URL.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zerolog.Logger
}

type messagePayload struct {
	DialogID string `json:"DIALOG_ID"`
	Message  string `json:"MESSAGE"`
}

func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) (*Client, error) {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, logger)
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger *zerolog.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("bitrix base URL is required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{endpoint: baseURL + methodMessageAdd, http: httpClient, log: logger}, nil
}

// SendMessage posts text to the dialog. A failed attempt is retried once, and
// only when no HTTP response was received at all. It never returns an error;
// false means the message was not delivered.
func (c *Client) SendMessage(ctx context.Context, chatID string, text string) bool {
	l := logging.With(ctx, c.log)
	if strings.TrimSpace(chatID) == "" {
		l.Warn().Msg("bitrix: chat id is required to send a message")
		return false
	}
	if strings.TrimSpace(text) == "" {
		l.Warn().Msg("bitrix: message is required to send a message")
		return false
	}

	body, err := json.Marshal(messagePayload{DialogID: chatID, Message: text})
	if err != nil {
		l.Error().Err(err).Msg("bitrix: encode payload")
		return false
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		delivered, retryable := c.post(ctx, l, body, attempt)
		if delivered {
			return true
		}
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return false
}

func (c *Client) post(ctx context.Context, l *zerolog.Logger, body []byte, attempt int) (delivered, retryable bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		l.Error().Err(err).Msg("bitrix: build request")
		return false, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncDeliveryAttempt("network_error")
		l.Warn().Err(err).Int("attempt", attempt).Msg("bitrix: connection failed")
		return false, true
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := gjson.GetBytes(raw, "error")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || apiErr.Exists() {
		metrics.IncDeliveryAttempt("http_error")
		l.Warn().
			Int("status", resp.StatusCode).
			Str("error", apiErr.String()).
			Str("error_description", gjson.GetBytes(raw, "error_description").String()).
			Int("attempt", attempt).
			Msg("bitrix: message rejected")
		return false, false
	}

	metrics.IncDeliveryAttempt("ok")
	l.Debug().Int("attempt", attempt).Int64("message_id", gjson.GetBytes(raw, "result").Int()).Msg("bitrix: message delivered")
	return true, false
}
