package model

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"legal-ai-relay/internal/domain"
)

// LegalRequest is one task notification received from the CRM webhook.
type LegalRequest struct {
	ChatID  string
	DealID  string
	FileURL string
	Task    string
}

// NormalizeChatID accepts a JSON number or a non-empty string and returns its
// string form. Numbers keep their literal text so "123" and 123 compare equal.
func NormalizeChatID(raw json.RawMessage) (string, error) {
	switch v := decodeScalar(raw).(type) {
	case json.Number:
		return v.String(), nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s, nil
		}
	}
	return "", domain.Invalid("chatId required")
}

// NormalizeDealID is lenient: string, number or null; anything else is dropped.
func NormalizeDealID(raw json.RawMessage) string {
	switch v := decodeScalar(raw).(type) {
	case json.Number:
		return v.String()
	case string:
		return strings.TrimSpace(v)
	}
	return ""
}

func decodeScalar(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// Validate checks the request invariants before any external call is made.
func (r LegalRequest) Validate() error {
	if strings.TrimSpace(r.ChatID) == "" {
		return domain.Invalid("chatId required")
	}
	if strings.TrimSpace(r.Task) == "" {
		return domain.Invalid("task required")
	}
	if strings.TrimSpace(r.FileURL) == "" {
		return domain.Invalid("fileUrl required")
	}
	if !IsDocumentURL(r.FileURL) {
		return domain.Invalid("fileUrl must be a valid http(s) URL")
	}
	return nil
}

// IsDocumentURL reports whether s is an absolute http or https URL with a host.
func IsDocumentURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
