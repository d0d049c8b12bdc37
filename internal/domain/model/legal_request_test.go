//go:build !integration

package model

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"legal-ai-relay/internal/domain"
)

func TestNormalizeChatID(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "string", raw: `"123"`, want: "123"},
		{name: "trimmed string", raw: `"  chat42 "`, want: "chat42"},
		{name: "number", raw: `123`, want: "123"},
		{name: "large number keeps literal", raw: `9007199254740993`, want: "9007199254740993"},
		{name: "empty string", raw: `""`, wantErr: true},
		{name: "blank string", raw: `"   "`, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "missing", raw: ``, wantErr: true},
		{name: "bool", raw: `true`, wantErr: true},
		{name: "object", raw: `{"id":1}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeChatID(json.RawMessage(tc.raw))
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidArgument) {
					t.Fatalf("expected invalid argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeDealID(t *testing.T) {
	if got := NormalizeDealID(json.RawMessage(`"DL-77"`)); got != "DL-77" {
		t.Fatalf("string deal id: got %q", got)
	}
	if got := NormalizeDealID(json.RawMessage(`77`)); got != "77" {
		t.Fatalf("numeric deal id: got %q", got)
	}
	if got := NormalizeDealID(json.RawMessage(`null`)); got != "" {
		t.Fatalf("null deal id: got %q", got)
	}
	if got := NormalizeDealID(nil); got != "" {
		t.Fatalf("absent deal id: got %q", got)
	}
}

func TestLegalRequestValidate(t *testing.T) {
	valid := LegalRequest{ChatID: "123", DealID: "DL-77", FileURL: "https://example.com/contract.pdf", Task: "Анализ условий"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := map[string]struct {
		mutate func(r *LegalRequest)
		msg    string
	}{
		"missing chat":     {func(r *LegalRequest) { r.ChatID = "" }, "chatId required"},
		"blank task":       {func(r *LegalRequest) { r.Task = "   " }, "task required"},
		"missing file url": {func(r *LegalRequest) { r.FileURL = "" }, "fileUrl required"},
		"relative url":     {func(r *LegalRequest) { r.FileURL = "/files/contract.pdf" }, "fileUrl must be a valid http(s) URL"},
		"ftp url":          {func(r *LegalRequest) { r.FileURL = "ftp://example.com/a.pdf" }, "fileUrl must be a valid http(s) URL"},
		"garbage url":      {func(r *LegalRequest) { r.FileURL = "://nope" }, "fileUrl must be a valid http(s) URL"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			err := r.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if domain.StatusOf(err) != 400 {
				t.Fatalf("want status 400, got %d", domain.StatusOf(err))
			}
			if err.Error() != tc.msg {
				t.Fatalf("want %q, got %q", tc.msg, err.Error())
			}
		})
	}
}

func TestAllowlist(t *testing.T) {
	t.Run("empty allows everyone", func(t *testing.T) {
		a := NewAllowlist()
		if !a.Contains("anything") {
			t.Fatal("empty allowlist should admit every chat")
		}
	})

	t.Run("dedup and trim", func(t *testing.T) {
		a := NewAllowlist(" 1", "2", "1", "", "  ")
		if a.Len() != 2 {
			t.Fatalf("want 2 ids, got %d", a.Len())
		}
		ids := a.IDs()
		sort.Strings(ids)
		if ids[0] != "1" || ids[1] != "2" {
			t.Fatalf("unexpected ids %v", ids)
		}
	})

	t.Run("membership", func(t *testing.T) {
		a := NewAllowlist("1", "2")
		if !a.Contains("2") {
			t.Fatal("2 should be allowed")
		}
		if a.Contains("3") {
			t.Fatal("3 should not be allowed")
		}
	})
}
