//go:build !integration

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"legal-ai-relay/internal/domain"
)

func baseEnv() map[string]string {
	return map[string]string{
		"OPENAI_API_KEY": "sk-test",
		"BITRIX_URL":     "https://corp.bitrix24.ru/rest/1/token/",
	}
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	_, err := Load(map[string]string{})
	if !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	for _, key := range []string{"OPENAI_API_KEY", "BITRIX_URL"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q should name %s", err, key)
		}
	}

	_, err = Load(map[string]string{"OPENAI_API_KEY": "x"})
	if err == nil || strings.Contains(err.Error(), "OPENAI_API_KEY") || !strings.Contains(err.Error(), "BITRIX_URL") {
		t.Fatalf("only BITRIX_URL should be reported, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(baseEnv())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != DefaultPort {
		t.Errorf("port: want %d, got %d", DefaultPort, cfg.HTTP.Port)
	}
	if cfg.HTTP.RequestBodyLimit != "20mb" || cfg.HTTP.RequestBodyLimitBytes != 20<<20 {
		t.Errorf("body limit: got %q / %d", cfg.HTTP.RequestBodyLimit, cfg.HTTP.RequestBodyLimitBytes)
	}
	if cfg.AI.Provider != ProviderOpenAI || cfg.AI.Model != "gpt-4o" {
		t.Errorf("ai: got %s/%s", cfg.AI.Provider, cfg.AI.Model)
	}
	if cfg.AI.FailurePolicy != PolicyFail {
		t.Errorf("policy: got %s", cfg.AI.FailurePolicy)
	}
	if cfg.Fetch.Timeout != 15*time.Second || cfg.Fetch.MaxBytes != DefaultFetchMaxBytes {
		t.Errorf("fetch: got %s / %d", cfg.Fetch.Timeout, cfg.Fetch.MaxBytes)
	}
	if cfg.AllowedChatIDs.Len() != 0 {
		t.Errorf("allowlist should be empty")
	}
	if cfg.Lang != "ru" || cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("misc defaults: %q %q %q", cfg.Lang, cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoad_Overrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "8080"
	env["ALLOWED_CHAT_IDS"] = " 1, 2,,1 "
	env["REQUEST_BODY_LIMIT"] = "1mb"
	env["AI_FAILURE_POLICY"] = "DEGRADE"
	env["FETCH_TIMEOUT"] = "3s"
	env["FETCH_MAX_BYTES"] = "512kb"

	cfg, err := Load(env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("port: got %d", cfg.HTTP.Port)
	}
	if cfg.AllowedChatIDs.Len() != 2 || !cfg.AllowedChatIDs.Contains("1") || cfg.AllowedChatIDs.Contains("3") {
		t.Errorf("allowlist: got %v", cfg.AllowedChatIDs.IDs())
	}
	if cfg.HTTP.RequestBodyLimitBytes != 1<<20 {
		t.Errorf("body limit: got %d", cfg.HTTP.RequestBodyLimitBytes)
	}
	if cfg.AI.FailurePolicy != PolicyDegrade {
		t.Errorf("policy: got %s", cfg.AI.FailurePolicy)
	}
	if cfg.Fetch.Timeout != 3*time.Second || cfg.Fetch.MaxBytes != 512<<10 {
		t.Errorf("fetch: got %s / %d", cfg.Fetch.Timeout, cfg.Fetch.MaxBytes)
	}
}

func TestLoad_InvalidPortFallsBack(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "not-a-port"
	cfg, err := Load(env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != DefaultPort {
		t.Fatalf("want default port, got %d", cfg.HTTP.Port)
	}
}

func TestLoad_Gemini(t *testing.T) {
	env := map[string]string{"AI_PROVIDER": "gemini", "BITRIX_URL": "https://b24/rest/"}
	if _, err := Load(env); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing GEMINI_API_KEY, got %v", err)
	}
	env["GEMINI_API_KEY"] = "g-key"
	cfg, err := Load(env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Fatalf("want gemini default model, got %s", cfg.AI.Model)
	}
}

func TestLoad_NoopNeedsNoKey(t *testing.T) {
	cfg, err := Load(map[string]string{
		"AI_PROVIDER": "noop",
		"BITRIX_URL":  "https://corp.bitrix24.ru/rest/1/token/",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != ProviderNoop || cfg.AI.Model != "noop-ai-model" {
		t.Fatalf("unexpected AI config %+v", cfg.AI)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"AI_PROVIDER":        "claude",
		"AI_FAILURE_POLICY":  "maybe",
		"REQUEST_BODY_LIMIT": "lots",
		"AI_TIMEOUT":         "-1s",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			env[key] = val
			if _, err := Load(env); !errors.Is(err, domain.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestParseByteSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"20mb", 20 << 20, true},
		{"20MB", 20 << 20, true},
		{"1.5 kb", 1536, true},
		{"100", 100, true},
		{"100b", 100, true},
		{"1gb", 1 << 30, true},
		{"", 0, false},
		{"mb", 0, false},
		{"10tb", 0, false},
		{"0", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseByteSize(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseByteSize(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseByteSize(%q) should fail", tc.in)
		}
	}
}

func TestLoadFromEnvironment_DotenvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "OPENAI_API_KEY=from-file\nBITRIX_URL=https://file.example/rest/\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("BITRIX_URL", "")
	os.Unsetenv("BITRIX_URL")

	cfg, err := LoadFromEnvironment(path)
	if err != nil {
		t.Fatalf("LoadFromEnvironment: %v", err)
	}
	if cfg.AI.OpenAIKey != "from-env" {
		t.Errorf("process env should win, got %q", cfg.AI.OpenAIKey)
	}
	if cfg.Bitrix.URL != "https://file.example/rest/" {
		t.Errorf("dotenv value should fill gaps, got %q", cfg.Bitrix.URL)
	}
}

func TestLoadFromEnvironment_MissingFileIsFine(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("BITRIX_URL", "https://b24/rest/")
	if _, err := LoadFromEnvironment(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing dotenv should be ignored: %v", err)
	}
}
