// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"legal-ai-relay/internal/domain"
	"legal-ai-relay/internal/domain/model"
)

const (
	DefaultPort             = 3000
	DefaultRequestBodyLimit = "20mb"
	DefaultFetchMaxBytes    = 20 << 20

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	// ProviderNoop answers with a canned text; for local runs without an AI key.
	ProviderNoop = "noop"

	// PolicyFail surfaces upstream AI errors to the caller as 500.
	PolicyFail = "fail"
	// PolicyDegrade answers with a fixed "temporarily unavailable" text instead.
	PolicyDegrade = "degrade"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port                  int
	RequestBodyLimit      string
	RequestBodyLimitBytes int64
}

type LogConfig struct {
	Level    string // trace|debug|info|warn|error
	Format   string // json|console
	Sampling bool   // enable sampling in prod
}

type AIConfig struct {
	Provider        string
	OpenAIKey       string
	OpenAIBaseURL   string // OpenAI-compatible gateways
	GeminiKey       string
	GeminiBaseURL   string
	Model           string
	FailurePolicy   string
	Timeout         time.Duration
	ConcurrentLimit int // max concurrent AI calls
}

type BitrixConfig struct {
	URL     string // incoming webhook base, e.g. https://corp.bitrix24.ru/rest/1/token/
	Timeout time.Duration
}

type FetchConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

type Config struct {
	HTTP           HTTPConfig
	Log            LogConfig
	AI             AIConfig
	Bitrix         BitrixConfig
	Fetch          FetchConfig
	AllowedChatIDs model.Allowlist
	Lang           string

	Runtime RuntimeConfig
}

// LoadFromEnvironment reads an optional dotenv file into the process
// environment (existing variables win) and then builds the config from it.
func LoadFromEnvironment(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", dotenvPath, err)
		}
	}
	return Load(environ())
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Load builds a Config from an environment mapping. It fails with ErrConfig
// naming every missing required key.
func Load(env map[string]string) (*Config, error) {
	get := func(k string) string { return strings.TrimSpace(env[k]) }

	var cfg Config
	cfg.AI.Provider = strings.ToLower(get("AI_PROVIDER"))
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = ProviderOpenAI
	}
	cfg.AI.OpenAIKey = get("OPENAI_API_KEY")
	cfg.AI.OpenAIBaseURL = get("OPENAI_BASE_URL")
	cfg.AI.GeminiKey = get("GEMINI_API_KEY")
	cfg.AI.GeminiBaseURL = get("GEMINI_BASE_URL")
	cfg.Bitrix.URL = get("BITRIX_URL")

	var missing []string
	switch cfg.AI.Provider {
	case ProviderOpenAI:
		if cfg.AI.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderGemini:
		if cfg.AI.GeminiKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderNoop:
	default:
		return nil, fmt.Errorf("%w: unknown AI_PROVIDER %q", domain.ErrConfig, cfg.AI.Provider)
	}
	if cfg.Bitrix.URL == "" {
		missing = append(missing, "BITRIX_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required environment variables: %s", domain.ErrConfig, strings.Join(missing, ", "))
	}

	cfg.AllowedChatIDs = ParseAllowedChatIDs(env["ALLOWED_CHAT_IDS"])

	// defaults
	cfg.HTTP.Port = DefaultPort
	if p, err := strconv.Atoi(get("PORT")); err == nil && p > 0 {
		cfg.HTTP.Port = p
	}
	cfg.HTTP.RequestBodyLimit = get("REQUEST_BODY_LIMIT")
	if cfg.HTTP.RequestBodyLimit == "" {
		cfg.HTTP.RequestBodyLimit = DefaultRequestBodyLimit
	}
	limit, err := ParseByteSize(cfg.HTTP.RequestBodyLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: REQUEST_BODY_LIMIT: %v", domain.ErrConfig, err)
	}
	cfg.HTTP.RequestBodyLimitBytes = limit

	cfg.AI.Model = get("AI_MODEL")
	if cfg.AI.Model == "" {
		switch cfg.AI.Provider {
		case ProviderGemini:
			cfg.AI.Model = "gemini-2.0-flash"
		case ProviderNoop:
			cfg.AI.Model = "noop-ai-model"
		default:
			cfg.AI.Model = "gpt-4o"
		}
	}
	cfg.AI.FailurePolicy = strings.ToLower(get("AI_FAILURE_POLICY"))
	switch cfg.AI.FailurePolicy {
	case "":
		cfg.AI.FailurePolicy = PolicyFail
	case PolicyFail, PolicyDegrade:
	default:
		return nil, fmt.Errorf("%w: AI_FAILURE_POLICY must be %q or %q", domain.ErrConfig, PolicyFail, PolicyDegrade)
	}
	cfg.AI.ConcurrentLimit = 8
	if n, err := strconv.Atoi(get("AI_CONCURRENT_LIMIT")); err == nil && n > 0 {
		cfg.AI.ConcurrentLimit = n
	}

	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"AI_TIMEOUT", &cfg.AI.Timeout, 120 * time.Second},
		{"FETCH_TIMEOUT", &cfg.Fetch.Timeout, 15 * time.Second},
		{"DELIVERY_TIMEOUT", &cfg.Bitrix.Timeout, 10 * time.Second},
	}
	for _, d := range durations {
		*d.dst = d.def
		if v := get(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil || parsed <= 0 {
				return nil, fmt.Errorf("%w: %s: invalid duration %q", domain.ErrConfig, d.key, v)
			}
			*d.dst = parsed
		}
	}

	cfg.Fetch.MaxBytes = DefaultFetchMaxBytes
	if v := get("FETCH_MAX_BYTES"); v != "" {
		n, err := ParseByteSize(v)
		if err != nil {
			return nil, fmt.Errorf("%w: FETCH_MAX_BYTES: %v", domain.ErrConfig, err)
		}
		cfg.Fetch.MaxBytes = n
	}

	cfg.Log.Level = strings.ToLower(get("LOG_LEVEL"))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(get("LOG_FORMAT"))
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Log.Sampling = parseBool(get("LOG_SAMPLING"))

	cfg.Lang = strings.ToLower(get("APP_LANG"))
	if cfg.Lang == "" {
		cfg.Lang = "ru"
	}
	cfg.Runtime.Dev = parseBool(get("DEV"))
	return &cfg, nil
}

// ParseAllowedChatIDs splits a comma-separated list into a trimmed,
// deduplicated allowlist without blanks.
func ParseAllowedChatIDs(value string) model.Allowlist {
	return model.NewAllowlist(strings.Split(value, ",")...)
}

var byteUnits = map[string]float64{
	"":   1,
	"b":  1,
	"kb": 1 << 10,
	"mb": 1 << 20,
	"gb": 1 << 30,
}

// ParseByteSize parses sizes such as "20mb", "512kb", "1.5 MB" or "1048576".
// Units are binary (1kb = 1024 bytes).
func ParseByteSize(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	i := 0
	for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	num, unit := s[:i], strings.TrimSpace(s[i:])
	if num == "" {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	mult, ok := byteUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q", unit)
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	n := math.Floor(f * mult)
	if n <= 0 || n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return int64(n), nil
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
