package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Keys used by the relay. Every locale file must define them.
const (
	KeyPromptTask       = "prompt.task"
	KeyPromptFileNotice = "prompt.file_notice"
	KeyNotSpecified     = "prompt.not_specified"
	KeyEmptyAIResponse  = "ai.empty_response"
	KeyAIUnavailable    = "ai.unavailable"
	KeyAnalysisError    = "chat.analysis_error"
	KeyRootStatus       = "http.root_status"
	KeyLegalGetNotAllow = "http.legal_method_not_allowed"
)

var requiredKeys = []string{
	KeyPromptTask, KeyPromptFileNotice, KeyNotSpecified, KeyEmptyAIResponse,
	KeyAIUnavailable, KeyAnalysisError, KeyRootStatus, KeyLegalGetNotAllow,
}

type Translator struct {
	translations map[string]string
	systemPrompt string
}

// NewTranslator loads locales/<lang>.yaml and the system instruction from
// locales/system-<lang>.txt out of fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	for _, k := range requiredKeys {
		if _, ok := t.translations[k]; !ok {
			return nil, fmt.Errorf("translation file %s: missing key %q", filePath, k)
		}
	}

	systemPath := path.Join("locales", fmt.Sprintf("system-%s.txt", langCode))
	sys, err := fs.ReadFile(fsys, systemPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read system prompt %s: %w", systemPath, err)
	}
	t.systemPrompt = strings.TrimSpace(string(sys))
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the translation for key, formatted with args; unknown keys are returned as is.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// SystemPrompt is the legal-analyst persona instruction.
func (t *Translator) SystemPrompt() string {
	return t.systemPrompt
}
