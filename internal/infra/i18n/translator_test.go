//go:build !integration

package i18n

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	contentBytes := []byte("greeting: Привет\nwelcome_user: Привет, %s")
	translator, err := newTranslatorFromBytes(contentBytes)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		if got := translator.T("greeting"); got != "Привет" {
			t.Errorf("wanted 'Привет', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got := translator.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("wanted 'nonexistent_key', got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		if got := translator.T("welcome_user", "Иван"); got != "Привет, Иван" {
			t.Errorf("wanted 'Привет, Иван', got '%s'", got)
		}
	})
}

func TestEmbeddedLocales(t *testing.T) {
	for _, lang := range []string{"ru", "en"} {
		t.Run(lang, func(t *testing.T) {
			tr, err := NewTranslator(LocalesFS, lang)
			if err != nil {
				t.Fatalf("NewTranslator(%s): %v", lang, err)
			}
			if tr.SystemPrompt() == "" {
				t.Fatal("system prompt should not be empty")
			}
		})
	}

	tr, err := NewTranslator(LocalesFS, "ru")
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.T(KeyEmptyAIResponse); got != "Пустой ответ от AI." {
		t.Errorf("fallback text: got %q", got)
	}
	if got := tr.T(KeyAnalysisError, "boom"); got != "Ошибка анализа: boom" {
		t.Errorf("error notice: got %q", got)
	}
	if !strings.HasPrefix(tr.SystemPrompt(), "Ты — юрист-аналитик") {
		t.Errorf("system prompt: got %q", tr.SystemPrompt())
	}
}

func TestNewTranslator_MissingKey(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/xx.yaml":       {Data: []byte("prompt.task: \"x\"\n")},
		"locales/system-xx.txt": {Data: []byte("sys")},
	}
	if _, err := NewTranslator(fsys, "xx"); err == nil {
		t.Fatal("expected error for incomplete locale")
	}
}

func TestNewTranslator_UnknownLanguage(t *testing.T) {
	if _, err := NewTranslator(LocalesFS, "de"); err == nil {
		t.Fatal("expected error for unknown language")
	}
}
