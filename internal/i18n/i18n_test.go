package i18n

import (
	"sort"
	"testing"
)

// TestI18nCompleteness verifies that all language profiles contain all message keys
func TestI18nCompleteness(t *testing.T) {
	languages := GetSupportedLanguages()
	if len(languages) == 0 {
		t.Fatal("No supported languages found")
	}

	referenceMessages := getMessages(DefaultLanguage)
	if len(referenceMessages) == 0 {
		t.Fatal("No reference messages found in default language")
	}

	var referenceKeys []string
	for key := range referenceMessages {
		referenceKeys = append(referenceKeys, key)
	}
	sort.Strings(referenceKeys)

	for _, lang := range languages {
		t.Run("Language_"+lang, func(t *testing.T) {
			messages := getMessages(lang)

			for _, key := range referenceKeys {
				if _, exists := messages[key]; !exists {
					t.Errorf("Language %q is missing key %q", lang, key)
				}
			}

			for key := range messages {
				if _, exists := referenceMessages[key]; !exists {
					t.Errorf("Language %q has extra key %q not present in %s", lang, key, DefaultLanguage)
				}
			}
		})
	}
}

func TestTranslationFallback(t *testing.T) {
	l := NewLocalizer("xx")
	if got := l.T("error.not_found"); got != englishMessages["error.not_found"] {
		t.Errorf("unknown language should fall back to English, got %q", got)
	}

	if got := l.T("no.such.key"); got != "no.such.key" {
		t.Errorf("unknown key should echo the key, got %q", got)
	}
}

func TestTranslationFormatting(t *testing.T) {
	l := NewLocalizer(DefaultLanguage)
	got := l.T("delivery.caption", "https://song.link/y/abc")
	want := "_[song\\.link](https://song.link/y/abc)_"
	if got != want {
		t.Errorf("T with args = %q, want %q", got, want)
	}
}
