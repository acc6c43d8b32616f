// internal/i18n/i18n.go
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const DefaultLang = "en"

var supportedLangs = []string{"en", "fil"}

type translator struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

var instance = &translator{
	messages: make(map[string]map[string]string),
}

// Init loads locale JSON files from dir. Missing locales fall back to English.
func Init(dir string) error {
	for _, lang := range supportedLangs {
		path := filepath.Join(dir, lang+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			if lang == DefaultLang {
				return fmt.Errorf("load locale %s: %w", lang, err)
			}
			logrus.WithField("locale", lang).Warn("Locale file missing, falling back to English")
			continue
		}

		var msgs map[string]string
		if err := json.Unmarshal(data, &msgs); err != nil {
			return fmt.Errorf("parse locale %s: %w", lang, err)
		}

		instance.mu.Lock()
		instance.messages[lang] = msgs
		instance.mu.Unlock()
	}
	return nil
}

// T translates key for lang, applying fmt args when present. Falls back to
// the English message, then to the raw key.
func T(lang, key string, args ...interface{}) string {
	instance.mu.RLock()
	defer instance.mu.RUnlock()

	if msgs, ok := instance.messages[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return format(msg, args...)
		}
	}
	if msgs, ok := instance.messages[DefaultLang]; ok {
		if msg, ok := msgs[key]; ok {
			return format(msg, args...)
		}
	}
	return key
}

func format(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// NormalizeLang maps an Accept-Language header value to a supported locale.
func NormalizeLang(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	if header == "" {
		return DefaultLang
	}
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		base := strings.SplitN(tag, "-", 2)[0]
		for _, lang := range supportedLangs {
			if base == lang {
				return lang
			}
		}
		// Tagalog speakers commonly send tl.
		if base == "tl" {
			return "fil"
		}
	}
	return DefaultLang
}
