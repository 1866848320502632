// Package localization provides functionality for internationalization (i18n).
// It loads translation strings from JSON files and renders them as text templates.
package localization

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"
)

//go:embed locales/*.json
var embedded embed.FS

// FallbackLanguage is consulted when a key is missing in the requested language.
const FallbackLanguage = "en"

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	templates    map[string]*template.Template
	mu           sync.RWMutex
}

// Default returns a Localizer over the built-in catalog.
func Default() (*Localizer, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return NewLocalizer(sub)
}

// NewLocalizer loads every "<lang>.json" file at the root of fsys.
func NewLocalizer(fsys fs.FS) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
		templates:    make(map[string]*template.Template),
	}

	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || path.Ext(file.Name()) != ".json" {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := fs.ReadFile(fsys, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	return l, nil
}

// Languages lists the loaded language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		out = append(out, lang)
	}
	return out
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it returns the key itself as a fallback.
func (l *Localizer) GetString(lang, key string) string {
	if value, _, ok := l.lookup(lang, key); ok {
		return value
	}
	return key
}

func (l *Localizer) lookup(lang, key string) (string, string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value, lang, true
		}
	}
	if lang != FallbackLanguage {
		if enTranslations, ok := l.translations[FallbackLanguage]; ok {
			if value, ok := enTranslations[key]; ok {
				return value, FallbackLanguage, true
			}
		}
	}
	return "", "", false
}

// Render executes the translation for key as a text/template with data.
// Parsed templates are cached per language and key.
func (l *Localizer) Render(lang, key string, data any) (string, error) {
	src, resolved, ok := l.lookup(lang, key)
	if !ok {
		return "", fmt.Errorf("missing translation %q", key)
	}

	cacheKey := resolved + ":" + key
	l.mu.RLock()
	tmpl, cached := l.templates[cacheKey]
	l.mu.RUnlock()

	if !cached {
		parsed, err := template.New(key).Option("missingkey=error").Parse(src)
		if err != nil {
			return "", fmt.Errorf("parse translation %q: %w", key, err)
		}
		l.mu.Lock()
		l.templates[cacheKey] = parsed
		l.mu.Unlock()
		tmpl = parsed
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render translation %q: %w", key, err)
	}
	return buf.String(), nil
}
