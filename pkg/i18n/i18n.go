// Package i18n holds the user-facing message catalog (English and Korean).
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Locale represents a supported language
type Locale string

const (
	LocaleEn Locale = "en"
	LocaleKo Locale = "ko"
)

// supported 순서 = matcher 우선순위, 첫 번째가 기본값
var (
	supported = []Locale{LocaleEn, LocaleKo}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Korean})
)

// Bundle holds the message catalog of every locale
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[Locale]map[string]string
	fallback Locale
}

// NewBundle creates an empty bundle with the given fallback locale
func NewBundle(fallback Locale) *Bundle {
	return &Bundle{catalogs: make(map[Locale]map[string]string), fallback: fallback}
}

// NewDefaultBundle returns an English-fallback bundle loaded with the built-in messages
func NewDefaultBundle() *Bundle {
	b := NewBundle(LocaleEn)
	for locale, msgs := range DefaultMessages() {
		b.LoadMessages(locale, msgs)
	}
	return b
}

// LoadDir merges the catalogs found in dir on top of what the bundle holds.
// Files are named after the locale: en.json, ko.yaml, ko.yml.
func (b *Bundle) LoadDir(dir string) error {
	return b.LoadFS(os.DirFS(dir))
}

// LoadFS is LoadDir over any filesystem (embed.FS in tests and builds)
func (b *Bundle) LoadFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read i18n dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name(), err)
		}
		msgs := make(map[string]string)
		if ext == ".json" {
			err = json.Unmarshal(data, &msgs)
		} else {
			err = yaml.Unmarshal(data, &msgs)
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		b.LoadMessages(Locale(strings.TrimSuffix(e.Name(), ext)), msgs)
	}
	return nil
}

// LoadMessages merges messages into the locale's catalog
func (b *Bundle) LoadMessages(locale Locale, messages map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	catalog := b.catalogs[locale]
	if catalog == nil {
		catalog = make(map[string]string, len(messages))
		b.catalogs[locale] = catalog
	}
	for k, v := range messages {
		catalog[k] = v
	}
}

func (b *Bundle) lookup(locale Locale, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[locale][key]; ok {
		return msg, true
	}
	msg, ok := b.catalogs[b.fallback][key]
	return msg, ok
}

// T translates key for locale, falling back to the bundle's fallback locale.
// Unknown keys come back unchanged; args are applied with fmt.Sprintf.
func (b *Bundle) T(locale Locale, key string, args ...interface{}) string {
	msg, ok := b.lookup(locale, key)
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// ParseAcceptLanguage picks the supported locale that best matches an Accept-Language
// header (q-values honored). Anything unsupported resolves to English.
func ParseAcceptLanguage(header string) Locale {
	if strings.TrimSpace(header) == "" {
		return supported[0]
	}
	_, idx := language.MatchStrings(matcher, header)
	return supported[idx]
}
