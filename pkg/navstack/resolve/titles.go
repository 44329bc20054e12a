package resolve

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// Titles looks up localized destination titles. Message files may be TOML or
// YAML and follow the go-i18n naming scheme (active.es.toml, en.yaml).
type Titles struct {
	mu       sync.Mutex
	bundle   *i18n.Bundle
	fallback language.Tag
	cache    *localizerCache
}

// NewTitles creates an empty catalog. Lookups in languages with no matching
// messages fall back to fallback.
func NewTitles(fallback language.Tag) *Titles {
	bundle := i18n.NewBundle(fallback)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)

	return &Titles{
		bundle:   bundle,
		fallback: fallback,
		cache:    newLocalizerCache(constants.DefaultLocalizerCacheSize),
	}
}

// AddMessages adds messages for lang.
func (t *Titles) AddMessages(lang language.Tag, messages ...*i18n.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bundle.AddMessages(lang, messages...)
}

// LoadMessageFile reads a message file from disk. The language and format
// come from the file name.
func (t *Titles) LoadMessageFile(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.bundle.LoadMessageFile(path); err != nil {
		return fmt.Errorf("resolve: load %s: %w", path, err)
	}
	return nil
}

// ParseMessages adds messages from data, using name the way LoadMessageFile
// uses a path. Useful with embedded files.
func (t *Titles) ParseMessages(data []byte, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.bundle.ParseMessageFileBytes(data, name); err != nil {
		return fmt.Errorf("resolve: parse %s: %w", name, err)
	}
	return nil
}

// Languages returns the languages that have messages, fallback included.
func (t *Titles) Languages() []language.Tag {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bundle.LanguageTags()
}

// Localize renders messageID in lang with data as template data. Messages
// missing from lang come from the fallback language. An unparseable lang is
// treated as the fallback language.
func (t *Titles) Localize(lang, messageID string, data any) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	text, err := t.localizer(lang).Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	var notFound *i18n.MessageNotFoundErr
	if errors.As(err, &notFound) && text != "" {
		internal.GetInternalLogger().Debug("message missing, using fallback",
			"lang", lang, "message", messageID, "fallback", t.fallback.String())
		return text, nil
	}
	return text, err
}

func (t *Titles) localizer(lang string) *i18n.Localizer {
	tag, err := language.Parse(lang)
	if err != nil {
		internal.GetInternalLogger().Debug("unparseable language, using fallback",
			"lang", lang, "fallback", t.fallback.String(), "error", err)
		tag = t.fallback
	}

	name := tag.String()
	if l := t.cache.get(name); l != nil {
		return l
	}
	l := i18n.NewLocalizer(t.bundle, name, t.fallback.String())
	t.cache.set(name, l)
	return l
}
