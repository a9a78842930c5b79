// Package i18n localizes API messages. Locale files live in locales/ and are
// embedded; extra files can be loaded from disk with Load.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/multierr"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init creates the bundle and loads the embedded locales. Safe to call more
// than once. A locale that fails to parse is reported, the others still load.
func Init() error {
	return initFrom(embedded, "locales")
}

func initFrom(fsys fs.FS, dir string) error {
	mu.Lock()
	defer mu.Unlock()

	bundle = goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read locales: %w", err)
	}
	var errs error
	for _, e := range entries {
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err == nil {
			_, err = bundle.ParseMessageFileBytes(data, e.Name())
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("locale %s: %w", e.Name(), err))
		}
	}
	return errs
}

// Load adds a locale file from disk, e.g. active.fr.json.
func Load(file string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		bundle = goi18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	}
	_, err := bundle.LoadMessageFile(file)
	return err
}

// Localize renders messageID in the best language for acceptLanguage. When the
// id is unknown the default message is rendered with the same template data.
func Localize(acceptLanguage, messageID, defaultMessage string, data map[string]interface{}) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()

	if b == nil || messageID == "" {
		return defaultMessage
	}

	loc := goi18n.NewLocalizer(b, acceptLanguage)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:      messageID,
		TemplateData:   data,
		DefaultMessage: &goi18n.Message{ID: messageID, Other: defaultMessage},
	})
	if msg != "" {
		return msg
	}
	if err != nil {
		return defaultMessage
	}
	return msg
}
