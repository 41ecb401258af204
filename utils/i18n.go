package utils

import (
	"embed"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

var (
	// Bundle is the global translation bundle
	Bundle *i18n.Bundle
	// Localizer is the default localizer
	Localizer *i18n.Localizer

	loadedTags []language.Tag
	defaultTag = language.MustParse("zh-TW")
)

// SupportedLanguages are the language codes a request may select
var SupportedLanguages = []string{"zh-tw", "zh-cn", "en", "ja", "ko"}

// InitI18n initializes the i18n system
func InitI18n() error {
	Bundle = i18n.NewBundle(defaultTag)
	Bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return err
	}
	loadedTags = loadedTags[:0]
	for _, entry := range entries {
		file, err := Bundle.LoadMessageFileFS(localeFS, "locales/"+entry.Name())
		if err != nil {
			Log.Warn("Failed to load locale %s: %v", entry.Name(), err)
			continue
		}
		loadedTags = append(loadedTags, file.Tag)
	}

	Localizer = i18n.NewLocalizer(Bundle, defaultTag.String())

	Log.Debug("i18n system initialized with %d locales", len(loadedTags))
	return nil
}

// NormalizeLanguage maps any BCP 47-ish code onto a supported lowercase code.
// The second result is false when lang was not recognized.
func NormalizeLanguage(lang string) (string, bool) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "zh-tw", false
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "zh-tw", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return "en", true
	case "ja":
		return "ja", true
	case "ko":
		return "ko", true
	case "zh":
		script, _ := tag.Script()
		region, _ := tag.Region()
		if script.String() == "Hans" || region.String() == "CN" || region.String() == "SG" {
			return "zh-cn", true
		}
		return "zh-tw", true
	}
	return "zh-tw", false
}

// GetLocalizer returns a localizer for the specified language
func GetLocalizer(lang string) *i18n.Localizer {
	if Bundle == nil {
		_ = InitI18n()
	}
	code, _ := NormalizeLanguage(lang)
	return i18n.NewLocalizer(Bundle, code)
}

// T translates a message ID
func T(localizer *i18n.Localizer, messageID string) string {
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID: messageID,
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// TWithData translates a message ID with template data
func TWithData(localizer *i18n.Localizer, messageID string, data map[string]interface{}) string {
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// Phrasebook serves localized reply phrases from the bundle. It only answers
// for languages that have their own locale file, so callers can fall back to
// their built-in wording instead of receiving another language's text.
type Phrasebook struct{}

// Phrase looks up id for lang
func (Phrasebook) Phrase(lang, id string) (string, bool) {
	if Bundle == nil {
		return "", false
	}
	code, ok := NormalizeLanguage(lang)
	if !ok {
		return "", false
	}
	want, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	found := false
	for _, tag := range loadedTags {
		if tag == want {
			found = true
			break
		}
	}
	if !found {
		return "", false
	}
	msg, err := i18n.NewLocalizer(Bundle, want.String()).Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil || msg == "" {
		return "", false
	}
	return msg, true
}
