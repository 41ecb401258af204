package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes every tag from incoming message text
	StrictPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()
}

// StripHTML removes all HTML tags from content
func StripHTML(content string) string {
	return StrictPolicy.Sanitize(content)
}

// CleanMessageText strips markup, restores entities the policy escaped and
// collapses runs of blank lines. The result is truncated to maxRunes when
// maxRunes is positive; the second return value reports truncation.
func CleanMessageText(text string, maxRunes int) (string, bool) {
	text = html.UnescapeString(StripHTML(text))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	text = strings.TrimSpace(text)

	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		runes := []rune(text)
		return string(runes[:maxRunes]), true
	}
	return text, false
}
