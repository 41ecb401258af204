package models

import "time"

// Style is the voice used for drafted replies.
type Style string

const (
	StyleFormal       Style = "正式"
	StyleCasual       Style = "輕鬆"
	StyleMinimal      Style = "極簡"
	StyleDetailed     Style = "詳細"
	StyleHumorous     Style = "幽默"
	StyleProfessional Style = "專業"
)

// Styles lists every supported style.
var Styles = []Style{StyleFormal, StyleCasual, StyleMinimal, StyleDetailed, StyleHumorous, StyleProfessional}

// ReplyLength is a user's preferred reply size.
type ReplyLength string

const (
	LengthMinimal  ReplyLength = "極簡"
	LengthShort    ReplyLength = "簡短"
	LengthModerate ReplyLength = "適中"
	LengthDetailed ReplyLength = "詳細"
)

// ReplyLengths lists every supported reply length.
var ReplyLengths = []ReplyLength{LengthMinimal, LengthShort, LengthModerate, LengthDetailed}

// Languages lists the supported language codes.
var Languages = []string{"zh-tw", "zh-cn", "en", "ja", "ko"}

// DefaultLanguage is used when a profile carries no language.
const DefaultLanguage = "zh-tw"

// ToneProfile describes how a user sounds. It is treated as an immutable value.
type ToneProfile struct {
	Name        string      `json:"name"`
	Profile     string      `json:"profile"`
	Style       Style       `json:"style"`
	ReplyLength ReplyLength `json:"reply_length"`
	Signature   string      `json:"signature"`
	Language    string      `json:"language"`
}

// WithDefaults fills empty fields with the stock profile values.
func (t ToneProfile) WithDefaults() ToneProfile {
	if t.Style == "" {
		t.Style = StyleFormal
	}
	if t.ReplyLength == "" {
		t.ReplyLength = LengthShort
	}
	if t.Language == "" {
		t.Language = DefaultLanguage
	}
	return t
}

// UserProfile is the stored form of a user's tone preferences.
type UserProfile struct {
	Name        string      `json:"name" yaml:"name"`
	Profile     string      `json:"profile" yaml:"profile"`
	ToneStyle   Style       `json:"tone_style" yaml:"tone_style"`
	ReplyLength ReplyLength `json:"reply_length" yaml:"reply_length"`
	Signature   string      `json:"signature" yaml:"signature"`
	Language    string      `json:"language" yaml:"language"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty" yaml:"-"`
}

// Tone converts the stored profile into a ToneProfile.
func (u UserProfile) Tone() ToneProfile {
	return ToneProfile{
		Name:        u.Name,
		Profile:     u.Profile,
		Style:       u.ToneStyle,
		ReplyLength: u.ReplyLength,
		Signature:   u.Signature,
		Language:    u.Language,
	}.WithDefaults()
}
