package organizer

import (
	"errors"
	"strings"

	"msgagent/models"
)

// Phrasebook supplies reply wording for a language. A false result makes
// the drafter use its built-in Traditional Chinese wording.
type Phrasebook interface {
	Phrase(lang, id string) (string, bool)
}

// Phrase ids understood by the drafter.
const (
	PhraseQuestionMinimal = "draft_question_minimal"
	PhraseQuestionCasual  = "draft_question_casual"
	PhraseQuestionDefault = "draft_question_default"
	PhraseThanksMinimal   = "draft_thanks_minimal"
	PhraseThanksDefault   = "draft_thanks_default"
	PhraseMeeting         = "draft_meeting"
	PhraseGenericMinimal  = "draft_generic_minimal"
	PhraseGenericCasual   = "draft_generic_casual"
	PhraseGenericDefault  = "draft_generic_default"
)

var builtinPhrases = map[string]string{
	PhraseQuestionMinimal: "好",
	PhraseQuestionCasual:  "可以啊！",
	PhraseQuestionDefault: "好的，沒問題。",
	PhraseThanksMinimal:   "不客氣",
	PhraseThanksDefault:   "不用客氣！",
	PhraseMeeting:         "收到，我會準時參加。",
	PhraseGenericMinimal:  "收到",
	PhraseGenericCasual:   "了解！",
	PhraseGenericDefault:  "好的，我知道了。",
}

// FallbackDraft is returned when drafting fails; it never carries a signature.
const FallbackDraft = "收到"

var (
	questionMarkers = []string{"?", "？", "嗎", "吗"}
	thanksMarkers   = []string{"謝謝", "感謝", "谢谢", "感谢", "thank"}
	meetingMarkers  = []string{"會議", "開會", "会议", "开会", "meeting"}
)

// Intent is the branch of the reply cascade a message fell into.
type Intent string

const (
	IntentQuestion Intent = "question"
	IntentThanks   Intent = "thanks"
	IntentMeeting  Intent = "meeting"
	IntentGeneric  Intent = "generic"
)

// ReplyDrafter produces a short templated reply.
type ReplyDrafter struct {
	phrases Phrasebook
}

// NewReplyDrafter builds a drafter. phrases may be nil.
func NewReplyDrafter(phrases Phrasebook) *ReplyDrafter {
	return &ReplyDrafter{phrases: phrases}
}

// DetectIntent runs the question, thanks, meeting cascade over text.
func DetectIntent(text string) Intent {
	lower := strings.ToLower(text)
	switch {
	case containsAny(text, questionMarkers):
		return IntentQuestion
	case containsAny(lower, thanksMarkers):
		return IntentThanks
	case containsAny(lower, meetingMarkers):
		return IntentMeeting
	default:
		return IntentGeneric
	}
}

// Draft picks the reply for text in tone's style and appends the signature.
func (d *ReplyDrafter) Draft(text string, tone models.ToneProfile) Decision[string] {
	return guard(FallbackDraft, func() (string, error) {
		id := phraseFor(DetectIntent(text), tone.Style)
		reply := d.phrase(tone.Language, id)
		if reply == "" {
			return "", errors.New("no wording for " + id)
		}
		if sig := strings.TrimSpace(tone.Signature); sig != "" {
			reply += " " + sig
		}
		return reply, nil
	})
}

func phraseFor(intent Intent, style models.Style) string {
	switch intent {
	case IntentQuestion:
		switch style {
		case models.StyleMinimal:
			return PhraseQuestionMinimal
		case models.StyleCasual:
			return PhraseQuestionCasual
		}
		return PhraseQuestionDefault
	case IntentThanks:
		if style == models.StyleMinimal {
			return PhraseThanksMinimal
		}
		return PhraseThanksDefault
	case IntentMeeting:
		return PhraseMeeting
	}
	switch style {
	case models.StyleMinimal:
		return PhraseGenericMinimal
	case models.StyleCasual:
		return PhraseGenericCasual
	}
	return PhraseGenericDefault
}

func (d *ReplyDrafter) phrase(lang, id string) string {
	if d.phrases != nil && lang != "" {
		if p, ok := d.phrases.Phrase(lang, id); ok {
			return p
		}
	}
	return builtinPhrases[id]
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
