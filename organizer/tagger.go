package organizer

import (
	"strings"

	"msgagent/models"
)

// MaxTags caps the number of tags attached to a message.
const MaxTags = 5

// TagRule expands one keyword into tags.
type TagRule struct {
	Keyword string
	Tags    []string
}

// DefaultTagRules is the stock keyword table.
var DefaultTagRules = []TagRule{
	{Keyword: "會議", Tags: []string{"會議", "工作"}},
	{Keyword: "電影", Tags: []string{"電影", "娛樂"}},
	{Keyword: "吃飯", Tags: []string{"聚餐", "美食"}},
	{Keyword: "生日", Tags: []string{"生日", "慶祝"}},
	{Keyword: "旅行", Tags: []string{"旅遊", "出遊"}},
	{Keyword: "購物", Tags: []string{"購物", "消費"}},
	{Keyword: "運動", Tags: []string{"運動", "健身"}},
	{Keyword: "學習", Tags: []string{"學習", "教育"}},
	{Keyword: "醫院", Tags: []string{"健康", "醫療"}},
	{Keyword: "緊急", Tags: []string{"緊急", "重要"}},
}

// Tagger extracts descriptive tags from message text.
type Tagger struct {
	rules []TagRule
}

// NewTagger builds a tagger over rules.
func NewTagger(rules []TagRule) *Tagger {
	return &Tagger{rules: rules}
}

// DefaultTagger uses DefaultTagRules.
func DefaultTagger() *Tagger {
	return NewTagger(DefaultTagRules)
}

// Tag returns the deduplicated union of matching tags, at most MaxTags long,
// or the single sentinel tag when nothing matched.
func (t *Tagger) Tag(text string) Decision[[]string] {
	return guard([]string{models.SentinelTag}, func() ([]string, error) {
		seen := make(map[string]bool)
		var tags []string
		for _, rule := range t.rules {
			if !strings.Contains(text, rule.Keyword) {
				continue
			}
			for _, tag := range rule.Tags {
				if seen[tag] {
					continue
				}
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
		if len(tags) == 0 {
			return []string{models.SentinelTag}, nil
		}
		if len(tags) > MaxTags {
			tags = tags[:MaxTags]
		}
		return tags, nil
	})
}
