package organizer

import (
	"strings"

	"msgagent/models"
)

// KeywordRule maps a set of keywords onto a category.
type KeywordRule struct {
	Category models.Category
	Keywords []string
}

// DefaultKeywordRules are evaluated in order; the first rule with a matching
// keyword wins.
var DefaultKeywordRules = []KeywordRule{
	{Category: models.CategoryWork, Keywords: []string{"會議", "工作", "專案", "客戶", "報告", "截止", "任務"}},
	{Category: models.CategoryFamily, Keywords: []string{"媽", "爸", "爸爸", "媽媽", "家人", "回家", "家裡"}},
	{Category: models.CategoryAdvertisement, Keywords: []string{"促銷", "優惠", "購買", "限時", "特價", "廣告", "推廣"}},
}

// Classifier assigns a category by keyword precedence.
type Classifier struct {
	rules    []KeywordRule
	fallback models.Category
}

// NewClassifier builds a classifier over rules, defaulting to Friend.
func NewClassifier(rules []KeywordRule) *Classifier {
	return &Classifier{rules: rules, fallback: models.CategoryFriend}
}

// DefaultClassifier uses DefaultKeywordRules.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultKeywordRules)
}

// Classify returns the first category whose keyword appears in text.
func (c *Classifier) Classify(text string) Decision[models.Category] {
	return guard(c.fallback, func() (models.Category, error) {
		for _, rule := range c.rules {
			for _, kw := range rule.Keywords {
				if strings.Contains(text, kw) {
					return rule.Category, nil
				}
			}
		}
		return c.fallback, nil
	})
}
