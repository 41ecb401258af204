package organizer

import "msgagent/models"

// ArchiveRule archives a category at or above Threshold when Enabled.
type ArchiveRule struct {
	Enabled   bool            `json:"enabled"`
	Threshold models.Priority `json:"priority_threshold"`
}

// DefaultArchiveRules keeps a disabled Work rule so it can be switched on
// without adding an entry.
var DefaultArchiveRules = map[models.Category]ArchiveRule{
	models.CategoryAdvertisement: {Enabled: true, Threshold: 4},
	models.CategoryWork:          {Enabled: false, Threshold: 5},
}

// ArchiveDecider applies per-category archive rules.
type ArchiveDecider struct {
	rules map[models.Category]ArchiveRule
}

// NewArchiveDecider builds a decider over rules.
func NewArchiveDecider(rules map[models.Category]ArchiveRule) *ArchiveDecider {
	return &ArchiveDecider{rules: rules}
}

// DefaultArchiveDecider uses DefaultArchiveRules.
func DefaultArchiveDecider() *ArchiveDecider {
	return NewArchiveDecider(DefaultArchiveRules)
}

// Rule returns the rule for category and whether one exists.
func (a *ArchiveDecider) Rule(category models.Category) (ArchiveRule, bool) {
	r, ok := a.rules[category]
	return r, ok
}

// ShouldArchive reports whether an enabled rule for category is met.
func (a *ArchiveDecider) ShouldArchive(category models.Category, priority models.Priority) Decision[bool] {
	return guard(false, func() (bool, error) {
		rule, ok := a.rules[category]
		if !ok || !rule.Enabled {
			return false, nil
		}
		return priority >= rule.Threshold, nil
	})
}
