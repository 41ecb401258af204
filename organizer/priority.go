package organizer

import "msgagent/models"

// DefaultPriorityTable is the base priority per category.
var DefaultPriorityTable = map[models.Category]models.Priority{
	models.CategoryWork:          2,
	models.CategoryFriend:        3,
	models.CategoryFamily:        1,
	models.CategoryAdvertisement: 5,
}

// PriorityScorer combines the category base with contact adjustments.
type PriorityScorer struct {
	table map[models.Category]models.Priority
}

// NewPriorityScorer builds a scorer over table.
func NewPriorityScorer(table map[models.Category]models.Priority) *PriorityScorer {
	return &PriorityScorer{table: table}
}

// DefaultPriorityScorer uses DefaultPriorityTable.
func DefaultPriorityScorer() *PriorityScorer {
	return NewPriorityScorer(DefaultPriorityTable)
}

// Base returns the table priority for category, or the default for
// categories without an entry.
func (s *PriorityScorer) Base(category models.Category) models.Priority {
	if p, ok := s.table[category]; ok {
		return p
	}
	return models.PriorityDefault
}

// Score adds the contact boost, lifts starred contacts one level and clamps
// into [1,5]. Boosts outside the nominal range are clamped, not rejected.
func (s *PriorityScorer) Score(category models.Category, contact models.ContactSettings) Decision[models.Priority] {
	return guard(models.PriorityDefault, func() (models.Priority, error) {
		adjusted := int(s.Base(category)) + contact.PriorityBoost
		if contact.IsStarred {
			adjusted = max(1, adjusted-1)
		}
		return models.ClampPriority(adjusted), nil
	})
}
