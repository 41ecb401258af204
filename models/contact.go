package models

import "time"

// ContactSettings holds the per (owner, sender) adjustments applied to priority.
type ContactSettings struct {
	Name          string    `json:"name,omitempty"`
	PriorityBoost int       `json:"priority_boost"`
	IsStarred     bool      `json:"is_starred"`
	CategoryHint  Category  `json:"category_hint,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// MinBoost and MaxBoost bound the nominal priority boost range.
const (
	MinBoost = -2
	MaxBoost = 2
)
