package models

import "time"

// Category is one of the four fixed message classes.
type Category string

const (
	CategoryWork          Category = "工作"
	CategoryFriend        Category = "朋友"
	CategoryFamily        Category = "家人"
	CategoryAdvertisement Category = "廣告"
)

// Categories lists every valid category in classification precedence order.
var Categories = []Category{CategoryWork, CategoryFamily, CategoryAdvertisement, CategoryFriend}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryFriend, CategoryFamily, CategoryAdvertisement:
		return true
	}
	return false
}

// Priority is an urgency level, 1 being the most urgent.
type Priority int

const (
	PriorityHighest Priority = 1
	PriorityDefault Priority = 3
	PriorityLowest  Priority = 5
)

// Valid reports whether p is inside [1,5].
func (p Priority) Valid() bool {
	return p >= PriorityHighest && p <= PriorityLowest
}

// ClampPriority bounds any integer into the priority range.
func ClampPriority(n int) Priority {
	if n < int(PriorityHighest) {
		return PriorityHighest
	}
	if n > int(PriorityLowest) {
		return PriorityLowest
	}
	return Priority(n)
}

// SentinelTag is returned when no tag keyword matched.
const SentinelTag = "一般"

// ManualReviewTag marks results produced by a fallback path.
const ManualReviewTag = "需人工檢查"

// OrganizeResult is the decision pipeline output for one message.
type OrganizeResult struct {
	Category      Category `json:"category"`
	Tags          []string `json:"tags"`
	Priority      Priority `json:"priority"`
	ShouldArchive bool     `json:"should_archive"`
	Draft         *string  `json:"draft"`
}

// MessageRequest is the payload accepted by the organize endpoint.
type MessageRequest struct {
	Text        string      `json:"text"`
	SenderID    string      `json:"sender_id"`
	OwnerID     string      `json:"owner_id,omitempty"`
	ToneProfile ToneProfile `json:"tone_profile"`
}

// DemoMessage is a message held in the demo JSON store.
type DemoMessage struct {
	ID               int             `json:"id"`
	Text             string          `json:"text"`
	SenderID         string          `json:"sender_id"`
	SenderName       string          `json:"sender_name"`
	Timestamp        string          `json:"timestamp"`
	Processed        bool            `json:"processed"`
	ProcessingResult *OrganizeResult `json:"processing_result,omitempty"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`
}
