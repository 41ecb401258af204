package models

// ConversationThread is the input record for thread ordering.
type ConversationThread struct {
	ID            string   `json:"id"`
	Priority      Priority `json:"priority"`
	LastMessageAt string   `json:"last_message_at"`
	UnreadCount   int      `json:"unread_count"`
	Participant   string   `json:"participant,omitempty"`
	MessageCount  int      `json:"message_count,omitempty"`
}
