package storage

import (
	"fmt"
	"time"

	"msgagent/models"
)

// Messages returns every demo message in stored order
func (s *DemoStore) Messages() ([]models.DemoMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc messagesDoc
	if err := s.load(messagesFile, &doc); err != nil {
		return nil, err
	}
	if doc.Messages == nil {
		doc.Messages = []models.DemoMessage{}
	}
	return doc.Messages, nil
}

// Unprocessed returns the messages not yet organized
func (s *DemoStore) Unprocessed() ([]models.DemoMessage, error) {
	all, err := s.Messages()
	if err != nil {
		return nil, err
	}
	pending := []models.DemoMessage{}
	for _, m := range all {
		if !m.Processed {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Message returns one message or ErrNotFound
func (s *DemoStore) Message(id int) (*models.DemoMessage, error) {
	all, err := s.Messages()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
}

// AddMessage appends a message with the next free id and returns it
func (s *DemoStore) AddMessage(text, senderID, senderName string) (*models.DemoMessage, error) {
	return s.AddMessageAt(text, senderID, senderName, s.now())
}

// AddMessageAt is AddMessage with an explicit timestamp, used by importers
func (s *DemoStore) AddMessageAt(text, senderID, senderName string, at time.Time) (*models.DemoMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc messagesDoc
	if err := s.load(messagesFile, &doc); err != nil {
		return nil, err
	}

	nextID := 1
	for _, m := range doc.Messages {
		if m.ID >= nextID {
			nextID = m.ID + 1
		}
	}

	msg := models.DemoMessage{
		ID:         nextID,
		Text:       text,
		SenderID:   senderID,
		SenderName: senderName,
		Timestamp:  at.Format(time.RFC3339),
	}
	doc.Messages = append(doc.Messages, msg)
	if err := s.save(messagesFile, doc); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkProcessed stores the organize result on a message
func (s *DemoStore) MarkProcessed(id int, result models.OrganizeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc messagesDoc
	if err := s.load(messagesFile, &doc); err != nil {
		return err
	}
	for i := range doc.Messages {
		if doc.Messages[i].ID != id {
			continue
		}
		now := s.now()
		doc.Messages[i].Processed = true
		doc.Messages[i].ProcessingResult = &result
		doc.Messages[i].ProcessedAt = &now
		return s.save(messagesFile, doc)
	}
	return fmt.Errorf("message %d: %w", id, ErrNotFound)
}

// ReplaceMessages overwrites the message document
func (s *DemoStore) ReplaceMessages(messages []models.DemoMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if messages == nil {
		messages = []models.DemoMessage{}
	}
	return s.save(messagesFile, messagesDoc{Messages: messages})
}
