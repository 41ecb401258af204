package storage

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"msgagent/models"
)

//go:embed seed/samples.yaml
var sampleData []byte

type seedMessage struct {
	Text       string `yaml:"text"`
	SenderID   string `yaml:"sender_id"`
	SenderName string `yaml:"sender_name"`
	Age        string `yaml:"age"`
}

type seedContact struct {
	Name          string `yaml:"name"`
	PriorityBoost int    `yaml:"priority_boost"`
	IsStarred     bool   `yaml:"is_starred"`
	CategoryHint  string `yaml:"category_hint"`
}

// SeedData is the decoded sample data set.
type SeedData struct {
	Messages []seedMessage                 `yaml:"messages"`
	Contacts map[string]seedContact        `yaml:"contacts"`
	Profiles map[string]models.UserProfile `yaml:"profiles"`
}

// LoadSeed decodes a seed document. A nil src loads the embedded samples.
func LoadSeed(src []byte) (*SeedData, error) {
	if src == nil {
		src = sampleData
	}
	var data SeedData
	if err := yaml.Unmarshal(src, &data); err != nil {
		return nil, fmt.Errorf("decode seed data: %w", err)
	}
	return &data, nil
}

// Seed replaces the demo messages, contacts and profiles with data.
// Processing history is kept.
func (s *DemoStore) Seed(data *SeedData) error {
	now := s.now()

	messages := make([]models.DemoMessage, 0, len(data.Messages))
	for i, m := range data.Messages {
		var age time.Duration
		if m.Age != "" {
			d, err := time.ParseDuration(m.Age)
			if err != nil {
				return fmt.Errorf("seed message %d: %w", i+1, err)
			}
			age = d
		}
		messages = append(messages, models.DemoMessage{
			ID:         i + 1,
			Text:       m.Text,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Timestamp:  now.Add(-age).Format(time.RFC3339),
		})
	}
	if err := s.ReplaceMessages(messages); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contacts := make(map[string]models.ContactSettings, len(data.Contacts))
	for sender, c := range data.Contacts {
		contacts[sender] = models.ContactSettings{
			Name:          c.Name,
			PriorityBoost: c.PriorityBoost,
			IsStarred:     c.IsStarred,
			CategoryHint:  models.Category(c.CategoryHint),
			UpdatedAt:     now,
		}
	}
	if err := s.save(contactsFile, contacts); err != nil {
		return err
	}

	profiles := make(map[string]models.UserProfile, len(data.Profiles))
	for id, p := range data.Profiles {
		p.UpdatedAt = now
		profiles[id] = p
	}
	return s.save(profilesFile, profiles)
}
