package storage

import (
	"context"

	"msgagent/models"
)

// Contacts returns every stored contact keyed by sender id
func (s *DemoStore) Contacts() (map[string]models.ContactSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contacts := map[string]models.ContactSettings{}
	if err := s.load(contactsFile, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// Contact returns the sender's settings, or a neutral record named after
// the sender when none is stored
func (s *DemoStore) Contact(sender string) (models.ContactSettings, error) {
	contacts, err := s.Contacts()
	if err != nil {
		return models.ContactSettings{}, err
	}
	if c, ok := contacts[sender]; ok {
		return c, nil
	}
	return models.ContactSettings{Name: sender, CategoryHint: models.CategoryFriend}, nil
}

// ContactSettings lets the demo store act as the pipeline's contact lookup.
// Demo contacts are shared by all owners.
func (s *DemoStore) ContactSettings(_ context.Context, _, sender string) (models.ContactSettings, error) {
	contacts, err := s.Contacts()
	if err != nil {
		return models.ContactSettings{}, err
	}
	return contacts[sender], nil
}

// SetContact creates or replaces a contact
func (s *DemoStore) SetContact(sender string, c models.ContactSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts := map[string]models.ContactSettings{}
	if err := s.load(contactsFile, &contacts); err != nil {
		return err
	}
	if c.Name == "" {
		c.Name = sender
	}
	c.UpdatedAt = s.now()
	contacts[sender] = c
	return s.save(contactsFile, contacts)
}
