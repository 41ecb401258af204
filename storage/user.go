package storage

import (
	"msgagent/models"
)

// DemoUserID owns everything in the demo data set
const DemoUserID = "demo_user"

// DefaultUserProfile is returned for users without a stored profile
func DefaultUserProfile() models.UserProfile {
	return models.UserProfile{
		Name:        "Demo 用戶",
		ToneStyle:   models.StyleFormal,
		ReplyLength: models.LengthShort,
		Language:    models.DefaultLanguage,
	}
}

// UserProfile returns the stored profile or the default one
func (s *DemoStore) UserProfile(userID string) (models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := map[string]models.UserProfile{}
	if err := s.load(profilesFile, &profiles); err != nil {
		return models.UserProfile{}, err
	}
	if p, ok := profiles[userID]; ok {
		return p, nil
	}
	return DefaultUserProfile(), nil
}

// SetUserProfile creates or replaces a profile
func (s *DemoStore) SetUserProfile(userID string, p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := map[string]models.UserProfile{}
	if err := s.load(profilesFile, &profiles); err != nil {
		return err
	}
	p.UpdatedAt = s.now()
	profiles[userID] = p
	return s.save(profilesFile, profiles)
}
