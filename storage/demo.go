package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"msgagent/models"
)

const (
	messagesFile = "demo_messages"
	contactsFile = "contacts"
	profilesFile = "user_profiles"
	historyFile  = "processing_history"
)

type messagesDoc struct {
	Messages []models.DemoMessage `json:"messages"`
}

type historyDoc struct {
	Logs []models.ProcessingLog `json:"logs"`
}

// DemoStore keeps the demo data set as JSON documents under one directory.
// No database is needed, which makes it the default for local runs.
type DemoStore struct {
	dataDir string
	mu      sync.RWMutex
	now     func() time.Time
}

// NewDemoStore creates the data directory and any missing documents
func NewDemoStore(dataDir string) (*DemoStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &DemoStore{dataDir: dataDir, now: time.Now}

	defaults := map[string]any{
		messagesFile: messagesDoc{Messages: []models.DemoMessage{}},
		contactsFile: map[string]models.ContactSettings{},
		profilesFile: map[string]models.UserProfile{DemoUserID: DefaultUserProfile()},
		historyFile:  historyDoc{Logs: []models.ProcessingLog{}},
	}
	for name, doc := range defaults {
		if _, err := os.Stat(s.path(name)); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := s.save(name, doc); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// DataDir returns the directory holding the documents
func (s *DemoStore) DataDir() string {
	return s.dataDir
}

func (s *DemoStore) path(name string) string {
	return filepath.Join(s.dataDir, name+".json")
}

// load decodes a document. A missing file leaves v untouched.
func (s *DemoStore) load(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// save writes through a temp file so readers never see a partial document
func (s *DemoStore) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return os.Rename(tmp, s.path(name))
}
