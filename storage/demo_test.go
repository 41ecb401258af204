package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/models"
)

func newTestDemoStore(t *testing.T) *DemoStore {
	t.Helper()
	s, err := NewDemoStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNewDemoStoreCreatesDocuments(t *testing.T) {
	s := newTestDemoStore(t)
	for _, name := range []string{messagesFile, contactsFile, profilesFile, historyFile} {
		_, err := os.Stat(filepath.Join(s.DataDir(), name+".json"))
		assert.NoError(t, err, name)
	}

	msgs, err := s.Messages()
	require.NoError(t, err)
	assert.Empty(t, msgs)

	profile, err := s.UserProfile(DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, models.StyleFormal, profile.ToneStyle)
}

func TestDemoMessages(t *testing.T) {
	s := newTestDemoStore(t)

	first, err := s.AddMessage("明天開會", "boss_001", "王經理")
	require.NoError(t, err)
	second, err := s.AddMessage("週末吃飯嗎", "family_003", "媽媽")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)

	result := models.OrganizeResult{Category: models.CategoryWork, Tags: []string{"會議"}, Priority: 1}
	require.NoError(t, s.MarkProcessed(first.ID, result))
	assert.ErrorIs(t, s.MarkProcessed(42, result), ErrNotFound)

	got, err := s.Message(first.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)
	require.NotNil(t, got.ProcessingResult)
	assert.Equal(t, models.CategoryWork, got.ProcessingResult.Category)
	assert.NotNil(t, got.ProcessedAt)

	pending, err := s.Unprocessed()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	_, err = s.Message(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDemoContacts(t *testing.T) {
	s := newTestDemoStore(t)

	c, err := s.Contact("stranger")
	require.NoError(t, err)
	assert.Equal(t, "stranger", c.Name)
	assert.Equal(t, models.CategoryFriend, c.CategoryHint)

	require.NoError(t, s.SetContact("boss_001", models.ContactSettings{PriorityBoost: 1, IsStarred: true}))
	c, err = s.Contact("boss_001")
	require.NoError(t, err)
	assert.Equal(t, "boss_001", c.Name)
	assert.True(t, c.IsStarred)
	assert.False(t, c.UpdatedAt.IsZero())

	all, err := s.Contacts()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDemoStats(t *testing.T) {
	s := newTestDemoStore(t)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalMessages)
	assert.Zero(t, stats.AvgExecutionTime)

	m, err := s.AddMessage("促銷", "spam_004", "科技商城")
	require.NoError(t, err)
	_, err = s.AddMessage("hi", "friend_002", "小李")
	require.NoError(t, err)

	result := models.OrganizeResult{Category: models.CategoryAdvertisement, Priority: 5, ShouldArchive: true}
	require.NoError(t, s.MarkProcessed(m.ID, result))
	entry, err := s.AppendLog(models.ProcessingLog{MessageID: m.ID, Result: &result, ExecutionTime: 0.5})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	_, err = s.AppendLog(models.ProcessingLog{MessageID: m.ID, Result: &result, ExecutionTime: 1.5})
	require.NoError(t, err)

	stats, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalMessages)
	assert.Equal(t, 1, stats.ProcessedMessages)
	assert.Equal(t, 1, stats.UnprocessedMessages)
	assert.InDelta(t, 0.5, stats.ProcessingRate, 1e-9)
	assert.InDelta(t, 1.0, stats.AvgExecutionTime, 1e-9)
	assert.Equal(t, 2, stats.CategoryDistribution[models.CategoryAdvertisement])
}

func TestSeedSamples(t *testing.T) {
	s := newTestDemoStore(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	data, err := LoadSeed(nil)
	require.NoError(t, err)
	require.NoError(t, s.Seed(data))

	msgs, err := s.Messages()
	require.NoError(t, err)
	require.Len(t, msgs, 6)
	assert.Equal(t, "boss_001", msgs[0].SenderID)
	assert.Equal(t, "2025-03-01T10:00:00Z", msgs[0].Timestamp)

	boss, err := s.Contact("boss_001")
	require.NoError(t, err)
	assert.Equal(t, 1, boss.PriorityBoost)
	assert.Equal(t, models.CategoryWork, boss.CategoryHint)

	profile, err := s.UserProfile(DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "小王", profile.Name)
	assert.Equal(t, models.StyleCasual, profile.ToneStyle)
	assert.Equal(t, "- 小王", profile.Tone().Signature)
}

func TestLoadSeedRejectsBadAge(t *testing.T) {
	s := newTestDemoStore(t)
	data, err := LoadSeed([]byte("messages:\n  - text: hi\n    sender_id: a\n    age: soon\n"))
	require.NoError(t, err)
	assert.Error(t, s.Seed(data))
}
