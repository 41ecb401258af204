package organizer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/models"
	"msgagent/organizer"
)

func TestSortPriorityDominates(t *testing.T) {
	s := organizer.NewThreadSorter()
	d := s.Sort([]models.ConversationThread{
		{ID: "A", Priority: 2, LastMessageAt: "2024-01-02T10:00:00Z", UnreadCount: 0},
		{ID: "B", Priority: 1, LastMessageAt: "2024-01-01T10:00:00Z", UnreadCount: 5},
	})
	assert.False(t, d.Degraded)
	assert.Equal(t, []string{"B", "A"}, d.Value)
}

func TestSortRecencyThenUnread(t *testing.T) {
	s := organizer.NewThreadSorter()
	d := s.Sort([]models.ConversationThread{
		{ID: "old", Priority: 3, LastMessageAt: "2024-01-01T09:00:00Z", UnreadCount: 9},
		{ID: "new-few", Priority: 3, LastMessageAt: "2024-01-01T10:00:00Z", UnreadCount: 1},
		{ID: "new-many", Priority: 3, LastMessageAt: "2024-01-01T10:00:00Z", UnreadCount: 4},
	})
	assert.Equal(t, []string{"new-many", "new-few", "old"}, d.Value)
}

func TestSortComparesInstants(t *testing.T) {
	s := organizer.NewThreadSorter()
	d := s.Sort([]models.ConversationThread{
		// 02:00Z
		{ID: "taipei", Priority: 2, LastMessageAt: "2024-01-01T10:00:00+08:00"},
		{ID: "utc", Priority: 2, LastMessageAt: "2024-01-01T03:00:00Z"},
		{ID: "fraction", Priority: 2, LastMessageAt: "2024-01-01T02:30:00.123456"},
	})
	require.False(t, d.Degraded)
	assert.Equal(t, []string{"utc", "fraction", "taipei"}, d.Value)
}

func TestSortDefaults(t *testing.T) {
	s := organizer.NewThreadSorter()
	d := s.Sort([]models.ConversationThread{
		{ID: "no-priority", LastMessageAt: "2024-01-01T00:00:00Z"},
		{ID: "urgent", Priority: 2},
		{Priority: 3, LastMessageAt: "2025-01-01T00:00:00Z"},
	})
	require.False(t, d.Degraded)
	assert.Equal(t, []string{"urgent", "thread_2", "no-priority"}, d.Value)
}

func TestSortStable(t *testing.T) {
	s := organizer.NewThreadSorter()
	threads := []models.ConversationThread{
		{ID: "x", Priority: 1, LastMessageAt: "2024-01-01T00:00:00Z"},
		{ID: "y", Priority: 1, LastMessageAt: "2024-01-01T00:00:00Z"},
		{ID: "z", Priority: 1, LastMessageAt: "2024-01-01T00:00:00Z"},
	}
	assert.Equal(t, []string{"x", "y", "z"}, s.Sort(threads).Value)
}

func TestSortUnparsableKeepsInputOrder(t *testing.T) {
	s := organizer.NewThreadSorter()
	d := s.Sort([]models.ConversationThread{
		{ID: "low", Priority: 5, LastMessageAt: "2024-01-01T00:00:00Z"},
		{ID: "bad", Priority: 1, LastMessageAt: "yesterday"},
		{ID: "high", Priority: 1, LastMessageAt: "2024-01-01T00:00:00Z"},
	})
	assert.True(t, d.Degraded)
	assert.Error(t, d.Err)
	assert.Equal(t, []string{"low", "bad", "high"}, d.Value)
}

func TestSortEmpty(t *testing.T) {
	d := organizer.NewThreadSorter().Sort(nil)
	assert.False(t, d.Degraded)
	assert.Empty(t, d.Value)
}

func TestParseTimestamp(t *testing.T) {
	epoch, err := organizer.ParseTimestamp("")
	require.NoError(t, err)
	assert.True(t, epoch.Equal(time.Unix(0, 0)))

	for _, s := range []string{
		"2024-03-01T12:00:00Z",
		"2024-03-01T12:00:00.5Z",
		"2024-03-01T12:00:00+09:00",
		"2024-03-01T12:00:00",
		"2024-03-01T12:00:00.123456",
		"2024-03-01 12:00:00",
	} {
		_, err := organizer.ParseTimestamp(s)
		assert.NoError(t, err, s)
	}

	_, err = organizer.ParseTimestamp("20240301")
	assert.Error(t, err)
}
