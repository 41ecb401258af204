package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/models"
)

func TestBuildThreads(t *testing.T) {
	processed := func(p models.Priority) *models.OrganizeResult {
		return &models.OrganizeResult{Category: models.CategoryWork, Priority: p}
	}
	messages := []models.DemoMessage{
		{ID: 1, SenderID: "boss", SenderName: "老闆", Timestamp: "2024-03-01T09:00:00Z", Processed: true, ProcessingResult: processed(2)},
		{ID: 2, SenderID: "mom", SenderName: "媽媽", Timestamp: "2024-03-01T10:00:00Z"},
		{ID: 3, SenderID: "boss", SenderName: "老闆", Timestamp: "2024-03-01T11:00:00Z", Processed: true, ProcessingResult: processed(1)},
		{ID: 4, SenderID: "boss", SenderName: "老闆", Timestamp: "2024-03-01T08:00:00Z"},
		{ID: 5, Timestamp: "2024-03-01T12:00:00Z"},
	}

	threads := NewThreadBuilder().BuildThreads(messages)
	require.Len(t, threads, 3)

	boss := threads[0]
	assert.Equal(t, "boss", boss.ID)
	assert.Equal(t, "老闆", boss.Participant)
	assert.Equal(t, models.Priority(1), boss.Priority)
	assert.Equal(t, "2024-03-01T11:00:00Z", boss.LastMessageAt)
	assert.Equal(t, 1, boss.UnreadCount)
	assert.Equal(t, 3, boss.MessageCount)

	mom := threads[1]
	assert.Equal(t, models.PriorityDefault, mom.Priority)
	assert.Equal(t, 1, mom.UnreadCount)

	assert.Equal(t, "thread_2", threads[2].ID)
}

func TestBuildThreadsEmpty(t *testing.T) {
	assert.Empty(t, NewThreadBuilder().BuildThreads(nil))
}

func TestBuildThreadsNaiveTimestamps(t *testing.T) {
	messages := []models.DemoMessage{
		{ID: 1, SenderID: "s", Timestamp: "2024-01-15T08:00:00.123456"},
		{ID: 2, SenderID: "s", Timestamp: "2024-01-15T10:00:00.123456"},
		{ID: 3, SenderID: "s", Timestamp: "2024-01-15 09:00:00"},
	}

	threads := NewThreadBuilder().BuildThreads(messages)
	require.Len(t, threads, 1)
	assert.Equal(t, "2024-01-15T10:00:00.123456", threads[0].LastMessageAt)
}
