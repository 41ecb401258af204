package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/models"
)

func newTestSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRebind(t *testing.T) {
	s := &SQLStore{dialect: dialectPostgres}
	assert.Equal(t, "a = $1 AND b = $2", s.rebind("a = ? AND b = ?"))

	s.dialect = dialectSQLite
	assert.Equal(t, "a = ? AND b = ?", s.rebind("a = ? AND b = ?"))
}

func TestSQLitePrompts(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.ActiveTemplate(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := s.SaveTemplate(ctx, "u1", "work", "# Role\nhello {{name}}")
	require.NoError(t, err)
	assert.False(t, first.IsActive)
	second, err := s.SaveTemplate(ctx, "u1", "casual", "# Role\nhi {{name}}")
	require.NoError(t, err)

	require.NoError(t, s.ActivateTemplate(ctx, "u1", first.ID))
	active, err := s.ActiveTemplate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "work", active.Name)

	require.NoError(t, s.ActivateTemplate(ctx, "u1", second.ID))
	active, err = s.ActiveTemplate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "casual", active.Name)

	list, err := s.ListTemplates(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	activeCount := 0
	for _, p := range list {
		if p.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)

	// Saving under an existing name updates content and keeps the id.
	updated, err := s.SaveTemplate(ctx, "u1", "casual", "# Role\nyo {{name}}")
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ID)
	assert.Equal(t, "# Role\nyo {{name}}", updated.Content)
	assert.True(t, updated.IsActive)

	assert.ErrorIs(t, s.ActivateTemplate(ctx, "other", first.ID), ErrNotFound)
	assert.ErrorIs(t, s.DeleteTemplate(ctx, "u1", 9999), ErrNotFound)

	require.NoError(t, s.DeleteTemplate(ctx, "u1", second.ID))
	_, err = s.ActiveTemplate(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteContacts(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	c, err := s.ContactSettings(ctx, "u1", "boss")
	require.NoError(t, err)
	assert.Equal(t, models.ContactSettings{}, c)

	require.NoError(t, s.SetContactSettings(ctx, "u1", "boss", models.ContactSettings{
		Name: "王經理", PriorityBoost: 1, IsStarred: true, CategoryHint: models.CategoryWork,
	}))
	require.NoError(t, s.SetContactSettings(ctx, "u1", "boss", models.ContactSettings{
		Name: "王經理", PriorityBoost: 2, IsStarred: true,
	}))

	c, err = s.ContactSettings(ctx, "u1", "boss")
	require.NoError(t, err)
	assert.Equal(t, 2, c.PriorityBoost)
	assert.True(t, c.IsStarred)
	assert.Equal(t, models.Category(""), c.CategoryHint)

	other, err := s.ContactSettings(ctx, "u2", "boss")
	require.NoError(t, err)
	assert.Zero(t, other.PriorityBoost)
}

func TestSQLiteExecutionStats(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	work := &models.OrganizeResult{Category: models.CategoryWork, Priority: 1}
	ad := &models.OrganizeResult{Category: models.CategoryAdvertisement, Priority: 5}
	logs := []*models.ExecutionLog{
		{UserID: "u1", MessageText: "a", PromptUsed: "p", Result: work, ExecutionTime: 0.2, Success: true},
		{UserID: "u1", MessageText: "b", PromptUsed: "p", Result: work, ExecutionTime: 0.4, Success: true},
		{UserID: "u1", MessageText: "c", PromptUsed: "p", Result: ad, ExecutionTime: 0.6, Success: false, Error: "boom"},
		{UserID: "u1", MessageText: "old", PromptUsed: "p", Result: ad, ExecutionTime: 9, Success: true,
			CreatedAt: now.AddDate(0, 0, -60)},
		{UserID: "u2", MessageText: "d", PromptUsed: "p", Result: ad, ExecutionTime: 1, Success: true},
	}
	for _, l := range logs {
		require.NoError(t, s.LogExecution(ctx, l))
		assert.NotZero(t, l.ID)
	}

	stats, err := s.ExecutionStats(ctx, "u1", 30)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalExecutions)
	assert.Equal(t, 2, stats.SuccessfulExecutions)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 1e-9)
	assert.InDelta(t, 0.4, stats.AvgExecutionTime, 1e-9)
	assert.Equal(t, map[models.Category]int{models.CategoryWork: 2, models.CategoryAdvertisement: 1}, stats.CategoryDistribution)

	empty, err := s.ExecutionStats(ctx, "nobody", 0)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalExecutions)
	assert.Equal(t, 30, empty.PeriodDays)
}

func TestPostgresPrompts(t *testing.T) {
	dsn := os.Getenv("MSGAGENT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MSGAGENT_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	user := "pg_test_" + time.Now().Format("150405.000000")
	p, err := s.SaveTemplate(ctx, user, "work", "# Role\nhello {{name}}")
	require.NoError(t, err)
	require.NoError(t, s.ActivateTemplate(ctx, user, p.ID))

	active, err := s.ActiveTemplate(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, p.ID, active.ID)
	require.NoError(t, s.DeleteTemplate(ctx, user, p.ID))
}
