package organizer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/models"
	"msgagent/organizer"
)

type stubContacts map[string]models.ContactSettings

func (s stubContacts) ContactSettings(_ context.Context, owner, sender string) (models.ContactSettings, error) {
	if sender == "broken" {
		return models.ContactSettings{}, errors.New("store offline")
	}
	return s[owner+"/"+sender], nil
}

func TestOrganizeAdvertisement(t *testing.T) {
	p := organizer.NewPipeline()
	res, trace := p.Organize(context.Background(), models.MessageRequest{
		Text:     "促銷優惠！限時特價",
		SenderID: "shop",
	})

	assert.Equal(t, models.CategoryAdvertisement, res.Category)
	assert.Equal(t, models.Priority(5), res.Priority)
	assert.True(t, res.ShouldArchive)
	assert.Equal(t, []string{models.SentinelTag}, res.Tags)
	require.NotNil(t, res.Draft)
	assert.Equal(t, "好的，我知道了。", *res.Draft)

	require.Len(t, trace.Steps, 5)
	assert.True(t, trace.Success())
	assert.Equal(t, organizer.ToolClassify, trace.Steps[0].ToolName)
	assert.Equal(t, organizer.ToolDraft, trace.Steps[4].ToolName)
}

func TestOrganizeUsesContactSettings(t *testing.T) {
	p := organizer.NewPipeline(organizer.WithContacts(stubContacts{
		"demo_user/boss_001": {PriorityBoost: 1, IsStarred: true},
	}))

	res, _ := p.Organize(context.Background(), models.MessageRequest{
		Text:        "明天下午的會議記得帶提案書",
		SenderID:    "boss_001",
		OwnerID:     "demo_user",
		ToneProfile: models.ToneProfile{Name: "小王", Style: "casual", Signature: "- 小王"},
	})

	assert.Equal(t, models.CategoryWork, res.Category)
	// base 2, +1 boost, -1 starred
	assert.Equal(t, models.Priority(2), res.Priority)
	assert.False(t, res.ShouldArchive)
	assert.ElementsMatch(t, []string{"會議", "工作"}, res.Tags)
	assert.Equal(t, "收到，我會準時參加。 - 小王", *res.Draft)
}

func TestOrganizeContactLookupFailure(t *testing.T) {
	p := organizer.NewPipeline(organizer.WithContacts(stubContacts{}))
	res, _ := p.Organize(context.Background(), models.MessageRequest{Text: "hi", SenderID: "broken"})
	assert.Equal(t, models.Priority(3), res.Priority)
}

func TestToolbox(t *testing.T) {
	p := organizer.NewPipeline(organizer.WithContacts(stubContacts{"/mom": {PriorityBoost: 2}}))
	tb := organizer.NewToolbox(p)
	ctx := context.Background()

	names := make([]string, 0)
	for _, tool := range tb.Tools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{
		organizer.ToolClassify, organizer.ToolArchive, organizer.ToolDraft,
		organizer.ToolTag, organizer.ToolPriority, organizer.ToolSort,
	}, names)

	_, ok := tb.Lookup("missing")
	assert.False(t, ok)

	t.Run("archive accepts string priority", func(t *testing.T) {
		tool, ok := tb.Lookup(organizer.ToolArchive)
		require.True(t, ok)
		out, err := tool.Invoke(ctx, json.RawMessage(`{"category":"Advertisement","priority":"4"}`))
		require.NoError(t, err)
		assert.Equal(t, organizer.ArchiveOutput{ShouldArchive: true}, out)
	})

	t.Run("invalid category normalizes to friend", func(t *testing.T) {
		out, err := tb.Priority.Call(ctx, organizer.PriorityInput{Category: "???", SenderID: "mom"})
		require.NoError(t, err)
		assert.Equal(t, models.Priority(3), out.Base)
		assert.Equal(t, models.Priority(5), out.Priority)
	})

	t.Run("bad json", func(t *testing.T) {
		tool, _ := tb.Lookup(organizer.ToolClassify)
		_, err := tool.Invoke(ctx, json.RawMessage(`{"text":`))
		assert.Error(t, err)
	})

	t.Run("sort", func(t *testing.T) {
		out, err := tb.Sort.Call(ctx, organizer.SortInput{Threads: []models.ConversationThread{
			{ID: "A", Priority: 2, LastMessageAt: "2024-01-02T00:00:00Z"},
			{ID: "B", Priority: 1, LastMessageAt: "2024-01-01T00:00:00Z"},
		}})
		require.NoError(t, err)
		assert.True(t, out.Sorted)
		assert.Equal(t, []string{"B", "A"}, out.SortedThreads)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := tb.Classify.Call(cctx, organizer.ClassifyInput{Text: "x"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
