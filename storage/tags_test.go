package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagIndex(t *testing.T) {
	idx, err := OpenTagIndex(t.TempDir())
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.SetTags(1, []string{"會議", "緊急"}))
	require.NoError(t, idx.SetTags(2, []string{"會議"}))
	require.NoError(t, idx.SetTags(10, []string{"會議"}))

	ids, err := idx.MessagesWithTag("會議")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 10}, ids)

	tags, err := idx.TagsFor(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"會議", "緊急"}, tags)

	// Retagging drops the old entries in both directions.
	require.NoError(t, idx.SetTags(1, []string{"帳單"}))
	ids, err = idx.MessagesWithTag("緊急")
	require.NoError(t, err)
	assert.Empty(t, ids)

	counts, err := idx.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"會議": 2, "帳單": 1}, counts)

	all, err := idx.Tags()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
