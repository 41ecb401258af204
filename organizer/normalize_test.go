package organizer_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"msgagent/models"
	"msgagent/organizer"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want models.Category
		ok   bool
	}{
		{"工作", models.CategoryWork, true},
		{" 家人 ", models.CategoryFamily, true},
		{"Advertisement", models.CategoryAdvertisement, true},
		{"friend", models.CategoryFriend, true},
		{"spam", models.CategoryFriend, false},
		{"", models.CategoryFriend, false},
	}
	for _, tt := range tests {
		got, ok := organizer.NormalizeCategory(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		in   any
		want models.Priority
		ok   bool
	}{
		{1, 1, true},
		{float64(5), 5, true},
		{"4", 4, true},
		{json.Number("2"), 2, true},
		{0, 3, false},
		{6, 3, false},
		{2.5, 3, false},
		{"high", 3, false},
		{nil, 3, false},
	}
	for _, tt := range tests {
		got, ok := organizer.NormalizePriority(tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
	}
}

func TestNormalizeResult(t *testing.T) {
	r := organizer.NormalizeResult(models.OrganizeResult{
		Category: "unknown",
		Priority: 9,
		Tags:     []string{"a", "a", " ", "b", "c", "d", "e", "f"},
	})
	assert.Equal(t, models.CategoryFriend, r.Category)
	assert.Equal(t, models.Priority(3), r.Priority)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, r.Tags)

	empty := organizer.NormalizeResult(models.OrganizeResult{Category: models.CategoryWork, Priority: 2})
	assert.Equal(t, []string{models.SentinelTag}, empty.Tags)
}

func TestNormalizeTone(t *testing.T) {
	tone := organizer.NormalizeTone(models.ToneProfile{Name: "Sam", Style: "Casual", Language: "en-US"})
	assert.Equal(t, models.StyleCasual, tone.Style)
	assert.Equal(t, "en", tone.Language)
	assert.Equal(t, models.LengthShort, tone.ReplyLength)

	tone = organizer.NormalizeTone(models.ToneProfile{Style: "???", Language: "zh-Hans"})
	assert.Equal(t, models.StyleFormal, tone.Style)
	assert.Equal(t, "zh-cn", tone.Language)
}
