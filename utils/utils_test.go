package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache[string](0)
	c.Set("a", "1")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Size)

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache[int](time.Millisecond)
	c.Set("k", 7)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Cleanup()
	assert.Empty(t, c.Keys())
}

func TestCleanMessageText(t *testing.T) {
	text, cut := CleanMessageText("<p>明天&amp;後天</p>\r\n\r\n\r\n<b>開會</b>", 0)
	assert.False(t, cut)
	assert.Equal(t, "明天&後天\n\n開會", text)

	text, cut = CleanMessageText("一二三四五", 3)
	assert.True(t, cut)
	assert.Equal(t, "一二三", text)
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"en-US", "en", true},
		{"ja", "ja", true},
		{"zh-Hans", "zh-cn", true},
		{"zh-CN", "zh-cn", true},
		{"zh-TW", "zh-tw", true},
		{"", "zh-tw", false},
		{"not a tag!", "zh-tw", false},
		{"fr", "zh-tw", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeLanguage(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("handler: %w", BadRequestError("bad input", base).WithKey(ErrKeyJSONParse))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, ErrKeyJSONParse, appErr.Key)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "bad input: boom", appErr.Error())

	_, ok = AsAppError(base)
	assert.False(t, ok)
}

func TestConfigureLoggingJSON(t *testing.T) {
	saved := Log
	defer func() { Log = saved }()

	var buf bytes.Buffer
	ConfigureLogging(&buf, "warn", true)
	Log.Info("hidden")
	Log.WithField("sender", "boss").Warn("slow step %s", "classify")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "slow step classify", line["message"])
	assert.Equal(t, "boss", line["sender"])
	assert.Equal(t, WARN, Log.Level())
}
