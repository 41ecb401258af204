package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"

	"msgagent/models"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a b", Truncate("a\nb", 10))

	cut := Truncate("明天下午的會議記得帶提案書", 10)
	assert.LessOrEqual(t, runewidth.StringWidth(cut), 10)
	assert.Contains(t, cut, "…")
}

func TestPad(t *testing.T) {
	assert.Equal(t, 8, runewidth.StringWidth(Pad("王經理", 8)))
	assert.Equal(t, 4, runewidth.StringWidth(Pad("abcdefgh", 4)))
}

func TestTimeAgo(t *testing.T) {
	assert.Equal(t, "", TimeAgo(""))
	assert.Equal(t, "just now", TimeAgo(time.Now().Format(time.RFC3339)))
	assert.Equal(t, "2h ago", TimeAgo(time.Now().Add(-2*time.Hour-time.Minute).Format(time.RFC3339)))
	assert.Equal(t, "not a date", TimeAgo("not a date"))
}

func TestResultCard(t *testing.T) {
	var buf bytes.Buffer
	draft := "好的，我會準時參加"
	ResultCard(&buf, "明天開會", models.OrganizeResult{
		Category: models.CategoryWork,
		Tags:     []string{"會議", "工作"},
		Priority: 2,
		Draft:    &draft,
	})

	out := buf.String()
	assert.Contains(t, out, "工作")
	assert.Contains(t, out, "P2")
	assert.Contains(t, out, "#會議 #工作")
	assert.Contains(t, out, draft)
}

func TestTables(t *testing.T) {
	var buf bytes.Buffer
	MessageTable(&buf, []models.DemoMessage{
		{ID: 1, SenderName: "媽媽", Text: "回家吃飯", ProcessingResult: &models.OrganizeResult{Category: models.CategoryFamily, Priority: 1}},
		{ID: 2, SenderName: "小李", Text: "看電影"},
	})
	assert.Contains(t, buf.String(), "媽媽")
	assert.Contains(t, buf.String(), "P1")
	assert.Contains(t, buf.String(), "看電影")

	buf.Reset()
	ThreadTable(&buf, []models.ConversationThread{{ID: "boss", Priority: 1, UnreadCount: 2}})
	assert.Contains(t, buf.String(), "boss")
	assert.Contains(t, buf.String(), "2 unread")

	buf.Reset()
	PromptTable(&buf, nil)
	assert.Contains(t, buf.String(), "default template")

	buf.Reset()
	ToolTrace(&buf, []models.ToolResult{{ToolName: "classify_message", Success: true}, {ToolName: "draft_reply", Error: "boom"}})
	assert.Contains(t, buf.String(), "classify_message")
	assert.Contains(t, buf.String(), "boom")
}
