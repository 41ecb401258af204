package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"msgagent/models"
)

// ResultCard prints one organize result in a bordered box.
func ResultCard(w io.Writer, text string, r models.OrganizeResult) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s %s", CategoryLabel(r.Category), PriorityDot(r.Priority), PriorityLabel(r.Priority))
	if r.ShouldArchive {
		b.WriteString("  " + Dim.Render("archive"))
	}
	b.WriteString("\n")
	b.WriteString(Muted.Render(Truncate(text, 60)))
	if len(r.Tags) > 0 {
		b.WriteString("\n" + Dim.Render("#"+strings.Join(r.Tags, " #")))
	}
	if r.Draft != nil && *r.Draft != "" {
		b.WriteString("\n\n" + Bold.Render("Reply: ") + *r.Draft)
	}
	fmt.Fprintln(w, Card.Render(b.String()))
}

// ToolTrace prints the steps of one organize call.
func ToolTrace(w io.Writer, steps []models.ToolResult) {
	for _, s := range steps {
		mark := Success.Render("✓")
		if !s.Success {
			mark = ErrStyle.Render("✗")
		}
		line := fmt.Sprintf("  %s %s %s", mark, Pad(s.ToolName, 16), Dim.Render(fmt.Sprintf("%.2fms", s.ExecutionTime*1000)))
		if s.Error != "" {
			line += "  " + ErrStyle.Render(s.Error)
		}
		fmt.Fprintln(w, line)
	}
}

// MessageTable prints demo messages one per line.
func MessageTable(w io.Writer, messages []models.DemoMessage) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		Muted.Render(Pad("ID", 4)), Muted.Render(Pad("SENDER", 12)),
		Muted.Render(Pad("RESULT", 12)), Muted.Render("MESSAGE"))
	for _, m := range messages {
		result := Dim.Render(Pad("-", 12))
		if m.ProcessingResult != nil {
			r := m.ProcessingResult
			plain := fmt.Sprintf("%s P%d", r.Category, r.Priority)
			result = padStyled(CategoryLabel(r.Category)+" "+PriorityLabel(r.Priority), plain, 12)
		}
		fmt.Fprintf(w, "%s %s %s %s  %s\n",
			Pad(fmt.Sprint(m.ID), 4),
			Pad(m.SenderName, 12),
			result,
			Truncate(m.Text, 40),
			Dim.Render(TimeAgo(m.Timestamp)))
	}
}

// padStyled pads a styled string using the width of its unstyled text.
func padStyled(styled, plain string, width int) string {
	return styled + strings.Repeat(" ", max(0, width-runewidth.StringWidth(plain)))
}

// ThreadTable prints threads in the given order.
func ThreadTable(w io.Writer, threads []models.ConversationThread) {
	for i, t := range threads {
		name := t.Participant
		if name == "" {
			name = t.ID
		}
		unread := ""
		if t.UnreadCount > 0 {
			unread = Bold.Render(fmt.Sprintf("%d unread", t.UnreadCount))
		}
		fmt.Fprintf(w, "%2d. %s %s %s  %s %s\n",
			i+1, PriorityDot(t.Priority), PriorityLabel(t.Priority),
			Pad(name, 14), Dim.Render(TimeAgo(t.LastMessageAt)), unread)
	}
}

// PromptTable prints a user's stored prompt templates.
func PromptTable(w io.Writer, prompts []models.PromptTemplate) {
	if len(prompts) == 0 {
		fmt.Fprintln(w, Dim.Render("  (no custom prompts, the default template is used)"))
		return
	}
	for _, p := range prompts {
		active := " "
		if p.IsActive {
			active = Success.Render("*")
		}
		fmt.Fprintf(w, "%s %s %s %s\n", active, Pad(fmt.Sprint(p.ID), 4), Pad(p.Name, 20),
			Dim.Render(Truncate(p.Content, 40)))
	}
}

// StatsBlock prints demo statistics.
func StatsBlock(w io.Writer, s *models.DemoStats) {
	fmt.Fprintf(w, "  Messages     %4d  (%d processed, %d waiting)\n", s.TotalMessages, s.ProcessedMessages, s.UnprocessedMessages)
	fmt.Fprintf(w, "  Rate         %5.0f%%\n", s.ProcessingRate*100)
	fmt.Fprintf(w, "  Avg time     %7.3fs\n", s.AvgExecutionTime)
	for _, c := range models.Categories {
		if n := s.CategoryDistribution[c]; n > 0 {
			fmt.Fprintf(w, "  %s %4d\n", Pad(string(c), 12), n)
		}
	}
}
