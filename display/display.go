// Package display provides terminal formatting for msgagent output.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"msgagent/models"
	"msgagent/organizer"
)

var (
	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))

	UrgentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	HighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	NormalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb"))
	LowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6b7280")).
		Padding(0, 1)

	categoryStyles = map[models.Category]lipgloss.Style{
		models.CategoryWork:          lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb")).Bold(true),
		models.CategoryFamily:        lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true),
		models.CategoryFriend:        lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")).Bold(true),
		models.CategoryAdvertisement: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")),
	}
)

func priorityStyle(p models.Priority) lipgloss.Style {
	switch {
	case p <= 1:
		return UrgentStyle
	case p == 2:
		return HighStyle
	case p == 3:
		return NormalStyle
	}
	return LowStyle
}

// PriorityDot returns a colored dot for a priority level.
func PriorityDot(p models.Priority) string {
	if p <= 2 {
		return priorityStyle(p).Render("●")
	}
	return priorityStyle(p).Render("○")
}

// PriorityLabel returns a styled "P1".."P5" label.
func PriorityLabel(p models.Priority) string {
	return priorityStyle(p).Render(fmt.Sprintf("P%d", p))
}

// CategoryLabel returns the category in its color.
func CategoryLabel(c models.Category) string {
	if style, ok := categoryStyles[c]; ok {
		return style.Render(string(c))
	}
	return string(c)
}

// Truncate shortens s to maxWidth terminal cells, adding an ellipsis if needed.
func Truncate(s string, maxWidth int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// Pad fits s into exactly width cells.
func Pad(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// TimeAgo formats a stored timestamp as a relative time.
func TimeAgo(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := organizer.ParseTimestamp(ts)
	if err != nil {
		return ts[:min(10, len(ts))]
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// SuccessMsg prints a green checkmark + message.
func SuccessMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Success.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// ErrorMsg prints a red X + message.
func ErrorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, ErrStyle.Render("✗")+" "+fmt.Sprintf(format, args...))
}

// Header prints a section header.
func Header(w io.Writer, title string) {
	fmt.Fprintln(w, Bold.Render(title))
}
