package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"msgagent/models"
	"msgagent/utils"
)

//go:embed views
var viewsFS embed.FS

// Layout wraps every dashboard page
const Layout = "layouts/main"

// NewEngine builds the template engine over the embedded views
func NewEngine() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")

	engine.AddFunc("join", strings.Join)
	engine.AddFunc("t", func(localizer *i18n.Localizer, messageID string) string {
		return utils.T(localizer, messageID)
	})
	engine.AddFunc("formatTime", formatTime)
	engine.AddFunc("categoryClass", func(c models.Category) string {
		switch c {
		case models.CategoryWork:
			return "work"
		case models.CategoryFamily:
			return "family"
		case models.CategoryAdvertisement:
			return "ad"
		}
		return "friend"
	})
	engine.AddFunc("percent", func(rate float64) string {
		return fmt.Sprintf("%.0f%%", rate*100)
	})

	return engine
}

// formatTime shows a stored timestamp in local time, or raw when unparsable
func formatTime(ts string) string {
	parsed, err := models.ParseTimestamp(ts)
	if err != nil || ts == "" {
		return ts
	}
	return parsed.Local().Format("01/02 15:04")
}
