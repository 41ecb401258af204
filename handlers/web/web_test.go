package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/middleware"
	"msgagent/models"
	"msgagent/storage"
	"msgagent/utils"
)

type stubProcessor struct {
	store *storage.DemoStore
	calls []int
}

func (p *stubProcessor) ProcessMessage(_ context.Context, id int) (*models.OrganizeResult, error) {
	p.calls = append(p.calls, id)
	draft := "收到"
	result := models.OrganizeResult{Category: models.CategoryWork, Tags: []string{"會議"}, Priority: 2, Draft: &draft}
	if err := p.store.MarkProcessed(id, result); err != nil {
		return nil, err
	}
	return &result, nil
}

func newDashboard(t *testing.T) (*fiber.App, *storage.DemoStore, *stubProcessor) {
	t.Helper()
	store, err := storage.NewDemoStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.AddMessage("明天的會議改到十點", "boss", "老闆")
	require.NoError(t, err)
	_, err = store.AddMessage("晚餐吃什麼", "mom", "媽媽")
	require.NoError(t, err)

	proc := &stubProcessor{store: store}
	handler := NewDashboardHandler(store, proc, middleware.DefaultCSRFConfig(), "", 5000)

	app := fiber.New(fiber.Config{
		Views: NewEngine(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := utils.AsAppError(err); ok {
				return c.Status(appErr.Code).SendString(appErr.Message)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	app.Use(middleware.LocaleMiddleware())
	handler.Mount(app)
	return app, store, proc
}

func csrfToken(t *testing.T, app *fiber.App, path string) (string, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.DefaultCSRFConfig().CookieName {
			return ck.Value, string(body)
		}
	}
	t.Fatal("no csrf cookie")
	return "", ""
}

func postForm(t *testing.T, app *fiber.App, path, token string, form url.Values) *http.Response {
	t.Helper()
	if token != "" {
		form.Set("_csrf", token)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestShowDashboard(t *testing.T) {
	app, _, _ := newDashboard(t)

	_, body := csrfToken(t, app, "/dashboard?lang=en")
	assert.Contains(t, body, "Message Agent")
	assert.Contains(t, body, "老闆")
	assert.Contains(t, body, "晚餐吃什麼")
	assert.Contains(t, body, `action="/dashboard/process/2"`)
}

func TestProcessFromDashboard(t *testing.T) {
	app, store, proc := newDashboard(t)
	token, _ := csrfToken(t, app, "/dashboard")

	resp := postForm(t, app, "/dashboard/process/1", "", url.Values{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, proc.calls)

	resp = postForm(t, app, "/dashboard/process/1", token, url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, []int{1}, proc.calls)

	resp = postForm(t, app, "/dashboard/process-all", token, url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, []int{1, 2}, proc.calls)

	unprocessed, err := store.Unprocessed()
	require.NoError(t, err)
	assert.Empty(t, unprocessed)

	_, body := csrfToken(t, app, "/dashboard")
	assert.Contains(t, body, `class="tag">會議`)
}

func TestAddMessageFromDashboard(t *testing.T) {
	app, store, _ := newDashboard(t)
	token, _ := csrfToken(t, app, "/dashboard")

	resp := postForm(t, app, "/dashboard/messages", token, url.Values{
		"sender_id": {"friend"},
		"text":      {"<b>週末</b>去爬山"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	messages, err := store.Messages()
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "週末去爬山", messages[2].Text)
	assert.Equal(t, "friend", messages[2].SenderName)

	resp = postForm(t, app, "/dashboard/messages", token, url.Values{"text": {"no sender"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "error=missing")
}

func TestSettings(t *testing.T) {
	app, store, _ := newDashboard(t)
	token, body := csrfToken(t, app, "/dashboard/settings")
	assert.Contains(t, body, "Demo 用戶")

	resp := postForm(t, app, "/dashboard/settings", token, url.Values{
		"name":         {"小王"},
		"tone_style":   {"casual"},
		"reply_length": {"詳細"},
		"language":     {"en-US"},
		"signature":    {"- W"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "saved=true")

	profile, err := store.UserProfile(storage.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "小王", profile.Name)
	assert.Equal(t, models.StyleCasual, profile.ToneStyle)
	assert.Equal(t, models.LengthDetailed, profile.ReplyLength)
	assert.Equal(t, "en", profile.Language)

	resp = postForm(t, app, "/dashboard/settings", token, url.Values{
		"tone_style":   {"grumpy"},
		"reply_length": {"詳細"},
		"language":     {"en"},
	})
	assert.Contains(t, resp.Header.Get("Location"), "error=style")
}

func TestFormatTime(t *testing.T) {
	naive := formatTime("2024-01-15T10:00:00.123456")
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC).Local().Format("01/02 15:04"), naive)

	assert.Equal(t, "soon", formatTime("soon"))
	assert.Equal(t, "", formatTime(""))
}
