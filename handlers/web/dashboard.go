// Package web serves the server-rendered demo dashboard.
package web

import (
	"context"
	"sort"

	"github.com/gofiber/fiber/v2"

	"msgagent/middleware"
	"msgagent/models"
	"msgagent/storage"
	"msgagent/utils"
)

// Processor organizes a stored demo message
type Processor interface {
	ProcessMessage(ctx context.Context, id int) (*models.OrganizeResult, error)
}

// DashboardHandler renders the demo messages and their decisions
type DashboardHandler struct {
	store     *storage.DemoStore
	processor Processor
	csrf      middleware.CSRFConfig
	ownerID   string
	maxLength int
}

// NewDashboardHandler creates the handler
func NewDashboardHandler(store *storage.DemoStore, processor Processor, csrf middleware.CSRFConfig, ownerID string, maxLength int) *DashboardHandler {
	if ownerID == "" {
		ownerID = storage.DemoUserID
	}
	return &DashboardHandler{
		store:     store,
		processor: processor,
		csrf:      csrf,
		ownerID:   ownerID,
		maxLength: maxLength,
	}
}

// Mount registers the dashboard routes behind CSRF protection
func (h *DashboardHandler) Mount(app fiber.Router) {
	dashboard := app.Group("/dashboard", middleware.CSRFProtection(h.csrf))
	dashboard.Get("/", h.ShowDashboard)
	dashboard.Post("/messages", h.HandleAddMessage)
	dashboard.Post("/process/:id", h.HandleProcess)
	dashboard.Post("/process-all", h.HandleProcessAll)
	dashboard.Get("/settings", h.ShowSettings)
	dashboard.Post("/settings", h.HandleSettings)
}

// page collects the values every template needs
func (h *DashboardHandler) page(c *fiber.Ctx, data fiber.Map) fiber.Map {
	data["Localizer"] = c.Locals("localizer")
	data["Lang"] = c.Locals("lang")
	data["CSRF"] = c.Locals(h.csrf.ContextKey)
	data["CSRFField"] = h.csrf.FormField
	return data
}

// ShowDashboard renders the message list, newest first
func (h *DashboardHandler) ShowDashboard(c *fiber.Ctx) error {
	messages, err := h.store.Messages()
	if err != nil {
		utils.Log.Error("Failed to load demo messages: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading messages")
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].ID > messages[j].ID
	})

	stats, err := h.store.Stats()
	if err != nil {
		utils.Log.Warn("Failed to compute demo stats: %v", err)
		stats = &models.DemoStats{}
	}

	profile, err := h.store.UserProfile(h.ownerID)
	if err != nil {
		profile = storage.DefaultUserProfile()
	}

	page := models.NewPaginatedMessages(messages, c.QueryInt("page", 1), c.QueryInt("page_size", 20))

	return c.Render("dashboard", h.page(c, fiber.Map{
		"Messages":   page.Messages,
		"Pagination": page,
		"PrevPage":   page.Page - 1,
		"NextPage":   page.Page + 1,
		"Stats":      stats,
		"Profile":    profile,
		"Error":      c.Query("error"),
	}), Layout)
}

// HandleAddMessage stores a message posted from the dashboard form
func (h *DashboardHandler) HandleAddMessage(c *fiber.Ctx) error {
	text, truncated := utils.CleanMessageText(c.FormValue("text"), h.maxLength)
	senderID := c.FormValue("sender_id")
	if text == "" || senderID == "" {
		return c.Redirect("/dashboard?error=missing")
	}
	if truncated {
		utils.Log.Warn("Dashboard message from %s truncated to %d characters", senderID, h.maxLength)
	}

	senderName := c.FormValue("sender_name")
	if senderName == "" {
		senderName = senderID
	}
	if _, err := h.store.AddMessage(text, senderID, senderName); err != nil {
		utils.Log.Error("Failed to add demo message: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error saving message")
	}
	return c.Redirect("/dashboard")
}

// HandleProcess organizes one message
func (h *DashboardHandler) HandleProcess(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid message id")
	}
	if _, err := h.processor.ProcessMessage(c.UserContext(), id); err != nil {
		utils.Log.Warn("Dashboard failed to process message %d: %v", id, err)
		return c.Redirect("/dashboard?error=process")
	}
	return c.Redirect("/dashboard")
}

// HandleProcessAll organizes every unprocessed message
func (h *DashboardHandler) HandleProcessAll(c *fiber.Ctx) error {
	messages, err := h.store.Unprocessed()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading messages")
	}
	failed := 0
	for _, msg := range messages {
		if _, err := h.processor.ProcessMessage(c.UserContext(), msg.ID); err != nil {
			utils.Log.Warn("Dashboard failed to process message %d: %v", msg.ID, err)
			failed++
		}
	}
	if failed > 0 {
		return c.Redirect("/dashboard?error=process")
	}
	return c.Redirect("/dashboard")
}
