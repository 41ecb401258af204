package api

import (
	"github.com/gofiber/fiber/v2"

	"msgagent/middleware"
	"msgagent/models"
	"msgagent/organizer"
	"msgagent/storage"
	"msgagent/utils"
)

// ContactHandler serves per-user contact settings and execution stats
type ContactHandler struct {
	contacts storage.ContactStore
	logs     storage.ExecutionLogStore
}

// NewContactHandler creates the handler
func NewContactHandler(contacts storage.ContactStore, logs storage.ExecutionLogStore) *ContactHandler {
	return &ContactHandler{contacts: contacts, logs: logs}
}

type contactRequest struct {
	Name          string `json:"name"`
	PriorityBoost int    `json:"priority_boost"`
	IsStarred     bool   `json:"is_starred"`
	CategoryHint  string `json:"category_hint"`
}

// Get answers GET /api/contacts/:sender
func (h *ContactHandler) Get(c *fiber.Ctx) error {
	sender := c.Params("sender")
	settings, err := h.contacts.ContactSettings(c.UserContext(), middleware.UserID(c), sender)
	if err != nil {
		return storeError(err, utils.ErrKeyUserNotFound)
	}
	return c.JSON(fiber.Map{"sender_id": sender, "contact": settings})
}

// Put answers PUT /api/contacts/:sender
func (h *ContactHandler) Put(c *fiber.Ctx) error {
	var req contactRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	settings := models.ContactSettings{
		Name:          req.Name,
		PriorityBoost: req.PriorityBoost,
		IsStarred:     req.IsStarred,
	}
	if req.CategoryHint != "" {
		category, ok := organizer.NormalizeCategory(req.CategoryHint)
		if !ok {
			return utils.BadRequestError("Invalid category: "+req.CategoryHint, nil).WithKey(utils.ErrKeyInvalidCategory)
		}
		settings.CategoryHint = category
	}
	if settings.PriorityBoost < models.MinBoost || settings.PriorityBoost > models.MaxBoost {
		utils.Log.Warn("Priority boost %d is outside [%d,%d]; scores will be clamped",
			settings.PriorityBoost, models.MinBoost, models.MaxBoost)
	}

	sender := c.Params("sender")
	if err := h.contacts.SetContactSettings(c.UserContext(), middleware.UserID(c), sender, settings); err != nil {
		return storeError(err, utils.ErrKeyUserNotFound)
	}
	return c.JSON(fiber.Map{"success": true, "sender_id": sender, "contact": settings})
}

// Stats answers GET /api/stats?days=N
func (h *ContactHandler) Stats(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	stats, err := h.logs.ExecutionStats(c.UserContext(), middleware.UserID(c), days)
	if err != nil {
		return storeError(err, utils.ErrKeyNotFound)
	}
	return c.JSON(stats)
}
