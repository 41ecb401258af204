package api

import (
	"github.com/gofiber/fiber/v2"

	"msgagent/middleware"
	"msgagent/models"
	"msgagent/organizer"
	"msgagent/prompt"
	"msgagent/utils"
)

// PromptHandler manages the caller's prompt templates
type PromptHandler struct {
	manager *prompt.Manager
	events  *EventHub
}

// NewPromptHandler creates the handler. events may be nil.
func NewPromptHandler(manager *prompt.Manager, events *EventHub) *PromptHandler {
	return &PromptHandler{manager: manager, events: events}
}

type createPromptRequest struct {
	Name     string `json:"name"`
	Content  string `json:"prompt_content"`
	Activate bool   `json:"activate"`
}

type templateRequest struct {
	Content     string             `json:"prompt_content"`
	ToneProfile models.ToneProfile `json:"tone_profile"`
}

// List answers GET /api/prompts
func (h *PromptHandler) List(c *fiber.Ctx) error {
	user := middleware.UserID(c)
	prompts, err := h.manager.List(c.UserContext(), user)
	if err != nil {
		return storeError(err, utils.ErrKeyPromptNotFound)
	}
	return c.JSON(fiber.Map{"prompts": prompts, "count": len(prompts)})
}

// Active answers GET /api/prompts/active
func (h *PromptHandler) Active(c *fiber.Ctx) error {
	content := h.manager.ActiveTemplate(c.UserContext(), middleware.UserID(c))
	return c.JSON(fiber.Map{
		"prompt_content": content,
		"is_default":     content == prompt.DefaultTemplate,
	})
}

// Create answers POST /api/prompts
func (h *PromptHandler) Create(c *fiber.Ctx) error {
	var req createPromptRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user := middleware.UserID(c)
	save := h.manager.Save
	if req.Activate {
		save = h.manager.SaveAndActivate
	}
	p, err := save(c.UserContext(), user, req.Name, req.Content)
	if err != nil {
		return storeError(err, utils.ErrKeyPromptNotFound)
	}

	h.announce(user, "saved", p.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"prompt":  p,
		"missing": prompt.MissingSections(req.Content),
	})
}

// Activate answers POST /api/prompts/:id/activate
func (h *PromptHandler) Activate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequestError("Invalid prompt id", err)
	}
	user := middleware.UserID(c)
	if err := h.manager.Activate(c.UserContext(), user, int64(id)); err != nil {
		return storeError(err, utils.ErrKeyPromptNotFound)
	}
	h.announce(user, "activated", int64(id))
	return c.JSON(fiber.Map{"success": true, "id": id})
}

// Delete answers DELETE /api/prompts/:id
func (h *PromptHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequestError("Invalid prompt id", err)
	}
	user := middleware.UserID(c)
	if err := h.manager.Delete(c.UserContext(), user, int64(id)); err != nil {
		return storeError(err, utils.ErrKeyPromptNotFound)
	}
	h.announce(user, "deleted", int64(id))
	return c.JSON(fiber.Map{"success": true, "id": id})
}

// Validate answers POST /api/prompts/validate
func (h *PromptHandler) Validate(c *fiber.Ctx) error {
	var req templateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp := fiber.Map{"valid": true, "missing_sections": prompt.MissingSections(req.Content)}
	if err := h.manager.Validate(req.Content); err != nil {
		resp["valid"] = false
		resp["error"] = err.Error()
	}
	return c.JSON(resp)
}

// Variables answers POST /api/prompts/variables
func (h *PromptHandler) Variables(c *fiber.Ctx) error {
	var req templateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"variables": prompt.ExtractVariables(req.Content),
		"available": prompt.ProfileVariables,
	})
}

// Render answers POST /api/prompts/render. Without prompt_content it renders
// the caller's active template.
func (h *PromptHandler) Render(c *fiber.Ctx) error {
	var req templateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tone := organizer.NormalizeTone(req.ToneProfile)

	var out prompt.Rendered
	if req.Content == "" {
		out = h.manager.RenderFor(c.UserContext(), middleware.UserID(c), tone)
	} else {
		out = h.manager.Renderer().Render(req.Content, tone)
	}

	resp := fiber.Map{
		"rendered": out.Text,
		"cached":   out.Cached,
		"fallback": out.Fallback,
	}
	if out.Err != nil {
		resp["error"] = out.Err.Error()
	}
	return c.JSON(resp)
}

func (h *PromptHandler) announce(user, action string, id int64) {
	if h.events == nil {
		return
	}
	h.events.Publish(Event{
		Type:    EventPromptChanged,
		UserID:  user,
		Message: action,
		Data:    map[string]interface{}{"prompt_id": id},
	})
}
