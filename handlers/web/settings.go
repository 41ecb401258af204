package web

import (
	"github.com/gofiber/fiber/v2"

	"msgagent/models"
	"msgagent/organizer"
	"msgagent/storage"
	"msgagent/utils"
)

// ShowSettings renders the demo user's tone profile form
func (h *DashboardHandler) ShowSettings(c *fiber.Ctx) error {
	profile, err := h.store.UserProfile(h.ownerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading user settings")
	}

	// Default values if not set
	if profile.ToneStyle == "" {
		profile.ToneStyle = models.StyleFormal
	}
	if profile.Language == "" {
		profile.Language = models.DefaultLanguage
	}

	return c.Render("settings", h.page(c, fiber.Map{
		"Profile":      profile,
		"Styles":       models.Styles,
		"ReplyLengths": models.ReplyLengths,
		"Languages":    models.Languages,
		"Saved":        c.QueryBool("saved"),
		"Error":        c.Query("error"),
	}), Layout)
}

// HandleSettings saves the tone profile form
func (h *DashboardHandler) HandleSettings(c *fiber.Ctx) error {
	profile, err := h.store.UserProfile(h.ownerID)
	if err != nil {
		profile = storage.DefaultUserProfile()
	}

	style, ok := organizer.ParseStyle(c.FormValue("tone_style"))
	if !ok {
		return c.Redirect("/dashboard/settings?error=style")
	}
	length := models.ReplyLength(c.FormValue("reply_length"))
	if !validLength(length) {
		return c.Redirect("/dashboard/settings?error=reply_length")
	}
	lang, ok := utils.NormalizeLanguage(c.FormValue("language"))
	if !ok {
		return c.Redirect("/dashboard/settings?error=language")
	}

	if name := c.FormValue("name"); name != "" {
		profile.Name = name
	}
	profile.Profile = c.FormValue("profile")
	profile.Signature = c.FormValue("signature")
	profile.ToneStyle = style
	profile.ReplyLength = length
	profile.Language = lang

	if err := h.store.SetUserProfile(h.ownerID, profile); err != nil {
		utils.Log.Error("Failed to save user profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error saving settings")
	}
	return c.Redirect("/dashboard/settings?saved=true")
}

func validLength(l models.ReplyLength) bool {
	for _, known := range models.ReplyLengths {
		if l == known {
			return true
		}
	}
	return false
}
