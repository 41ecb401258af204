package api

import (
	"msgagent/utils"

	"github.com/gofiber/fiber/v2"
)

// clientMessageKeys are the translations the dashboard scripts need
var clientMessageKeys = []string{
	utils.ErrKeyInvalidCategory,
	utils.ErrKeyInvalidPriority,
	utils.ErrKeyPromptNotFound,
	utils.ErrKeyPromptLimit,
	utils.ErrKeyMessageNotFound,
	utils.ErrKeyToolExecutionFailed,
	utils.ErrKeyJSONParse,
	utils.ErrKeyRateLimited,
	utils.ErrKeyUnauthorized,
	utils.ErrKeyInvalidTemplate,
	utils.ErrKeyMessageTooLong,
	utils.ErrKeyInternal,
}

// I18nHandler handles i18n-related requests
type I18nHandler struct{}

// GetTranslations returns translations for the client-side JavaScript
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang, _ := utils.NormalizeLanguage(c.Params("lang"))
	localizer := utils.GetLocalizer(lang)

	translations := make(map[string]string, len(clientMessageKeys))
	for _, key := range clientMessageKeys {
		translations[key] = utils.T(localizer, key)
	}

	return c.JSON(fiber.Map{"lang": lang, "messages": translations})
}
