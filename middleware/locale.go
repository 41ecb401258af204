package middleware

import (
	"github.com/gofiber/fiber/v2"

	"msgagent/utils"
)

// LocaleMiddleware detects and sets the user's locale
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// query parameter, then cookie, then Accept-Language
		raw := c.Query("lang")
		if raw == "" {
			raw = c.Cookies("lang")
		}
		if raw == "" {
			if accepted := c.AcceptsLanguages(utils.SupportedLanguages...); accepted != "" {
				raw = accepted
			} else {
				raw = c.Get(fiber.HeaderAcceptLanguage)
			}
		}

		lang, _ := utils.NormalizeLanguage(raw)

		c.Locals("localizer", utils.GetLocalizer(lang))
		c.Locals("lang", lang)

		utils.Log.Debug("Locale detected: %s for path: %s", lang, c.Path())

		return c.Next()
	}
}
