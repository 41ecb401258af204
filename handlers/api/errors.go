package api

import (
	"errors"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"msgagent/prompt"
	"msgagent/storage"
	"msgagent/utils"
)

// ErrorHandler writes every error as {"success": false, "error", "code"}.
// The message is localized from the error key when the locale has it.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	key := utils.ErrKeyInternal
	message := err.Error()

	var fe *fiber.Error
	if appErr, ok := utils.AsAppError(err); ok {
		code = appErr.Code
		message = appErr.Message
		if appErr.Key != "" {
			key = appErr.Key
		} else {
			key = ""
		}
	} else if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		key = ""
		if code == fiber.StatusNotFound {
			key = utils.ErrKeyNotFound
		}
	}

	if code >= fiber.StatusInternalServerError {
		utils.Log.Error("Request %s %s failed: %v", c.Method(), c.Path(), err)
	} else {
		utils.Log.Debug("Request %s %s rejected: %v", c.Method(), c.Path(), err)
	}

	localized := message
	if key != "" {
		localizer, _ := c.Locals("localizer").(*i18n.Localizer)
		if t := utils.T(localizer, key); t != key {
			localized = t
		}
	}

	body := fiber.Map{
		"success": false,
		"error":   localized,
		"code":    key,
	}
	if localized != message && message != "" {
		body["detail"] = message
	}
	return c.Status(code).JSON(body)
}

// storeError maps storage and prompt errors onto API errors.
func storeError(err error, notFoundKey string) error {
	var invalid *prompt.InvalidPromptError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return utils.NotFoundError("Record not found", err).WithKey(notFoundKey)
	case errors.Is(err, storage.ErrPromptLimit):
		return utils.BadRequestError("Prompt limit reached", err).WithKey(utils.ErrKeyPromptLimit)
	case errors.As(err, &invalid):
		return utils.BadRequestError(invalid.Reason, err).WithKey(utils.ErrKeyInvalidTemplate)
	}
	return utils.InternalServerError("Database operation failed", err).WithKey(utils.ErrKeyDatabase)
}

// parseBody decodes the JSON request body.
func parseBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return utils.BadRequestError("Invalid request body", err).WithKey(utils.ErrKeyJSONParse)
	}
	return nil
}

// cleanText strips markup and enforces the message length limit.
func cleanText(text string, max int) (string, error) {
	cleaned, _ := utils.CleanMessageText(text, 0)
	if cleaned == "" {
		return "", utils.BadRequestError("text is required", nil)
	}
	if max > 0 && utf8.RuneCountInString(cleaned) > max {
		return "", utils.BadRequestError("Message is too long", nil).
			WithKey(utils.ErrKeyMessageTooLong).
			WithContext("max_length", max)
	}
	return cleaned, nil
}
