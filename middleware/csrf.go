package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"github.com/gofiber/fiber/v2"

	"msgagent/utils"
)

// CSRFConfig holds CSRF protection configuration
type CSRFConfig struct {
	TokenLength  int
	CookieName   string
	HeaderName   string
	FormField    string
	ContextKey   string
	CookieMaxAge int
	Secure       bool
}

// DefaultCSRFConfig returns default CSRF configuration
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		TokenLength:  32,
		CookieName:   "csrf_token",
		HeaderName:   "X-CSRF-Token",
		FormField:    "_csrf",
		ContextKey:   "csrf",
		CookieMaxAge: 3600, // 1 hour
	}
}

// CSRFProtection guards the dashboard's form posts with a double-submit
// cookie. Safe methods pass through and receive a fresh token.
func CSRFProtection(cfg CSRFConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			if c.Cookies(cfg.CookieName) == "" {
				GenerateCSRFToken(c, cfg)
			} else {
				c.Locals(cfg.ContextKey, c.Cookies(cfg.CookieName))
			}
			return c.Next()
		}

		cookieToken := c.Cookies(cfg.CookieName)
		submitted := c.Get(cfg.HeaderName)
		if submitted == "" {
			submitted = c.FormValue(cfg.FormField)
		}

		if cookieToken == "" || submitted == "" {
			return utils.ForbiddenError("CSRF token missing", nil)
		}
		if !tokensEqual(cookieToken, submitted) {
			return utils.ForbiddenError("CSRF token mismatch", nil)
		}

		return c.Next()
	}
}

// GenerateCSRFToken generates a new CSRF token and sets it in a cookie
func GenerateCSRFToken(c *fiber.Ctx, cfg CSRFConfig) string {
	token := generateToken(cfg.TokenLength)

	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		MaxAge:   cfg.CookieMaxAge,
		HTTPOnly: true,
		SameSite: "Strict",
		Secure:   cfg.Secure,
	})

	c.Locals(cfg.ContextKey, token)

	return token
}

// generateToken generates a random token
func generateToken(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

// tokensEqual performs constant-time comparison of tokens
func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
