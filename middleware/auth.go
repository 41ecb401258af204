package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"msgagent/utils"
)

// UserIDHeader names the caller when JWT auth is disabled.
const UserIDHeader = "X-User-ID"

const userKey = "user_id"

// AuthConfig configures Auth.
type AuthConfig struct {
	// Secret signs tokens. When empty, authentication is disabled and the
	// caller is taken from UserIDHeader, or DefaultUser.
	Secret      string
	DefaultUser string
}

// Auth identifies the user owning prompts and logs.
func Auth(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Secret == "" {
			user := strings.TrimSpace(c.Get(UserIDHeader))
			if user == "" {
				user = cfg.DefaultUser
			}
			c.Locals(userKey, user)
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return utils.UnauthorizedError("Missing bearer token", nil)
		}

		user, err := ParseToken(cfg.Secret, raw)
		if err != nil {
			return utils.UnauthorizedError("Invalid token", err)
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// UserID returns the user set by Auth.
func UserID(c *fiber.Ctx) string {
	user, _ := c.Locals(userKey).(string)
	return user
}

// IssueToken signs an HS256 token whose subject is userID.
func IssueToken(secret, userID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(now),
		Issuer:   "msgagent",
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates raw and returns its subject.
func ParseToken(secret, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
