package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lensfolio/api-gateway/internal/auth"
	"lensfolio/api-gateway/internal/timeout"
	"lensfolio/api-gateway/utils"
)

// Locals keys set by RequireSession.
const (
	AccessTokenKey = "accessToken"
	SessionKey     = "session"
)

// SessionChecker resolves an access token to a session.
type SessionChecker interface {
	Session(ctx context.Context, accessToken string) (*auth.Session, error)
}

// RequireSession rejects requests without a valid Bearer access token. On
// success the token and session are stored in Locals.
func RequireSession(checker SessionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, "Authorization header missing")
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || strings.TrimSpace(token) == "" {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, "Bearer token malformed")
		}

		session, err := checker.Session(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, timeout.ErrTimeout) {
				return utils.RespondWithError(c, fiber.StatusGatewayTimeout, err.Error())
			}
			if errors.Is(err, auth.ErrUnauthenticated) {
				return utils.RespondWithError(c, fiber.StatusUnauthorized, "Invalid or expired token")
			}
			return utils.RespondWithError(c, fiber.StatusBadGateway, "Could not verify session")
		}

		c.Locals(AccessTokenKey, token)
		c.Locals(SessionKey, session)
		return c.Next()
	}
}

// AccessToken returns the token stored by RequireSession.
func AccessToken(c *fiber.Ctx) string {
	token, _ := c.Locals(AccessTokenKey).(string)
	return token
}

// CurrentSession returns the session stored by RequireSession.
func CurrentSession(c *fiber.Ctx) *auth.Session {
	s, _ := c.Locals(SessionKey).(*auth.Session)
	return s
}
