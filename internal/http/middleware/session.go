package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docviewer/internal/session"
)

const (
	// SessionCookie is the cookie carrying the session token for browser clients.
	SessionCookie = "docviewer_session"
	// SessionLocalKey is the key used to store the resolved *session.Session in locals.
	SessionLocalKey = "session"
)

// SessionToken returns the bearer token or session cookie of the request.
func SessionToken(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			return strings.TrimSpace(auth[7:])
		}
	}
	return c.Cookies(SessionCookie)
}

// RequireSession resolves the caller's session and attaches it to the request context.
// Requests without a valid session are rejected with 401. OPTIONS passes through.
func RequireSession(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		token := SessionToken(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		s, err := m.Resolve(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "session is invalid or expired")
		}

		c.Locals(SessionLocalKey, s)
		c.SetUserContext(session.WithSession(c.UserContext(), s))
		return c.Next()
	}
}

// SessionFromCtx returns the session stored by RequireSession.
func SessionFromCtx(c *fiber.Ctx) (*session.Session, bool) {
	s, ok := c.Locals(SessionLocalKey).(*session.Session)
	return s, ok
}
