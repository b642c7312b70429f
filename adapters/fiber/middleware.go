package fiber

import (
	"github.com/gofiber/fiber/v3"
)

// requireAuth is the access gate. It resolves the request's session token to
// a live identity before any protected handler touches the request body, and
// short-circuits to the login page when that fails.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	identity, err := a.auth.Resolve(a.extractToken(c))
	if err != nil {
		return c.Redirect().To("/login")
	}

	c.Locals(identityLocal, identity)
	return c.Next()
}

// extractToken pulls the session token from the request.
// Checks the session cookie first, then the Authorization header.
func (a *Adapter) extractToken(c fiber.Ctx) string {
	if token := c.Cookies(a.cookie); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
