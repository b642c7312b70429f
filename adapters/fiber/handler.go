package fiber

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seclave/seclave/core"
	"github.com/seclave/seclave/pkg/crypto"
)

// Public entry points. Views are out of scope; these answer with small JSON
// placeholders so the redirect targets exist.

func (a *Adapter) home(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "home"})
}

func (a *Adapter) loginPage(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "login"})
}

func (a *Adapter) registerPage(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "register"})
}

func (a *Adapter) register(c fiber.Ctx) error {
	var input core.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Redirect().To("/register")
	}

	result, err := a.auth.Register(input)
	if err != nil {
		// Duplicate username and validation failures alike send the user
		// back to the form; the reason stays server-side.
		a.log.Info("registration rejected", zap.Error(err))
		return c.Redirect().To("/register")
	}

	a.setSessionCookie(c, result)
	return c.Redirect().To("/secrets")
}

func (a *Adapter) login(c fiber.Ctx) error {
	var input core.LoginInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Redirect().To("/login")
	}

	result, err := a.auth.Login(input)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidCredentials) {
			a.log.Warn("login failed", zap.Error(err))
		}
		return c.Redirect().To("/login")
	}

	a.setSessionCookie(c, result)
	return c.Redirect().To("/secrets")
}

func (a *Adapter) logout(c fiber.Ctx) error {
	if err := a.auth.Logout(a.extractToken(c)); err != nil {
		a.log.Warn("session revocation failed", zap.Error(err))
	}
	a.clearCookie(c, a.cookie)
	return c.Redirect().To("/")
}

// providerStart begins the delegated handshake: mint a state value, remember
// it in a short-lived cookie and hand the user to the provider.
func (a *Adapter) providerStart(c fiber.Ctx) error {
	state, err := crypto.GenerateToken(16)
	if err != nil {
		return c.Redirect().To("/login")
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return c.Redirect().To(a.delegated.AuthCodeURL(state))
}

// providerCallback finishes the handshake. Any failure in state check, code
// exchange or profile fetch lands back on the local login page.
func (a *Adapter) providerCallback(c fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookieName) {
		a.log.Warn("delegated sign-in rejected", zap.Error(core.ErrStateMismatch))
		a.clearCookie(c, stateCookieName)
		return c.Redirect().To("/login")
	}
	a.clearCookie(c, stateCookieName)

	identity, err := a.delegated.Resolve(c.Context(), c.Query("code"))
	if err != nil {
		a.log.Warn("delegated sign-in failed", zap.Error(err))
		return c.Redirect().To("/login")
	}

	result, err := a.auth.SessionFor(identity)
	if err != nil {
		a.log.Warn("delegated session failed", zap.Error(err))
		return c.Redirect().To("/login")
	}

	a.setSessionCookie(c, result)
	return c.Redirect().To("/secrets")
}

func (a *Adapter) secrets(c fiber.Ctx) error {
	entries, err := a.auth.ListSecrets()
	if err != nil {
		a.log.Error("secrets listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not load secrets",
		})
	}

	return c.JSON(fiber.Map{"secrets": entries})
}

func (a *Adapter) submitPage(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "submit"})
}

func (a *Adapter) submit(c fiber.Ctx) error {
	identity, ok := c.Locals(identityLocal).(*core.Identity)
	if !ok {
		return c.Redirect().To("/login")
	}

	secret := c.FormValue("secret")
	if err := a.auth.SubmitSecret(identity.ID, secret); err != nil {
		if errors.Is(err, core.ErrNotAuthenticated) {
			return c.Redirect().To("/login")
		}
		a.log.Error("secret submission failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not save secret",
		})
	}

	return c.Redirect().To("/secrets")
}

func (a *Adapter) setSessionCookie(c fiber.Ctx, result *core.AuthResult) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookie,
		Value:    result.Token,
		Expires:  result.Session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (a *Adapter) clearCookie(c fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
