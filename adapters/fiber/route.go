// Package fiber binds the auth core to a Fiber application: route wiring,
// session cookies and the access-gate middleware. Handlers translate core
// errors into redirects; no internal detail reaches the client.
package fiber

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seclave/seclave/core"
)

const (
	defaultCookieName = "seclave_session"
	stateCookieName   = "seclave_oauth_state"

	identityLocal = "identity"
)

type Options struct {
	CookieName string
	Logger     *zap.Logger
}

type Adapter struct {
	auth      *core.Auth
	delegated *core.DelegatedAuthenticator
	cookie    string
	log       *zap.Logger
}

func New(auth *core.Auth, delegated *core.DelegatedAuthenticator, opts Options) *Adapter {
	cookie := opts.CookieName
	if cookie == "" {
		cookie = defaultCookieName
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Adapter{
		auth:      auth,
		delegated: delegated,
		cookie:    cookie,
		log:       log,
	}
}

func (a *Adapter) RegisterRoutes(app *fiber.App) {
	// Public routes
	app.Get("/", a.home)
	app.Get("/login", a.loginPage)
	app.Get("/register", a.registerPage)
	app.Post("/register", a.register)
	app.Post("/login", a.login)
	app.Get("/logout", a.logout)

	// Delegated sign-in
	if a.delegated != nil {
		app.Get("/auth/provider", a.providerStart)
		app.Get("/auth/provider/callback", a.providerCallback)
	}

	// Protected routes sit behind the access gate
	app.Use("/secrets", a.requireAuth)
	app.Use("/submit", a.requireAuth)
	app.Get("/secrets", a.secrets)
	app.Get("/submit", a.submitPage)
	app.Post("/submit", a.submit)
}
