package fiber

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/seclave/seclave/adapters/memory"
	"github.com/seclave/seclave/core"
)

type testApp struct {
	app     *fiber.App
	storage *memory.Store
}

func newTestApp(t *testing.T, provider *core.DelegatedAuthenticator) *testApp {
	t.Helper()

	storage := memory.New()
	sessions := core.NewSessionManager(core.SessionConfig{MaxAge: time.Hour}, storage, nil)
	auth := core.NewAuth(storage, core.NewArgon2(), sessions)

	app := fiber.New()
	adapter := New(auth, provider, Options{})
	adapter.RegisterRoutes(app)

	return &testApp{app: app, storage: storage}
}

func (ta *testApp) do(t *testing.T, method, target string, form url.Values, cookies map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func sessionCookie(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == defaultCookieName && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}

func wantRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		t.Fatalf("status = %d, want a redirect", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("redirect location = %q, want %q", got, location)
	}
}

// Requirement: register -> login -> submit -> listing -> logout, with the
// listing never exposing credential fields and the gate closing after logout.
func TestLocalAccountEndToEnd(t *testing.T) {
	ta := newTestApp(t, nil)

	// Register establishes a session and proceeds to the protected area.
	resp := ta.do(t, http.MethodPost, "/register", url.Values{
		"username":    {"a"},
		"displayName": {"Alice"},
		"password":    {"p1"},
	}, nil)
	wantRedirect(t, resp, "/secrets")
	if sessionCookie(resp) == "" {
		t.Fatal("register should set a session cookie")
	}

	// A fresh login works with the same credentials.
	resp = ta.do(t, http.MethodPost, "/login", url.Values{
		"username": {"a"},
		"password": {"p1"},
	}, nil)
	wantRedirect(t, resp, "/secrets")
	token := sessionCookie(resp)
	if token == "" {
		t.Fatal("login should set a session cookie")
	}
	authed := map[string]string{defaultCookieName: token}

	// Submit a secret.
	resp = ta.do(t, http.MethodPost, "/submit", url.Values{"secret": {"s1"}}, authed)
	wantRedirect(t, resp, "/secrets")

	// The listing contains the secret and no credential material.
	resp = ta.do(t, http.MethodGet, "/secrets", nil, authed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /secrets status = %d, want 200", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	var listing struct {
		Secrets []core.SecretEntry `json:"secrets"`
	}
	if err := json.Unmarshal(raw, &listing); err != nil {
		t.Fatalf("decoding listing: %v", err)
	}
	if len(listing.Secrets) != 1 || listing.Secrets[0].Secret != "s1" {
		t.Fatalf("listing = %+v, want single s1 entry", listing.Secrets)
	}
	for _, leak := range []string{"password", "argon2", "hash"} {
		if strings.Contains(strings.ToLower(string(raw)), leak) {
			t.Errorf("listing body leaks %q: %s", leak, raw)
		}
	}

	// Logout always goes home, and the gate closes.
	resp = ta.do(t, http.MethodGet, "/logout", nil, authed)
	wantRedirect(t, resp, "/")

	resp = ta.do(t, http.MethodGet, "/secrets", nil, authed)
	wantRedirect(t, resp, "/login")
}

// Requirement: a failed registration or login redirects back to its form
// without revealing why.
func TestEntryFormFailures(t *testing.T) {
	ta := newTestApp(t, nil)

	// Seed one account.
	resp := ta.do(t, http.MethodPost, "/register", url.Values{
		"username": {"a"},
		"password": {"p1"},
	}, nil)
	wantRedirect(t, resp, "/secrets")

	tests := []struct {
		name     string
		target   string
		form     url.Values
		location string
	}{
		{
			name:     "duplicate registration",
			target:   "/register",
			form:     url.Values{"username": {"a"}, "password": {"p2"}},
			location: "/register",
		},
		{
			name:     "wrong password",
			target:   "/login",
			form:     url.Values{"username": {"a"}, "password": {"wrong"}},
			location: "/login",
		},
		{
			name:     "unknown username",
			target:   "/login",
			form:     url.Values{"username": {"nobody"}, "password": {"p1"}},
			location: "/login",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := ta.do(t, http.MethodPost, test.target, test.form, nil)
			wantRedirect(t, resp, test.location)
			if sessionCookie(resp) != "" {
				t.Error("failed attempt must not set a session cookie")
			}
		})
	}
}

// Requirement: protected operations short-circuit to the login redirect for
// missing or revoked tokens before touching the request body.
func TestAccessGate(t *testing.T) {
	ta := newTestApp(t, nil)

	tests := []struct {
		name    string
		method  string
		target  string
		cookies map[string]string
	}{
		{name: "listing without token", method: http.MethodGet, target: "/secrets"},
		{name: "submit without token", method: http.MethodPost, target: "/submit"},
		{name: "listing with bogus token", method: http.MethodGet, target: "/secrets",
			cookies: map[string]string{defaultCookieName: "forged"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := ta.do(t, test.method, test.target, nil, test.cookies)
			wantRedirect(t, resp, "/login")
		})
	}
}

// Requirement: logout is unconditional — no session, still redirected home.
func TestLogoutWithoutSession(t *testing.T) {
	ta := newTestApp(t, nil)
	resp := ta.do(t, http.MethodGet, "/logout", nil, nil)
	wantRedirect(t, resp, "/")
}

// Requirement: the delegated entry redirects to the provider authorization
// URL; the callback rejects a state mismatch.
func TestDelegatedRoutes(t *testing.T) {
	storage := memory.New()
	delegated := core.NewDelegatedAuthenticator(storage, core.ProviderConfig{
		ClientID:    "client-id",
		AuthURL:     "https://provider.example/authorize",
		TokenURL:    "https://provider.example/token",
		UserInfoURL: "https://provider.example/userinfo",
		RedirectURL: "http://localhost:3000/auth/provider/callback",
		Scopes:      []string{"profile"},
	})

	sessions := core.NewSessionManager(core.SessionConfig{MaxAge: time.Hour}, storage, nil)
	auth := core.NewAuth(storage, core.NewArgon2(), sessions)
	app := fiber.New()
	New(auth, delegated, Options{}).RegisterRoutes(app)
	ta := &testApp{app: app, storage: storage}

	resp := ta.do(t, http.MethodGet, "/auth/provider", nil, nil)
	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		t.Fatalf("status = %d, want a redirect", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "https://provider.example/authorize") {
		t.Fatalf("redirect location = %q, want provider authorization URL", location)
	}

	// Callback with a state that matches no cookie goes back to login.
	resp = ta.do(t, http.MethodGet, "/auth/provider/callback?state=forged&code=x", nil, nil)
	wantRedirect(t, resp, "/login")
}
