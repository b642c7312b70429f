package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const defaultProviderTimeout = 10 * time.Second

// ProviderConfig describes the delegated identity provider. Defaults are
// Google-shaped; any provider with an OAuth code flow and a bearer-token
// userinfo endpoint fits.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
}

// DelegatedAuthenticator runs the provider handshake:
//
//	unauthenticated -> AuthCodeURL redirect
//	pending         -> provider calls back with a code
//	resolved        -> Resolve exchanges the code, fetches the profile and
//	                   finds-or-creates the identity
//
// Nothing is persisted before resolution; an abandoned pending flow leaves no
// identity behind. Every external failure surfaces as ErrProviderUnavailable.
type DelegatedAuthenticator struct {
	storage     IdentityStorage
	oauth       *oauth2.Config
	userInfoURL string
	client      *http.Client
}

func NewDelegatedAuthenticator(storage IdentityStorage, cfg ProviderConfig) *DelegatedAuthenticator {
	return &DelegatedAuthenticator{
		storage: storage,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		client:      &http.Client{Timeout: defaultProviderTimeout},
	}
}

// AuthCodeURL returns the provider authorization URL carrying the requested
// scope, the callback address and the caller's state parameter.
func (d *DelegatedAuthenticator) AuthCodeURL(state string) string {
	return d.oauth.AuthCodeURL(state)
}

// Resolve exchanges the authorization code for an access token, fetches the
// provider profile and reuses or creates the matching identity record.
func (d *DelegatedAuthenticator) Resolve(ctx context.Context, code string) (*Identity, error) {
	if code == "" {
		return nil, ErrMissingAuthCode
	}

	// Bound the exchange with our own client so a stalled provider cannot
	// hold the request open indefinitely.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.client)

	token, err := d.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", ErrProviderUnavailable, err)
	}

	profile, err := d.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: profile fetch: %v", ErrProviderUnavailable, err)
	}

	return d.findOrCreate(profile)
}

type providerProfile struct {
	Subject     string
	DisplayName string
}

func (d *DelegatedAuthenticator) fetchProfile(ctx context.Context, accessToken string) (providerProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.userInfoURL, nil)
	if err != nil {
		return providerProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return providerProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return providerProfile{}, errors.New("profile request failed")
	}

	var payload struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return providerProfile{}, err
	}
	if payload.Sub == "" {
		return providerProfile{}, errors.New("missing provider user id")
	}

	return providerProfile{
		Subject:     payload.Sub,
		DisplayName: firstNonEmpty(payload.Name, payload.Email, payload.Sub),
	}, nil
}

// findOrCreate is the explicit two-step contract: look up by provider id,
// attempt a create on a miss, and on a lost race re-read the winner's record.
// The store's unique constraint turns two concurrent first sign-ins into one
// row plus one ErrProviderLinked.
func (d *DelegatedAuthenticator) findOrCreate(profile providerProfile) (*Identity, error) {
	identity, err := d.storage.GetIdentityByProviderID(profile.Subject)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up provider id: %w", err)
	}

	providerID := profile.Subject
	fresh := &Identity{
		ProviderID:  &providerID,
		DisplayName: profile.DisplayName,
	}

	err = d.storage.CreateIdentity(fresh)
	if err == nil {
		return fresh, nil
	}
	if errors.Is(err, ErrProviderLinked) {
		return d.storage.GetIdentityByProviderID(providerID)
	}
	return nil, fmt.Errorf("failed to create identity: %w", err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
