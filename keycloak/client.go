// Package keycloak implements the client side of the identity provider's
// OpenID-Connect token contract: password grant, refresh grant and the
// best-effort logout notification.
package keycloak

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/mihira-vl/launcher/internal/config"
)

// DefaultRequestTimeout bounds every call to the provider.
const DefaultRequestTimeout = 10 * time.Second

// defaultExpiresIn is assumed when the token response omits expires_in.
const defaultExpiresIn = 3600

// TokenSet is the consumed portion of a token endpoint response.
type TokenSet struct {
	AccessToken  string
	RefreshToken string

	// ExpiresIn is the provider's stated token lifetime in seconds. The
	// session manager subtracts its own safety margin from it; the raw
	// value is never used as an expiry instant directly.
	ExpiresIn int64
}

type endpoints struct {
	token  string
	logout string
}

// Client talks to a single realm of a Keycloak-style provider.
type Client struct {
	issuerBase string
	realm      string
	clientID   string
	httpClient *http.Client

	discoverOnce sync.Once
	endpoints    endpoints
}

type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a provider client for the configured realm. No network calls
// are made until the first grant.
func New(cfg config.ProviderConfig, options ...ClientOption) *Client {
	client := &Client{
		issuerBase: strings.TrimRight(cfg.GetIssuerBase(), "/"),
		realm:      cfg.GetRealm(),
		clientID:   cfg.GetClientID(),
		httpClient: &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

func (c *Client) realmURL() string {
	return c.issuerBase + "/realms/" + c.realm
}

// resolveEndpoints discovers the realm's endpoints via the OIDC well-known
// document, falling back to the standard Keycloak URL layout when the
// provider does not serve discovery metadata. Resolution happens once per
// client.
func (c *Client) resolveEndpoints(ctx context.Context) endpoints {
	c.discoverOnce.Do(func() {
		c.endpoints = endpoints{
			token:  c.realmURL() + "/protocol/openid-connect/token",
			logout: c.realmURL() + "/protocol/openid-connect/logout",
		}

		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, c.httpClient), c.realmURL())
		if err != nil {
			log.Debug().Err(err).Str("realm", c.realm).Msg("OIDC discovery unavailable, using standard endpoint layout")
			return
		}

		if tokenURL := provider.Endpoint().TokenURL; tokenURL != "" {
			c.endpoints.token = tokenURL
		}
		var claims struct {
			EndSessionEndpoint string `json:"end_session_endpoint"`
		}
		if err := provider.Claims(&claims); err == nil && claims.EndSessionEndpoint != "" {
			c.endpoints.logout = claims.EndSessionEndpoint
		}
	})
	return c.endpoints
}

// oauthConfig builds the grant configuration and binds our HTTP client into
// the context so the oauth2 package uses it for the exchange.
func (c *Client) oauthConfig(ctx context.Context) (*oauth2.Config, context.Context) {
	eps := c.resolveEndpoints(ctx)
	cfg := &oauth2.Config{
		ClientID: c.clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL: eps.token,
			// Public client: client_id travels in the form body, not in a
			// basic-auth header.
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return cfg, context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// PasswordGrant exchanges the user's credentials for a token pair.
// Provider rejections are returned as *ProviderError; transport failures are
// returned unchanged.
func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*TokenSet, error) {
	cfg, ctx := c.oauthConfig(ctx)

	token, err := cfg.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, providerError(err)
	}
	return newTokenSet(token), nil
}

// Refresh exchanges a refresh token for a new token pair. When the provider
// omits a rotated refresh token from the response the presented one is still
// valid, so it is carried over into the result.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	cfg, ctx := c.oauthConfig(ctx)

	token, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, providerError(err)
	}

	tokens := newTokenSet(token)
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

// Logout notifies the provider's logout endpoint that the refresh token
// should be retired. The response is ignored; callers treat any returned
// error as non-fatal.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	eps := c.resolveEndpoints(ctx)

	form := url.Values{
		"client_id":     {c.clientID},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, eps.logout, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "[Client.Logout] build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.Logout] post")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}

func newTokenSet(token *oauth2.Token) *TokenSet {
	expiresIn := token.ExpiresIn
	if expiresIn <= 0 && !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	return &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
	}
}
