// Package backend holds the thin clients for the launcher backend endpoints
// that run outside the authorized request pipeline.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mihira-vl/launcher/internal/config"
)

// DefaultRequestTimeout bounds identity lookups.
const DefaultRequestTimeout = 10 * time.Second

// Identity is the backend's view of the authenticated principal as returned
// by GET /auth/me. The endpoint does not return an email address; the session
// manager records the login identifier instead.
type Identity struct {
	KCUserID    string   `json:"kc_user_id"`
	Username    *string  `json:"username,omitempty"`
	RealmRoles  []string `json:"realm_roles,omitempty"`
	ClientRoles []string `json:"client_roles,omitempty"`
	Groups      []string `json:"groups,omitempty"`
}

// IdentityClient calls the backend identity endpoint with a bare bearer
// token. It is used during login, before any session exists, so it cannot go
// through the session-backed pipeline. The lookup is a single attempt: there
// is no session to refresh against yet, so a 401 here fails the login.
type IdentityClient struct {
	baseURL    string
	httpClient *http.Client
}

type IdentityClientOption func(*IdentityClient)

func WithHTTPClient(hc *http.Client) IdentityClientOption {
	return func(c *IdentityClient) {
		c.httpClient = hc
	}
}

func NewIdentityClient(cfg config.BackendConfig, options ...IdentityClientOption) *IdentityClient {
	client := &IdentityClient{
		baseURL:    strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		httpClient: &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// WhoAmI fetches the identity attributes behind an access token.
func (c *IdentityClient) WhoAmI(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[IdentityClient.WhoAmI] build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[IdentityClient.WhoAmI] get")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[IdentityClient.WhoAmI] identity endpoint returned %s", resp.Status)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, errors.Wrap(err, "[IdentityClient.WhoAmI] decode response")
	}
	return &identity, nil
}
