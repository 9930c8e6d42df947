// Package auth owns the session lifecycle: password-grant login, expiry
// tracking with a safety margin, transparent refresh and deterministic
// teardown.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/mihira-vl/launcher/backend"
	apperrors "github.com/mihira-vl/launcher/internal/errors"
	"github.com/mihira-vl/launcher/internal/utils"
	"github.com/mihira-vl/launcher/keycloak"
)

const (
	// loginSafetyMargin is the fixed margin subtracted from the provider's
	// stated lifetime on an initial login.
	loginSafetyMargin = 60 * time.Second

	// maxRefreshMarginSeconds caps the adaptive margin applied after a
	// refresh.
	maxRefreshMarginSeconds = 60
)

// TokenProvider is the slice of the identity provider the session manager
// needs.
type TokenProvider interface {
	PasswordGrant(ctx context.Context, username, password string) (*keycloak.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*keycloak.TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

// IdentityAPI resolves the provider-side identity attributes behind a fresh
// access token.
type IdentityAPI interface {
	WhoAmI(ctx context.Context, accessToken string) (*backend.Identity, error)
}

// Service is the session manager. It exclusively owns the credential store;
// there is never more than one live session per process.
type Service struct {
	provider TokenProvider
	identity IdentityAPI
	store    credentialStore
	refresh  singleflight.Group
	nowTime  func() time.Time // injectable for testing
}

type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes the session manager with its two collaborators.
func NewService(provider TokenProvider, identity IdentityAPI, options ...ServiceOption) (*Service, error) {
	if provider == nil {
		return nil, errors.New("[NewService] provider is required")
	}
	if identity == nil {
		return nil, errors.New("[NewService] identity API is required")
	}

	service := &Service{
		provider: provider,
		identity: identity,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Login exchanges the user's credentials for a token pair, resolves the
// identity behind it and installs the new session, replacing any previous one
// atomically. A rejected login never disturbs an existing session.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthenticatedUser, error) {
	tokens, err := s.provider.PasswordGrant(ctx, email, password)
	if err != nil {
		var perr *keycloak.ProviderError
		if apperrors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAuthFailure, perr.Message())
		}
		return nil, errors.Wrap(err, "[Service.Login] password grant")
	}

	creds := s.newCredentials(tokens, loginSafetyMargin)

	me, err := s.identity.WhoAmI(ctx, creds.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] identity lookup")
	}

	user := AuthenticatedUser{
		ID:          me.KCUserID,
		Email:       email,
		DisplayName: utils.Value(me.Username),
	}
	claims := accessTokenClaims(creds.AccessToken)
	if user.DisplayName == "" {
		user.DisplayName = claims.PreferredUsername
	}
	if user.ID == "" {
		user.ID = claims.Subject
	}

	s.store.replaceSession(creds, user)

	log.Debug().Str("user_id", user.ID).Time("expires_at", creds.ExpiresAt).Msg("login succeeded")
	return &user, nil
}

// AccessToken returns the current access token, refreshing it first when the
// computed expiry has passed. Concurrent callers share a single in-flight
// refresh. Any refresh failure clears the session before the error is
// returned.
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	if creds, ok := s.store.credentials(); ok && s.nowTime().Before(creds.ExpiresAt) {
		return creds.AccessToken, nil
	}

	token, err, _ := s.refresh.Do("refresh", func() (interface{}, error) {
		return s.refreshAccessToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (s *Service) refreshAccessToken(ctx context.Context) (string, error) {
	// Re-check after winning the flight: the previous flight may have stored
	// a fresh token already.
	creds, ok := s.store.credentials()
	if !ok {
		return "", fmt.Errorf("%w: not logged in", apperrors.ErrSessionExpired)
	}
	if s.nowTime().Before(creds.ExpiresAt) {
		return creds.AccessToken, nil
	}
	if creds.RefreshToken == "" {
		s.store.clear()
		return "", fmt.Errorf("%w: no refresh token available", apperrors.ErrSessionExpired)
	}

	tokens, err := s.provider.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		s.store.clear()
		log.Warn().Err(err).Msg("token refresh failed, session invalidated")
		return "", fmt.Errorf("%w: refresh rejected: %v", apperrors.ErrSessionExpired, err)
	}

	next := s.newCredentials(tokens, refreshMargin(tokens.ExpiresIn))
	s.store.replaceCredentials(next)
	log.Debug().Time("expires_at", next.ExpiresAt).Msg("access token refreshed")
	return next.AccessToken, nil
}

// ForceExpire marks the current token expired immediately so the next
// AccessToken call is forced through a refresh. No-op without a session.
func (s *Service) ForceExpire() {
	creds, ok := s.store.credentials()
	if !ok {
		return
	}
	creds.ExpiresAt = s.nowTime().Add(-time.Second)
	s.store.replaceCredentials(creds)
}

// Logout notifies the provider when a refresh token exists and then clears
// the session unconditionally. It always succeeds locally and is idempotent.
func (s *Service) Logout(ctx context.Context) {
	if creds, ok := s.store.credentials(); ok && creds.RefreshToken != "" {
		if err := s.provider.Logout(ctx, creds.RefreshToken); err != nil {
			log.Warn().Err(err).Msg("provider logout notification failed")
		}
	}
	s.store.clear()
}

// AuthorizationHeader returns the Authorization header value for the current
// session, refreshing the token when needed.
func (s *Service) AuthorizationHeader(ctx context.Context) (string, error) {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// MinutesRemaining reports the wall-clock distance to the computed expiry,
// floored at zero. Returns 0 when logged out.
func (s *Service) MinutesRemaining() float64 {
	creds, ok := s.store.credentials()
	if !ok {
		return 0
	}
	remaining := creds.ExpiresAt.Sub(s.nowTime())
	if remaining < 0 {
		return 0
	}
	return remaining.Minutes()
}

// State derives the session state from the stored credentials and the clock.
func (s *Service) State() State {
	creds, ok := s.store.credentials()
	if !ok {
		return StateLoggedOut
	}
	if s.nowTime().Before(creds.ExpiresAt) {
		return StateActive
	}
	if creds.RefreshToken != "" {
		return StateStale
	}
	return StateExpired
}

// CurrentUser returns the authenticated user, or nil when logged out.
func (s *Service) CurrentUser() *AuthenticatedUser {
	return s.store.currentUser()
}

func (s *Service) newCredentials(tokens *keycloak.TokenSet, margin time.Duration) Credentials {
	return Credentials{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    s.nowTime().Add(time.Duration(tokens.ExpiresIn)*time.Second - margin),
	}
}

// refreshMargin bounds the early-refresh window after a refresh: a tenth of
// the token's stated lifetime, capped at 60 seconds.
func refreshMargin(expiresIn int64) time.Duration {
	margin := expiresIn / 10
	if margin > maxRefreshMarginSeconds {
		margin = maxRefreshMarginSeconds
	}
	if margin < 0 {
		margin = 0
	}
	return time.Duration(margin) * time.Second
}
