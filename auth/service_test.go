package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/mihira-vl/launcher/auth"
	"github.com/mihira-vl/launcher/backend"
	apperrors "github.com/mihira-vl/launcher/internal/errors"
	"github.com/mihira-vl/launcher/internal/utils"
	"github.com/mihira-vl/launcher/keycloak"
)

const (
	testEmail     = "jane.doe@example.com"
	testPassword  = "password123"
	testUserID    = "kc-user-1"
	testUsername  = "jdoe"
	accessToken1  = "access-token-1"
	accessToken2  = "access-token-2"
	refreshToken1 = "refresh-token-1"
	refreshToken2 = "refresh-token-2"
)

// fakeProvider is an in-memory stand-in for the identity provider.
type fakeProvider struct {
	mu sync.Mutex

	grantTokens *keycloak.TokenSet
	grantErr    error
	grantCalls  int

	refreshTokens    *keycloak.TokenSet
	refreshErr       error
	refreshCalls     int
	refreshDelay     time.Duration
	lastRefreshToken string

	logoutErr       error
	logoutCalls     int
	lastLogoutToken string
}

func (f *fakeProvider) PasswordGrant(_ context.Context, _, _ string) (*keycloak.TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grantCalls++
	if f.grantErr != nil {
		return nil, f.grantErr
	}
	tokens := *f.grantTokens
	return &tokens, nil
}

func (f *fakeProvider) Refresh(_ context.Context, refreshToken string) (*keycloak.TokenSet, error) {
	f.mu.Lock()
	delay := f.refreshDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	f.lastRefreshToken = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	tokens := *f.refreshTokens
	return &tokens, nil
}

func (f *fakeProvider) Logout(_ context.Context, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.lastLogoutToken = refreshToken
	return f.logoutErr
}

type fakeIdentity struct {
	identity  *backend.Identity
	err       error
	lastToken string
}

func (f *fakeIdentity) WhoAmI(_ context.Context, accessToken string) (*backend.Identity, error) {
	f.lastToken = accessToken
	if f.err != nil {
		return nil, f.err
	}
	identity := *f.identity
	return &identity, nil
}

// testClock is a movable clock injected via WithNowTime.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testFixture struct {
	provider *fakeProvider
	identity *fakeIdentity
	clock    *testClock
	service  *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	provider := &fakeProvider{
		grantTokens: &keycloak.TokenSet{
			AccessToken:  accessToken1,
			RefreshToken: refreshToken1,
			ExpiresIn:    3600,
		},
		refreshTokens: &keycloak.TokenSet{
			AccessToken:  accessToken2,
			RefreshToken: refreshToken2,
			ExpiresIn:    3600,
		},
	}
	identity := &fakeIdentity{
		identity: &backend.Identity{
			KCUserID: testUserID,
			Username: utils.Ptr(testUsername),
		},
	}
	clock := newTestClock()

	service, err := auth.NewService(provider, identity, auth.WithNowTime(clock.Now))
	require.NoError(t, err)

	return &testFixture{
		provider: provider,
		identity: identity,
		clock:    clock,
		service:  service,
	}
}

func (f *testFixture) login(t *testing.T) *auth.AuthenticatedUser {
	t.Helper()
	user, err := f.service.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	return user
}

func TestService_Login(t *testing.T) {
	t.Run("success stores user and applies the fixed 60s margin", func(t *testing.T) {
		f := setupTestFixture(t)

		user := f.login(t)
		require.Equal(t, testUserID, user.ID)
		require.Equal(t, testEmail, user.Email)
		require.Equal(t, testUsername, user.DisplayName)
		require.Equal(t, accessToken1, f.identity.lastToken)

		require.Equal(t, auth.StateActive, f.service.State())
		// expires_in=3600 with the fixed 60s margin leaves exactly 59 minutes.
		require.InDelta(t, 59.0, f.service.MinutesRemaining(), 0.0001)
		require.Greater(t, f.service.MinutesRemaining(), 0.0)
		require.Less(t, f.service.MinutesRemaining(), 60.0)
	})

	t.Run("provider rejection surfaces the error description verbatim", func(t *testing.T) {
		f := setupTestFixture(t)
		f.provider.grantErr = &keycloak.ProviderError{StatusCode: 400, Code: "invalid_grant"}

		_, err := f.service.Login(context.Background(), "bob", "wrong")
		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrAuthFailure)
		require.Contains(t, err.Error(), "invalid_grant")
		require.Equal(t, auth.StateLoggedOut, f.service.State())
	})

	t.Run("failed login does not disturb the existing session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.provider.grantErr = &keycloak.ProviderError{StatusCode: 400, Code: "invalid_grant", Description: "Invalid user credentials"}
		_, err := f.service.Login(context.Background(), testEmail, "wrong")
		require.ErrorIs(t, err, apperrors.ErrAuthFailure)
		require.Contains(t, err.Error(), "Invalid user credentials")

		require.Equal(t, auth.StateActive, f.service.State())
		user := f.service.CurrentUser()
		require.NotNil(t, user)
		require.Equal(t, testUserID, user.ID)

		token, err := f.service.AccessToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, accessToken1, token)
	})

	t.Run("identity lookup failure fails the login", func(t *testing.T) {
		f := setupTestFixture(t)
		f.identity.err = context.DeadlineExceeded

		_, err := f.service.Login(context.Background(), testEmail, testPassword)
		require.Error(t, err)
		require.Equal(t, auth.StateLoggedOut, f.service.State())
	})

	t.Run("identity attributes fall back to access token claims", func(t *testing.T) {
		f := setupTestFixture(t)

		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":                "claim-subject",
			"preferred_username": "claim-user",
		}).SignedString([]byte("test-key"))
		require.NoError(t, err)

		f.provider.grantTokens.AccessToken = signed
		f.identity.identity = &backend.Identity{}

		user := f.login(t)
		require.Equal(t, "claim-subject", user.ID)
		require.Equal(t, "claim-user", user.DisplayName)
	})

	t.Run("new login replaces the previous session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.provider.grantTokens = &keycloak.TokenSet{AccessToken: "second-token", RefreshToken: "second-refresh", ExpiresIn: 3600}
		f.identity.identity = &backend.Identity{KCUserID: "kc-user-2"}

		user := f.login(t)
		require.Equal(t, "kc-user-2", user.ID)

		token, err := f.service.AccessToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, "second-token", token)
	})
}

func TestService_AccessToken(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.AccessToken(context.Background())
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	})

	t.Run("back-to-back calls return the identical token without refreshing", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		first, err := f.service.AccessToken(context.Background())
		require.NoError(t, err)
		second, err := f.service.AccessToken(context.Background())
		require.NoError(t, err)

		require.Equal(t, first, second)
		require.Equal(t, 0, f.provider.refreshCalls)
	})

	t.Run("expired token refreshes with the adaptive margin", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.provider.refreshTokens.ExpiresIn = 300

		f.clock.Advance(3541 * time.Second)
		require.Equal(t, auth.StateStale, f.service.State())

		token, err := f.service.AccessToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, accessToken2, token)
		require.Equal(t, refreshToken1, f.provider.lastRefreshToken)

		// expires_in=300 gives a 30s margin (300/10 <= 60), so 270s remain.
		require.InDelta(t, 4.5, f.service.MinutesRemaining(), 0.0001)
		require.Equal(t, auth.StateActive, f.service.State())
	})

	t.Run("long-lived refresh caps the margin at 60s", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.provider.refreshTokens.ExpiresIn = 7200

		f.clock.Advance(3541 * time.Second)
		_, err := f.service.AccessToken(context.Background())
		require.NoError(t, err)

		// 7200s minus the 60s cap leaves 119 minutes.
		require.InDelta(t, 119.0, f.service.MinutesRemaining(), 0.0001)
	})

	t.Run("refresh produces a strictly later expiry", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		remaining := time.Duration(f.service.MinutesRemaining() * float64(time.Minute))
		loginExpiry := f.clock.Now().Add(remaining)
		f.clock.Advance(3541 * time.Second)

		_, err := f.service.AccessToken(context.Background())
		require.NoError(t, err)

		// Same expires_in with a smaller margin and a later clock: the new
		// expiry is strictly later than the one computed at login.
		remaining = time.Duration(f.service.MinutesRemaining() * float64(time.Minute))
		require.True(t, f.clock.Now().Add(remaining).After(loginExpiry))
	})

	t.Run("refresh failure invalidates the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.provider.refreshErr = &keycloak.ProviderError{StatusCode: 400, Code: "invalid_grant"}

		f.clock.Advance(3541 * time.Second)
		_, err := f.service.AccessToken(context.Background())
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		require.Equal(t, auth.StateLoggedOut, f.service.State())
		require.Nil(t, f.service.CurrentUser())
	})

	t.Run("missing refresh token invalidates the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.provider.grantTokens.RefreshToken = ""
		f.login(t)

		f.clock.Advance(3541 * time.Second)
		require.Equal(t, auth.StateExpired, f.service.State())

		_, err := f.service.AccessToken(context.Background())
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		require.Equal(t, 0, f.provider.refreshCalls)
		require.Equal(t, auth.StateLoggedOut, f.service.State())
	})

	t.Run("concurrent callers share one in-flight refresh", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.provider.refreshDelay = 50 * time.Millisecond

		f.clock.Advance(3541 * time.Second)

		var wg sync.WaitGroup
		tokens := make([]string, 4)
		errs := make([]error, 4)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tokens[i], errs[i] = f.service.AccessToken(context.Background())
			}(i)
		}
		wg.Wait()

		for i := range tokens {
			require.NoError(t, errs[i])
			require.Equal(t, accessToken2, tokens[i])
		}
		require.Equal(t, 1, f.provider.refreshCalls)
	})
}

func TestService_ForceExpire(t *testing.T) {
	t.Run("marks the token stale and forces the next read through a refresh", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.service.ForceExpire()
		require.Equal(t, auth.StateStale, f.service.State())
		require.Zero(t, f.service.MinutesRemaining())

		token, err := f.service.AccessToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, accessToken2, token)
		require.Equal(t, 1, f.provider.refreshCalls)
	})

	t.Run("no-op without a session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.service.ForceExpire()
		require.Equal(t, auth.StateLoggedOut, f.service.State())
	})
}

func TestService_Logout(t *testing.T) {
	t.Run("notifies the provider and clears the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.service.Logout(context.Background())
		require.Equal(t, 1, f.provider.logoutCalls)
		require.Equal(t, refreshToken1, f.provider.lastLogoutToken)
		require.Equal(t, auth.StateLoggedOut, f.service.State())
		require.Nil(t, f.service.CurrentUser())
	})

	t.Run("provider notification failure is swallowed", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)
		f.provider.logoutErr = context.DeadlineExceeded

		f.service.Logout(context.Background())
		require.Equal(t, auth.StateLoggedOut, f.service.State())
	})

	t.Run("idempotent without a session", func(t *testing.T) {
		f := setupTestFixture(t)

		f.service.Logout(context.Background())
		require.Equal(t, 0, f.provider.logoutCalls)
		require.Equal(t, auth.StateLoggedOut, f.service.State())
	})
}

func TestService_AuthorizationHeader(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	header, err := f.service.AuthorizationHeader(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer "+accessToken1, header)

	f.service.Logout(context.Background())
	_, err = f.service.AuthorizationHeader(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestService_MinutesRemaining(t *testing.T) {
	f := setupTestFixture(t)
	require.Zero(t, f.service.MinutesRemaining())

	f.login(t)
	f.clock.Advance(4000 * time.Second)
	// Never negative, even long past expiry.
	require.Zero(t, f.service.MinutesRemaining())
}
