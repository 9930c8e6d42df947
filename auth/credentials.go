package auth

import (
	"sync"
	"time"
)

// Credentials is the token pair issued by the identity provider together with
// the locally computed expiry instant. ExpiresAt already includes the safety
// margin, so the token is treated as expired slightly before the provider
// would reject it.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// credentialStore holds the process's single session: at most one Credentials
// value and at most one AuthenticatedUser. Every update replaces whole values
// under the lock so the access token, refresh token and expiry never tear;
// only the Service mutates it.
type credentialStore struct {
	mu    sync.RWMutex
	creds *Credentials
	user  *AuthenticatedUser
}

// replaceSession installs a new session atomically, discarding any previous
// credentials and user together.
func (s *credentialStore) replaceSession(creds Credentials, user AuthenticatedUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
	s.user = &user
}

// replaceCredentials swaps the token pair while keeping the user. Used on
// refresh and forced expiry.
func (s *credentialStore) replaceCredentials(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
}

func (s *credentialStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	s.user = nil
}

// credentials returns a copy of the current token pair, if any.
func (s *credentialStore) credentials() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return Credentials{}, false
	}
	return *s.creds, true
}

// currentUser returns a copy of the authenticated user, or nil when logged out.
func (s *credentialStore) currentUser() *AuthenticatedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}
