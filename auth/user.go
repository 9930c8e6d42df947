package auth

// AuthenticatedUser is the identity established at login. Email is the login
// identifier supplied by the caller; the backend identity endpoint does not
// return one. The value is immutable once created and discarded on logout.
type AuthenticatedUser struct {
	ID          string
	Email       string
	DisplayName string
}
