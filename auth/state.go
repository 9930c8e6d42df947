package auth

// State is the session manager's resting state, derived from the stored
// credentials and the clock.
type State int

const (
	// StateLoggedOut means no session exists. Initial and terminal state.
	StateLoggedOut State = iota

	// StateActive means the stored access token is still inside its computed
	// expiry.
	StateActive

	// StateStale means the access token is past its computed expiry but a
	// refresh token is available.
	StateStale

	// StateExpired means the access token is past expiry and no refresh is
	// possible.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateActive:
		return "active"
	case StateStale:
		return "stale"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}
