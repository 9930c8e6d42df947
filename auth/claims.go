package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims are the access-token claims the launcher cares about. They back
// fill identity attributes the backend omits; signature verification is the
// resource server's job, not ours.
type tokenClaims struct {
	Subject           string
	PreferredUsername string
}

// accessTokenClaims parses the access token without verification. Opaque
// (non-JWT) tokens yield empty claims.
func accessTokenClaims(accessToken string) tokenClaims {
	parsed, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return tokenClaims{}
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return tokenClaims{}
	}

	var claims tokenClaims
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if username, ok := mapClaims["preferred_username"].(string); ok {
		claims.PreferredUsername = username
	}
	return claims
}
