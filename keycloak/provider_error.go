package keycloak

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ProviderError is a rejection from the token endpoint: the provider
// answered, but refused the grant. Transport failures never become
// ProviderErrors.
type ProviderError struct {
	StatusCode  int
	Code        string // OAuth2 "error" field, e.g. "invalid_grant"
	Description string // OAuth2 "error_description" field, verbatim
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("provider rejected request (%d): %s: %s", e.StatusCode, e.Code, e.Description)
	}
	if e.Code != "" {
		return fmt.Sprintf("provider rejected request (%d): %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("provider rejected request (%d)", e.StatusCode)
}

// Message returns the provider's error description verbatim when available,
// the error code otherwise, and a generic message as a last resort.
func (e *ProviderError) Message() string {
	if e.Description != "" {
		return e.Description
	}
	if e.Code != "" {
		return e.Code
	}
	return "the identity provider rejected the request"
}

// providerError converts oauth2 retrieval failures into ProviderErrors and
// leaves every other error untouched.
func providerError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		perr := &ProviderError{
			Code:        re.ErrorCode,
			Description: re.ErrorDescription,
		}
		if re.Response != nil {
			perr.StatusCode = re.Response.StatusCode
		}
		return perr
	}
	return err
}
