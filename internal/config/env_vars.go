package config

import "os"

const (
	appNameVar    = "APP_NAME"
	issuerBaseVar = "KC_BASE"
	realmVar      = "KC_REALM"
	clientIDVar   = "KC_CLIENT_ID"
	apiBaseVar    = "API_BASE_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ ProviderConfig = EnvVars{}
var _ BackendConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Mihira Launcher")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetIssuerBase returns the identity provider's base URL (e.g. "https://auth.example.com").
// Realm and protocol paths are appended by the keycloak client.
func (EnvVars) GetIssuerBase() string {
	return GetEnv(issuerBaseVar, "http://localhost:8080")
}

func (EnvVars) GetRealm() string {
	return GetEnv(realmVar, "MIHIRA-REALM")
}

func (EnvVars) GetClientID() string {
	return GetEnv(clientIDVar, "mihira-cli")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseVar, "http://localhost:4007/api/v1")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
