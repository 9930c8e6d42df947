package config

type Config interface {
	EnvConfig
	ProviderConfig
	BackendConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

// ProviderConfig carries the identity-provider coordinates: base URL, realm
// name and the public client identifier used for all grants.
type ProviderConfig interface {
	GetIssuerBase() string
	GetRealm() string
	GetClientID() string
}

// BackendConfig carries the launcher backend's API base URL.
type BackendConfig interface {
	GetAPIBaseURL() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
