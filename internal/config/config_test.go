package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mihira-vl/launcher/internal/config"
)

func TestEnvVars_Defaults(t *testing.T) {
	c := config.New()

	require.Equal(t, "Mihira Launcher", c.GetAppName())
	require.Equal(t, "http://localhost:8080", c.GetIssuerBase())
	require.Equal(t, "MIHIRA-REALM", c.GetRealm())
	require.Equal(t, "mihira-cli", c.GetClientID())
	require.Equal(t, "http://localhost:4007/api/v1", c.GetAPIBaseURL())
	require.Equal(t, "DEV", c.GetEnv())
}

func TestEnvVars_Overrides(t *testing.T) {
	t.Setenv("KC_BASE", "https://auth.example.com")
	t.Setenv("KC_REALM", "STUDIO")
	t.Setenv("KC_CLIENT_ID", "studio-cli")
	t.Setenv("API_BASE_URL", "https://api.example.com/api/v2")
	t.Setenv("ENV", "PROD")

	c := config.New()
	require.Equal(t, "https://auth.example.com", c.GetIssuerBase())
	require.Equal(t, "STUDIO", c.GetRealm())
	require.Equal(t, "studio-cli", c.GetClientID())
	require.Equal(t, "https://api.example.com/api/v2", c.GetAPIBaseURL())
	require.Equal(t, "PROD", c.GetEnv())
}
