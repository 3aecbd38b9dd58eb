package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, time.Hour, cfg.TokenTime)
				assert.Empty(t, cfg.TokenKey)
				assert.Equal(t, 30*time.Second, cfg.ArcGISHTTPTimeout)
				assert.Equal(t, time.Duration(0), cfg.CatalogCacheTTL)
				assert.False(t, cfg.CatalogCrawlServices)
				assert.Equal(t, time.Second, cfg.GPUpdateDelay)
				assert.Equal(t, 30*time.Minute, cfg.GPMaxPollDuration)
				assert.True(t, cfg.CircuitBreakerEnabled)
				assert.Equal(t, "gateway", cfg.MetricsNamespace)
				assert.Nil(t, cfg.AllowedGroups())
				assert.Nil(t, cfg.TrustedProxyList())
				assert.Nil(t, cfg.CredentialHosts())
			},
		},
		{
			name: "load proxy and credential host configuration",
			envVars: map[string]string{
				"TRUSTED_PROXIES":      "10.0.0.0/8, 192.168.1.1",
				"ARCGIS_ALLOWED_HOSTS": "gis.example.com,maps.example.com:6443",
				"ARCGIS_PROXY_URL":     "https://proxy.example.com/proxy",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxyList())
				assert.Equal(t,
					[]string{"gis.example.com", "maps.example.com:6443", "proxy.example.com"},
					cfg.CredentialHosts())
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "localhost",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load custom token configuration",
			envVars: map[string]string{
				"TOKEN_KEY":            "s3cret",
				"TOKEN_TIME":           "120",
				"TOKEN_ALLOWED_GROUPS": "planning, utilities ,,",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "s3cret", cfg.TokenKey)
				assert.Equal(t, 2*time.Minute, cfg.TokenTime)
				assert.Equal(t, []string{"planning", "utilities"}, cfg.AllowedGroups())
			},
		},
		{
			name: "load custom geoprocessing configuration",
			envVars: map[string]string{
				"GP_UPDATE_DELAY_MS":           "250",
				"GP_MAX_POLL_DURATION_SECONDS": "60",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 250*time.Millisecond, cfg.GPUpdateDelay)
				assert.Equal(t, time.Minute, cfg.GPMaxPollDuration)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "debug", cfg.GetGinMode())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			cfg := Load()

			tt.validate(t, cfg)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a, b"))
}
