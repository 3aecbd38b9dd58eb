// Package config provides application configuration through environment variables.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// TrustedProxies is a comma-separated list of proxy addresses or CIDRs whose
	// X-Forwarded-For header is honored. Empty means the peer address is the client.
	TrustedProxies string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// TokenKey is the secret the gateway derives its token encryption key from.
	TokenKey string
	// TokenKeyKMSURI, when set, means TokenKey holds base64 ciphertext that must be
	// decrypted by the KMS keeper at this URI (e.g. "base64key://...", "awskms://...").
	TokenKeyKMSURI string
	// TokenTime is the lifetime of tokens issued by the gateway.
	TokenTime time.Duration
	// TokenAllowedGroups is a comma-separated list of groups allowed to use the API.
	// Empty means any group holding a valid token is allowed.
	TokenAllowedGroups string

	// ArcGISProxyURL is the default proxy requests to ArcGIS servers are rewritten through.
	ArcGISProxyURL string
	// ArcGISUsername is the account used to acquire tokens for secured catalogs.
	ArcGISUsername string
	// ArcGISPassword is the password for ArcGISUsername.
	ArcGISPassword string
	// ArcGISAllowedHosts is a comma-separated list of hosts the gateway may send
	// ArcGISUsername and ArcGISPassword to. The host of ArcGISProxyURL is always allowed.
	ArcGISAllowedHosts string
	// ArcGISHTTPTimeout bounds every outbound request to an ArcGIS server.
	ArcGISHTTPTimeout time.Duration
	// ArcGISTokenExpiration is the lifetime requested for ArcGIS server tokens.
	ArcGISTokenExpiration time.Duration

	// CatalogCacheTTL is how long a discovered catalog stays cached. Zero keeps it until invalidated.
	CatalogCacheTTL time.Duration
	// CatalogCrawlServices builds every service of a catalog when it is first discovered.
	CatalogCrawlServices bool

	// GPUpdateDelay is the interval between geoprocessing job status polls.
	GPUpdateDelay time.Duration
	// GPMaxPollDuration caps how long a job is watched before the watch fails.
	GPMaxPollDuration time.Duration

	// CircuitBreakerEnabled wraps ArcGIS transport calls with a circuit breaker.
	CircuitBreakerEnabled bool

	// RateLimitEnabled indicates whether per-group rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second for each token group.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for each token group.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// ShutdownTimeout bounds graceful shutdown of the servers.
	ShutdownTimeout time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		TrustedProxies: env.GetString("TRUSTED_PROXIES", ""),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Tokens
		TokenKey:           env.GetString("TOKEN_KEY", ""),
		TokenKeyKMSURI:     env.GetString("TOKEN_KEY_KMS_URI", ""),
		TokenTime:          env.GetDuration("TOKEN_TIME", 3600, time.Second),
		TokenAllowedGroups: env.GetString("TOKEN_ALLOWED_GROUPS", ""),

		// ArcGIS
		ArcGISProxyURL:        env.GetString("ARCGIS_PROXY_URL", ""),
		ArcGISUsername:        env.GetString("ARCGIS_USERNAME", ""),
		ArcGISPassword:        env.GetString("ARCGIS_PASSWORD", ""),
		ArcGISAllowedHosts:    env.GetString("ARCGIS_ALLOWED_HOSTS", ""),
		ArcGISHTTPTimeout:     env.GetDuration("ARCGIS_HTTP_TIMEOUT_SECONDS", 30, time.Second),
		ArcGISTokenExpiration: env.GetDuration("ARCGIS_TOKEN_EXPIRATION_MINUTES", 60, time.Minute),
		CatalogCacheTTL:       env.GetDuration("CATALOG_CACHE_TTL_SECONDS", 0, time.Second),
		CatalogCrawlServices:  env.GetBool("CATALOG_CRAWL_SERVICES", false),

		// Geoprocessing
		GPUpdateDelay:     env.GetDuration("GP_UPDATE_DELAY_MS", 1000, time.Millisecond),
		GPMaxPollDuration: env.GetDuration("GP_MAX_POLL_DURATION_SECONDS", 1800, time.Second),

		CircuitBreakerEnabled: env.GetBool("CIRCUIT_BREAKER_ENABLED", true),

		// Rate Limiting (per token group)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "gateway"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 30, time.Second),
	}
}

// AllowedGroups returns TokenAllowedGroups split into trimmed, non-empty names.
func (c *Config) AllowedGroups() []string {
	return SplitList(c.TokenAllowedGroups)
}

// TrustedProxyList returns TrustedProxies split into trimmed entries.
func (c *Config) TrustedProxyList() []string {
	return SplitList(c.TrustedProxies)
}

// CredentialHosts returns the hosts that may receive the ArcGIS account: every
// entry of ArcGISAllowedHosts plus the host of ArcGISProxyURL.
func (c *Config) CredentialHosts() []string {
	hosts := SplitList(c.ArcGISAllowedHosts)
	if c.ArcGISProxyURL == "" {
		return hosts
	}
	if u, err := url.Parse(c.ArcGISProxyURL); err == nil && u.Host != "" {
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// SplitList parses a comma-separated list and trims whitespace.
// Returns nil if the input holds no entries.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
