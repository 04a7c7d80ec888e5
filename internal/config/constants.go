package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 60 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// CacheRetention is how long unused directory cache rows may linger before
// the cleanup job removes them. Staleness for reads is governed separately by
// CACHE_STALENESS_SECONDS; this horizon only reclaims rows nobody re-reads.
const CacheRetention = 24 * time.Hour

// Default rate limiting for the inbound API
const DefaultRateLimitPerMin = 60

// Discord client tuning
const (
	// DiscordRequestTimeout bounds every outbound call to the Discord API.
	DiscordRequestTimeout = 15 * time.Second
	// DiscordRetryAfterFallback is used when a 429 carries no usable
	// Retry-After value.
	DiscordRetryAfterFallback = 5 * time.Second
	// TokenRefreshMargin is how close to expiry an access token may get
	// before a refresh exchange is forced.
	TokenRefreshMargin = 5 * time.Minute
	// OAuthStateTTL bounds how long a pending authorization may sit between
	// redirect and callback.
	OAuthStateTTL = 10 * time.Minute
)
