package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
)

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Database defaults
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Timeouts
const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// Redis key prefixes
const (
	RedisKeyFreeBusy   = "freebusy:"
	RedisKeyOAuthState = "oauth_state:"
)

// OAuthStateTTL bounds how long a consent round-trip may take.
const OAuthStateTTL = 10 * time.Minute

// FreeBusyCacheTTL bounds how stale cached busy intervals may be while an
// organizer is reviewing slots.
const FreeBusyCacheTTL = 2 * time.Minute

// Asynq task types
const (
	TaskNotificationDeliver = "notification:deliver"
)
