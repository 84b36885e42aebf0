package utils

import "time"

// ContextKey is the type for request-scoped context values
type ContextKey string

// Context keys attached by handlers when building a request context
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Short code constants
const (
	// ShortCodeAlphabet is the 62-symbol alphabet used for generated codes
	ShortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultShortCodeLength is the length of generated short codes
	DefaultShortCodeLength = 7

	// MaxGenerationAttempts caps consecutive collisions before generation
	// is treated as namespace exhaustion
	MaxGenerationAttempts = 100

	// CustomCodeMinLength and CustomCodeMaxLength bound custom short codes
	CustomCodeMinLength = 3
	CustomCodeMaxLength = 10
)

// Cache constants
const (
	// LinkCacheTTL is the expiration window for cached link snapshots
	LinkCacheTTL = 3600 * time.Second
)

// Analytics constants
const (
	// MaxUserAgentLength bounds stored user-agent and referer strings
	MaxUserAgentLength = 500

	// MaxBrowserOSLength bounds stored browser and OS strings
	MaxBrowserOSLength = 100

	// DefaultAnalyticsDays is the report window when the caller gives none
	DefaultAnalyticsDays = 30
)

// LinkCacheKey returns the cache key of a link snapshot
func LinkCacheKey(shortCode string) string {
	return "link:" + shortCode
}

// ClickCounterKey returns the cache key of the approximate click counter
func ClickCounterKey(shortCode string) string {
	return "clicks:" + shortCode
}
