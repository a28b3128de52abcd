// Package constants provides shared constants for the cost-estimator application.
package constants

// Estimation constants
const (
	// ShortStayMaxMonths is the longest stay that still pays the short-stay rent premium
	ShortStayMaxMonths = 2
	// ShortStayRentPremium multiplies rent for stays of ShortStayMaxMonths or less
	ShortStayRentPremium = "1.10"
	// CoupleFoodMultiplier scales food for two travelers
	CoupleFoodMultiplier = "1.65"
	// CoupleFunMultiplier scales fun for two travelers
	CoupleFunMultiplier = "1.65"
	// CoupleTransportMultiplier scales transport for two travelers
	CoupleTransportMultiplier = "1.25"
	// BudgetMultiplier applies to food and fun on the budget tier
	BudgetMultiplier = "0.85"
	// ComfortableMultiplier applies to food and fun on the comfortable tier
	ComfortableMultiplier = "1.00"
	// PremiumMultiplier applies to food and fun on the premium tier
	PremiumMultiplier = "1.35"
	// MinStayMonths is the shortest stay accepted
	MinStayMonths = 1
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"
	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "COST_ESTIMATOR"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"
	// DefaultMaxBodySizeBytes is the default maximum JSON request body (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
	// DefaultVersion is reported when no build version is stamped
	DefaultVersion = "dev"
)

// Lead capture defaults
const (
	// DefaultLeadWindowMinutes is the sliding window for lead submissions
	DefaultLeadWindowMinutes = 10
	// DefaultLeadMaxSubmissions is the number of leads one caller may submit per window
	DefaultLeadMaxSubmissions = 3
	// DefaultRateLimitKeyPrefix namespaces limiter keys in Redis
	DefaultRateLimitKeyPrefix = "leads:ratelimit"
	// DefaultSessionWindowMinutes is the sliding window for admin sign-in attempts
	DefaultSessionWindowMinutes = 15
	// DefaultSessionMaxAttempts is the number of admin sign-in attempts one caller may make per window
	DefaultSessionMaxAttempts = 5
	// SessionKeyPrefix namespaces admin sign-in limiter keys under the configured key prefix
	SessionKeyPrefix = "session"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Rate limiter backends
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Auth defaults
const (
	// DefaultTokenIssuer is the iss claim of issued tokens
	DefaultTokenIssuer = "cost-estimator"
	// DefaultTokenAudience is the aud claim of issued tokens
	DefaultTokenAudience = "cost-estimator-api"
	// DefaultTokenTTLHours is how long issued tokens stay valid
	DefaultTokenTTLHours = 24
)
