// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, CORS, body limits);
// everything specific to the help-request service lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: artisanbridge-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Bearer tokens issued by the identity service
	JWTSecret string // HMAC secret; blank disables bearer authentication
	JWTIssuer string // expected "iss" claim; blank skips the check

	// File storage configuration
	StorageType      string // Storage backend: only "local" is supported
	StorageLocalPath string // Root directory for uploaded files (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// Event notifications; blank RedisAddr disables publishing
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogHelp     string
	AuditLogCapacity string

	// Workflow behaviour
	StrictTransactions        bool          // run request and capacity writes in one transaction
	CapacityReconcileInterval time.Duration // 0 disables the reconciler
	WriteRateLimit            int           // write requests per caller per minute; 0 disables

	// Database operation timeouts (0 keeps the defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
