// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, request limits). AppConfig is everything specific to
// Boat Finder: the Mongo connection, SMTP delivery, digest scheduling,
// and the admin account.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty disables auth)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// Digest scheduling
	DigestEnabled    bool   // Run the daily digest worker
	DigestHour       int    // Local hour (0-23) to send the daily digest
	DigestTimezone   string // IANA timezone for the digest schedule (e.g., Australia/Sydney)
	DigestWindowDays int    // How far ahead the digest looks

	// Admin account
	AdminEmail string // Email address granted access to /api/adminapi

	// CORS
	AllowedOrigins []string // Origins allowed to call the API from a browser

	// Base URL for email links (calendar link in the digest)
	BaseURL string // e.g., "https://boatfinder.example.com"
}
