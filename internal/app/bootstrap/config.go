// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/boatfinder/internal/app/digest"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Boat Finder.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, digest_hour, etc.
//   - Environment variables: BOATFINDER_MONGO_URI, BOATFINDER_DIGEST_HOUR, etc.
//   - Command-line flags: --mongo_uri, --digest_hour, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "boatfinder", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username (empty disables auth)"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@boatfinder.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Boat Finder", Desc: "From display name"},

	// Digest scheduling
	{Name: "digest_enabled", Default: true, Desc: "Run the daily operator digest worker"},
	{Name: "digest_hour", Default: 6, Desc: "Local hour (0-23) to send the daily digest"},
	{Name: "digest_timezone", Default: "Australia/Sydney", Desc: "IANA timezone for the digest schedule"},
	{Name: "digest_window_days", Default: digest.DefaultWindowDays, Desc: "How many days ahead the digest looks"},

	// Admin account
	{Name: "admin_email", Default: "ben@notionparallax.co.uk", Desc: "Email address granted admin access"},

	// CORS
	{Name: "allowed_origins", Default: "http://localhost:3000", Desc: "Comma-separated origins allowed to call the API"},

	// Base URL for email links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for links in digest emails"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BOATFINDER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		DigestEnabled:    appValues.Bool("digest_enabled"),
		DigestHour:       appValues.Int("digest_hour"),
		DigestTimezone:   appValues.String("digest_timezone"),
		DigestWindowDays: appValues.Int("digest_window_days"),

		AdminEmail: appValues.String("admin_email"),

		AllowedOrigins: splitOrigins(appValues.String("allowed_origins")),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Boat Finder validates the MongoDB URI format and the digest schedule
// to catch configuration errors before connecting to anything.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.DigestHour < 0 || appCfg.DigestHour > 23 {
		return fmt.Errorf("digest_hour must be between 0 and 23, got %d", appCfg.DigestHour)
	}
	if _, err := time.LoadLocation(appCfg.DigestTimezone); err != nil {
		return fmt.Errorf("invalid digest_timezone %q: %w", appCfg.DigestTimezone, err)
	}
	if appCfg.DigestWindowDays < 1 {
		return fmt.Errorf("digest_window_days must be at least 1, got %d", appCfg.DigestWindowDays)
	}
	if appCfg.AdminEmail == "" {
		return fmt.Errorf("admin_email must be set")
	}

	return nil
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
