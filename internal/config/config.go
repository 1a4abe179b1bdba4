package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Auth      AuthConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Archive   ArchiveConfig
	Pincode   PincodeConfig
	Rules     Rules
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	SeedSampleData bool
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level   string
	Console bool
}

// AuthConfig holds token signing options. DemoPassword, when set, is given
// to the sample users seeded at startup. AdminUsername and AdminPassword
// create the first administrator when no admin account exists yet.
type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
	Issuer        string
	DemoPassword  string
	AdminUsername string
	AdminPassword string
}

// BootstrapAdmin reports whether a first administrator was configured.
func (c AuthConfig) BootstrapAdmin() bool {
	return c.AdminPassword != ""
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// An empty AccessToken disables outbound alerts and the supervisor intake webhook.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// Enabled reports whether WhatsApp credentials were provided.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	SnapshotSchedule string
	SweepSchedule    string
	DigestSchedule   string
	Timezone         string
}

// MongoDBConfig holds settings for MongoDB. An empty URI disables snapshots.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the lookup cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ArchiveConfig holds settings for the S3-compatible report archive.
type ArchiveConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether a bucket was configured.
func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}

// PincodeConfig points at the postal pincode lookup service.
type PincodeConfig struct {
	BaseURL string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	rules, err := LoadRules(getenvWithDefault("RULES_FILE", "configs/rules.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			AllowedOrigins: splitList(getenvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
			SeedSampleData: getenvBool("SEED_SAMPLE_DATA", true),
		},
		Log: LogConfig{
			Level:   getenvWithDefault("LOG_LEVEL", "info"),
			Console: getenvBool("LOG_CONSOLE", false),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenTTLHours: getenvInt("JWT_EXPIRATION_HOURS", 24),
			Issuer:        getenvWithDefault("JWT_ISSUER", "poultryops"),
			DemoPassword:  os.Getenv("DEMO_PASSWORD"),
			AdminUsername: getenvWithDefault("ADMIN_USERNAME", "admin"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			SnapshotSchedule: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 20 * * *"),
			SweepSchedule:    getenvWithDefault("MORTALITY_SWEEP_SCHEDULE", "0 8 * * *"),
			DigestSchedule:   getenvWithDefault("WEEKLY_DIGEST_SCHEDULE", "0 20 * * 5"),
			Timezone:         getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "poultryops"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Archive: ArchiveConfig{
			Bucket:    os.Getenv("ARCHIVE_BUCKET"),
			Region:    getenvWithDefault("ARCHIVE_REGION", "auto"),
			Endpoint:  os.Getenv("ARCHIVE_ENDPOINT"),
			AccessKey: os.Getenv("ARCHIVE_ACCESS_KEY"),
			SecretKey: os.Getenv("ARCHIVE_SECRET_KEY"),
		},
		Pincode: PincodeConfig{
			BaseURL: getenvWithDefault("PINCODE_API_URL", "https://api.postalpincode.in"),
		},
		Rules: rules,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	if c.Auth.DemoPassword != "" && len(c.Auth.DemoPassword) < 8 {
		return errors.New("DEMO_PASSWORD must be at least 8 characters")
	}
	if c.Auth.BootstrapAdmin() {
		if strings.TrimSpace(c.Auth.AdminUsername) == "" {
			return errors.New("ADMIN_USERNAME must not be empty when ADMIN_PASSWORD is set")
		}
		if len(c.Auth.AdminPassword) < 8 {
			return errors.New("ADMIN_PASSWORD must be at least 8 characters")
		}
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	if c.Reporting.SnapshotSchedule == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Pincode.BaseURL == "" {
		return errors.New("PINCODE_API_URL must not be empty")
	}

	return c.Rules.Validate()
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
