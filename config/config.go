package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	CRM         CRMConfig
	Environment string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration

	// Bounded retry performed once at boot when the first connection
	// attempt fails with a transient connectivity error.
	ConnectMaxAttempts int
	ConnectRetryWait   time.Duration
}

// CRMConfig holds the settings for the external CRM this app mirrors records into.
// Each tenant account lives at https://{slug}.{Domain} and authenticates API calls
// with the access token stored for that tenant.
type CRMConfig struct {
	Protocol     string
	Domain       string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration

	// PointPersonID and CampaignTag are stamped onto every outbound person write.
	PointPersonID int64
	CampaignTag   string

	// CalendarID is forced onto every outbound event.
	CalendarID int64

	// The survey used to surface contact request notes in the CRM control panel.
	SurveyID                int64
	SurveyCommentQuestionID int64

	// AppBaseURL is this app's externally reachable base URL, used to build
	// the OAuth redirect URI.
	AppBaseURL string

	// InstallReturnTo, when set, is where the OAuth callback redirects with a
	// flash parameter describing the outcome. When empty the callback responds
	// with JSON instead.
	InstallReturnTo string
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			ConnectionString:   os.Getenv("DATABASE_URL"),
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvAsInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "postgres"),
			Password:           os.Getenv("DB_PASSWORD"),
			Database:           getEnv("DB_NAME", "crm_bridge"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:    getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnectMaxAttempts: getEnvAsInt("DB_CONNECT_MAX_ATTEMPTS", 3),
			ConnectRetryWait:   getEnvAsDuration("DB_CONNECT_RETRY_WAIT", time.Second),
		},
		CRM: CRMConfig{
			Protocol:                getEnv("CRM_PROTOCOL", "https"),
			Domain:                  os.Getenv("CRM_DOMAIN"),
			ClientID:                os.Getenv("CRM_CLIENT_ID"),
			ClientSecret:            os.Getenv("CRM_CLIENT_SECRET"),
			Timeout:                 getEnvAsDuration("CRM_TIMEOUT", 30*time.Second),
			PointPersonID:           getEnvAsInt64("CRM_POINT_PERSON_ID", 0),
			CampaignTag:             getEnv("CRM_CAMPAIGN_TAG", "Prep Week September 2018"),
			CalendarID:              getEnvAsInt64("CRM_CALENDAR_ID", 0),
			SurveyID:                getEnvAsInt64("CRM_SURVEY_ID", 0),
			SurveyCommentQuestionID: getEnvAsInt64("CRM_SURVEY_COMMENT_QUESTION_ID", 0),
			AppBaseURL:              os.Getenv("APP_BASE_URL"),
			InstallReturnTo:         os.Getenv("INSTALL_RETURN_TO"),
		},
	}

	return cfg, nil
}

// MissingSettings returns the names of required CRM settings that are unset.
// The app still boots without them so that health checks and stored-record
// reads keep working, but outbound CRM writes will be rejected upstream.
func (c CRMConfig) MissingSettings() []string {
	var missing []string
	if c.Domain == "" {
		missing = append(missing, "CRM_DOMAIN")
	}
	if c.ClientID == "" {
		missing = append(missing, "CRM_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "CRM_CLIENT_SECRET")
	}
	if c.PointPersonID == 0 {
		missing = append(missing, "CRM_POINT_PERSON_ID")
	}
	if c.SurveyID == 0 {
		missing = append(missing, "CRM_SURVEY_ID")
	}
	if c.SurveyCommentQuestionID == 0 {
		missing = append(missing, "CRM_SURVEY_COMMENT_QUESTION_ID")
	}
	return missing
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// LogString returns a connection description safe for logging (no password)
func (c DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		return "DATABASE_URL"
	}
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

// Addr returns the listen address for the HTTP server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
