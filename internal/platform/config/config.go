package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret     = "a-very-secret-key-should-be-longer-and-random"
	defaultRefreshSecret = "default_insecure_refresh_secret_please_change_this_!@#$"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	MigrationsPath string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	// Refresh Token Config
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	RefreshTokenCookiePath     string
	RefreshTokenSecret         string
	LoginRateLimit             string
	UploadRateLimit            string

	// External OAuth Providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendBaseURL    string
	CORSAllowedOrigins []string

	PosthogAPIKey   string
	PosthogEndpoint string

	// Kafka; an empty broker list disables both the notification sink and the deposit consumer.
	KafkaBrokers           []string
	KafkaNotificationTopic string
	KafkaDepositTopic      string
	KafkaConsumerGroup     string

	DocumentStorageDir string
	MaxUploadBytes     int64

	NotificationQueueSize int
	TransitionMaxRetries  int
	RoleCacheSize         int
	RoleCacheTTL          time.Duration

	// Creates a super admin at startup when no user has this username yet.
	BootstrapAdminUsername string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "agent-onboarding-portal")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "rtid")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth")
	viper.SetDefault("REFRESH_TOKEN_SECRET", defaultRefreshSecret)
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("UPLOAD_RATE_LIMIT", "30-M")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_NOTIFICATION_TOPIC", "onboarding.notifications")
	viper.SetDefault("KAFKA_DEPOSIT_TOPIC", "onboarding.deposits")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "onboarding-portal")
	viper.SetDefault("DOCUMENT_STORAGE_DIR", "./data/documents")
	viper.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	viper.SetDefault("NOTIFICATION_QUEUE_SIZE", 256)
	viper.SetDefault("TRANSITION_MAX_RETRIES", 3)
	viper.SetDefault("ROLE_CACHE_SIZE", 1024)
	viper.SetDefault("ROLE_CACHE_TTL", "1m")
	viper.SetDefault("BOOTSTRAP_ADMIN_USERNAME", "")
	viper.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")
	viper.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RefreshTokenExpiryDuration = durationOrDefault("REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)
	cfg.RefreshTokenCookieName = viper.GetString("REFRESH_TOKEN_COOKIE_NAME")
	cfg.RefreshTokenCookiePath = viper.GetString("REFRESH_TOKEN_COOKIE_PATH")
	cfg.RefreshTokenSecret = viper.GetString("REFRESH_TOKEN_SECRET")
	if cfg.RefreshTokenSecret == "" || cfg.RefreshTokenSecret == defaultRefreshSecret {
		log.Println("Warning: REFRESH_TOKEN_SECRET is not set, using default insecure secret. THIS IS NOT FOR PRODUCTION.")
		cfg.RefreshTokenSecret = defaultRefreshSecret
	}
	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.UploadRateLimit = viper.GetString("UPLOAD_RATE_LIMIT")

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET or GOOGLE_REDIRECT_URL not set. Google sign-in will not function.")
	}
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{cfg.FrontendBaseURL}
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	cfg.KafkaBrokers = splitList(viper.GetString("KAFKA_BROKERS"))
	cfg.KafkaNotificationTopic = viper.GetString("KAFKA_NOTIFICATION_TOPIC")
	cfg.KafkaDepositTopic = viper.GetString("KAFKA_DEPOSIT_TOPIC")
	cfg.KafkaConsumerGroup = viper.GetString("KAFKA_CONSUMER_GROUP")
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("Warning: KAFKA_BROKERS not set. Kafka notifications and deposit signals are disabled.")
	}

	cfg.DocumentStorageDir = viper.GetString("DOCUMENT_STORAGE_DIR")
	cfg.MaxUploadBytes = viper.GetInt64("MAX_UPLOAD_BYTES")
	cfg.NotificationQueueSize = viper.GetInt("NOTIFICATION_QUEUE_SIZE")
	cfg.TransitionMaxRetries = viper.GetInt("TRANSITION_MAX_RETRIES")
	cfg.RoleCacheSize = viper.GetInt("ROLE_CACHE_SIZE")
	cfg.RoleCacheTTL = durationOrDefault("ROLE_CACHE_TTL", time.Minute)

	cfg.BootstrapAdminUsername = viper.GetString("BOOTSTRAP_ADMIN_USERNAME")
	cfg.BootstrapAdminEmail = viper.GetString("BOOTSTRAP_ADMIN_EMAIL")
	cfg.BootstrapAdminPassword = viper.GetString("BOOTSTRAP_ADMIN_PASSWORD")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.IsProduction && c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.NotificationQueueSize <= 0 {
		errs = append(errs, errors.New("NOTIFICATION_QUEUE_SIZE must be positive"))
	}
	if c.TransitionMaxRetries < 0 {
		errs = append(errs, errors.New("TRANSITION_MAX_RETRIES must not be negative"))
	}
	if c.RoleCacheSize <= 0 {
		errs = append(errs, errors.New("ROLE_CACHE_SIZE must be positive"))
	}
	if c.BootstrapAdminUsername != "" && len(c.BootstrapAdminPassword) < 8 {
		errs = append(errs, errors.New("BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters"))
	}
	return errors.Join(errs...)
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
