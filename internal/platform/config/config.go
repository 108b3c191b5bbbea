package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	RefreshTokenCookiePath     string

	// RequestTimeout bounds every HTTP request.
	RequestTimeout time.Duration

	// Profile poll replaces the fixed post-signup settling sleep: bounded
	// attempts with doubling backoff, capped.
	ProfilePollAttempts  int
	ProfilePollBaseDelay time.Duration
	ProfilePollMaxDelay  time.Duration

	// StorageBucketURL is a gocloud.dev blob URL, e.g. file:///var/ota/images.
	StorageBucketURL string
	// PublicImageBaseURL prefixes stored image keys to form public URLs.
	PublicImageBaseURL string

	CORSAllowedOrigins []string

	// External OAuth provider
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendBaseURL    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "order-tracking-app")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "rtid")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth")
	viper.SetDefault("REQUEST_TIMEOUT", "30s")
	viper.SetDefault("PROFILE_POLL_ATTEMPTS", 5)
	viper.SetDefault("PROFILE_POLL_BASE_DELAY", "200ms")
	viper.SetDefault("PROFILE_POLL_MAX_DELAY", "2s")
	viper.SetDefault("STORAGE_BUCKET_URL", "file:///tmp/ota-images?create_dir=1")
	viper.SetDefault("PUBLIC_IMAGE_BASE_URL", "http://localhost:8080/images")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.RefreshTokenExpiryDuration = durationOrDefault("REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)
	cfg.RefreshTokenCookieName = viper.GetString("REFRESH_TOKEN_COOKIE_NAME")
	cfg.RefreshTokenCookiePath = viper.GetString("REFRESH_TOKEN_COOKIE_PATH")

	cfg.RequestTimeout = durationOrDefault("REQUEST_TIMEOUT", 30*time.Second)
	cfg.ProfilePollAttempts = viper.GetInt("PROFILE_POLL_ATTEMPTS")
	if cfg.ProfilePollAttempts <= 0 {
		cfg.ProfilePollAttempts = 5
	}
	cfg.ProfilePollBaseDelay = durationOrDefault("PROFILE_POLL_BASE_DELAY", 200*time.Millisecond)
	cfg.ProfilePollMaxDelay = durationOrDefault("PROFILE_POLL_MAX_DELAY", 2*time.Second)

	cfg.StorageBucketURL = viper.GetString("STORAGE_BUCKET_URL")
	cfg.PublicImageBaseURL = viper.GetString("PUBLIC_IMAGE_BASE_URL")
	cfg.CORSAllowedOrigins = viper.GetStringSlice("CORS_ALLOWED_ORIGINS")

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
