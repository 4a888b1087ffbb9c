package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by storage.driver.
const (
	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	AppVersion             string
	LogLevel               string
	AccessLog              bool
	CORSOrigins            string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	JWTTTL                 time.Duration
	JWTIssuer              string
	DashboardCacheTTL      time.Duration
	StorageDriver          string
	StorageLocalPath       string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxSizeKB        int
	NATSURL                string
	NATSSubject            string
	SeedEnabled            bool
	AuthRateLimitMax       int
	AuthRateLimitWindow    time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and an optional .env file.
// Every key maps to COMPLAINTS_<SECTION>_<KEY>, e.g. COMPLAINTS_DATABASE_URL.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COMPLAINTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Campus Complaint API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.access_log", false)
	v.SetDefault("app.cors_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("jwt.issuer", "campus-complaint-api")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("storage.driver", StorageLocal)
	v.SetDefault("storage.local_path", "storage/app/public")
	v.SetDefault("cloudinary.folder", "campus-complaints")
	v.SetDefault("upload.max_size_kb", 2048)
	v.SetDefault("nats.subject", "complaints.events")
	v.SetDefault("seed.enabled", false)
	v.SetDefault("rate_limit.auth_max", 6)
	v.SetDefault("rate_limit.auth_window", "1m")
}

func fromViper(v *viper.Viper) (Config, error) {
	jwtTTL, err := parseDuration(v, "jwt.ttl")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "dashboard.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "rate_limit.auth_window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		AppVersion:             v.GetString("app.version"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		AccessLog:              v.GetBool("app.access_log"),
		CORSOrigins:            v.GetString("app.cors_origins"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 jwtTTL,
		JWTIssuer:              v.GetString("jwt.issuer"),
		DashboardCacheTTL:      cacheTTL,
		StorageDriver:          strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		StorageLocalPath:       v.GetString("storage.local_path"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxSizeKB:        v.GetInt("upload.max_size_kb"),
		NATSURL:                v.GetString("nats.url"),
		NATSSubject:            v.GetString("nats.subject"),
		SeedEnabled:            v.GetBool("seed.enabled"),
		AuthRateLimitMax:       v.GetInt("rate_limit.auth_max"),
		AuthRateLimitWindow:    rateWindow,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("database url must be provided")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("jwt secret must be provided")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive")
	}
	if c.UploadMaxSizeKB <= 0 {
		return fmt.Errorf("upload max size must be positive")
	}

	switch c.StorageDriver {
	case StorageLocal:
		if strings.TrimSpace(c.StorageLocalPath) == "" {
			return fmt.Errorf("storage local path must be provided")
		}
	case StorageCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary credentials must be provided when storage driver is cloudinary")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
