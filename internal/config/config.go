package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the advisor service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBConnLifetime   time.Duration
	RedisURL         string
	RedisChannel     string
	NATSURL          string
	NATSSubject      string
	JWTSecret        string
	RecorderTimeout  time.Duration
	RateLimitMax     int
	RateLimitWindow  time.Duration
	SecurityPatterns []string
	AutoMigrate      bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Code Advisor")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("redis.channel", "gema:advisor")
	v.SetDefault("nats.subject", "gema.advisor.security")
	v.SetDefault("recorder.timeout", "3s")
	v.SetDefault("rate_limit.max", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	recorderTimeout, err := parseDuration(v.GetString("recorder.timeout"), 3*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid recorder timeout: %w", err)
	}

	window, err := parseDuration(v.GetString("rate_limit.window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	connLifetime, err := parseDuration(v.GetString("database.conn_max_lifetime"), 30*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid database connection lifetime: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		DBMaxOpenConns:   v.GetInt("database.max_open_conns"),
		DBMaxIdleConns:   v.GetInt("database.max_idle_conns"),
		DBConnLifetime:   connLifetime,
		RedisURL:         v.GetString("redis.url"),
		RedisChannel:     v.GetString("redis.channel"),
		NATSURL:          v.GetString("nats.url"),
		NATSSubject:      v.GetString("nats.subject"),
		JWTSecret:        v.GetString("jwt.secret"),
		RecorderTimeout:  recorderTimeout,
		RateLimitMax:     v.GetInt("rate_limit.max"),
		RateLimitWindow:  window,
		SecurityPatterns: splitList(v.GetString("security.patterns")),
		AutoMigrate:      v.GetBool("database.auto_migrate"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 30
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func splitList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
