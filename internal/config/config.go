package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string
	JWTSecret   string
	JWTTokenTTL time.Duration

	StatsCacheTTL       time.Duration
	NotificationChannel string

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	SMTPFromName  string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// SMTPConfigured reports whether an SMTP relay is fully configured.
func (c Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort > 0 && c.SMTPFromEmail != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EXF")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Excellence Forms API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("stats.cache_ttl", "5m")
	v.SetDefault("jwt.token_ttl", "12h")
	v.SetDefault("notification.channel", "excellence")
	v.SetDefault("smtp.from_name", "The Excellence Committee")

	statsTTL, err := time.ParseDuration(v.GetString("stats.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	tokenTTL, err := time.ParseDuration(v.GetString("jwt.token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt token ttl: %w", err)
	}

	cfg := Config{
		AppName:     v.GetString("app.name"),
		AppEnv:      v.GetString("app.env"),
		AppPort:     v.GetString("app.port"),
		DatabaseURL: v.GetString("database.url"),
		RedisURL:    v.GetString("redis.url"),
		NATSURL:     v.GetString("nats.url"),
		JWTSecret:   v.GetString("jwt.secret"),
		JWTTokenTTL: tokenTTL,

		StatsCacheTTL:       statsTTL,
		NotificationChannel: v.GetString("notification.channel"),

		SMTPHost:      v.GetString("smtp.host"),
		SMTPPort:      v.GetInt("smtp.port"),
		SMTPUsername:  v.GetString("smtp.username"),
		SMTPPassword:  v.GetString("smtp.password"),
		SMTPFromEmail: v.GetString("smtp.from_email"),
		SMTPFromName:  v.GetString("smtp.from_name"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
