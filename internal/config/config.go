package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the dangeond service.
type Config struct {
	Addr           string        `env:"ADDR,default=:8080"`
	DBDSN          string        `env:"DB_DSN,required"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	NATSURL        string        `env:"NATS_URL"`
	SessionSecret  string        `env:"SESSION_SECRET,required"`
	SessionTTL     time.Duration `env:"SESSION_TTL,default=168h"`
	ImageBucket    string        `env:"S3_IMAGE_BUCKET"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	CookieDomain   string        `env:"COOKIE_DOMAIN"`
	CookieSecure   bool          `env:"COOKIE_SECURE,default=false"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
