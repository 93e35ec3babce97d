package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	Version        string        `envconfig:"VERSION" default:"dev"`
	MigrateOnStart bool          `envconfig:"MIGRATE_ON_START" default:"true"`
	BcryptCost     int           `envconfig:"BCRYPT_COST" default:"12"`
	SuperuserEmail string        `envconfig:"SUPERUSER_EMAIL" default:"superuser@teamhub.local"`
	JWTSecret      string        `envconfig:"JWT_SECRET" default:""`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	PlansFile      string        `envconfig:"PLANS_FILE" default:""`
	FreePlan       string        `envconfig:"FREE_PLAN" default:"free"`
	InvitationTTL  time.Duration `envconfig:"INVITATION_TTL" default:"168h"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	EventSink      string        `envconfig:"EVENT_SINK" default:"log"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	RedisChannel   string        `envconfig:"REDIS_CHANNEL" default:"teamhub:events"`
	WebhookURL     string        `envconfig:"WEBHOOK_URL" default:""`
}

// Load reads configuration from environment variables into a Config struct.
// Values from a .env file in the working directory are applied first but never
// override variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects negative durations. A zero INVITATION_TTL means
// invitations never expire and a zero SWEEP_INTERVAL disables the sweeper.
func (c *Config) validate() error {
	for _, d := range []struct {
		key   string
		value time.Duration
	}{
		{"INVITATION_TTL", c.InvitationTTL},
		{"SWEEP_INTERVAL", c.SweepInterval},
		{"TOKEN_TTL", c.TokenTTL},
	} {
		if d.value < 0 {
			return fmt.Errorf("%s must not be negative, got %s", d.key, d.value)
		}
	}
	return nil
}
