package config

import (
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		HTTP     HTTPConfig
		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
		Auth     AuthConfig
		ETA      ETAConfig
		FCM      FCMConfig
		Log      LogConfig
	}

	HTTPConfig struct {
		Port string `env:"HTTP_PORT" default:"3002"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"fleetgate_user"`
		Password string `env:"DATABASE_PASSWORD" default:"fleetgate_pass"`
		Database string `env:"DATABASE_DATABASE" default:"fleetgate_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	AuthConfig struct {
		JWTSecret string `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	// ETAConfig selects the routing provider and tunes the naive model.
	// An empty key disables the provider and the naive model is used for
	// every estimate. Rush windows are local hours, start inclusive and
	// end exclusive.
	ETAConfig struct {
		LocationIQAPIKey string `env:"LOCATIONIQ_API_KEY"`

		RushMorningStart int `env:"ETA_RUSH_MORNING_START" default:"7"`
		RushMorningEnd   int `env:"ETA_RUSH_MORNING_END" default:"10"`
		RushEveningStart int `env:"ETA_RUSH_EVENING_START" default:"17"`
		RushEveningEnd   int `env:"ETA_RUSH_EVENING_END" default:"20"`
	}

	// FCMConfig enables push notifications when credentials are present.
	FCMConfig struct {
		CredentialsFile   string `env:"FCM_CREDENTIALS_FILE"`
		CredentialsBase64 string `env:"FCM_CREDENTIALS_BASE64"`
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"DEBUG"`
	}
)

// PoolLimits exposes the pool sizing in the shape pkg/postgres applies.
func (c DatabaseConfig) PoolLimits() (int32, int32, time.Duration, time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}
