package configparser

import (
	"testing"
	"time"
)

type sampleConfig struct {
	Server struct {
		Host string        `env:"CP_TEST_HOST" default:"localhost"`
		Port int           `env:"CP_TEST_PORT" default:"8080"`
		TTL  time.Duration `env:"CP_TEST_TTL" default:"15m"`
	}
	Verbose bool `env:"CP_TEST_VERBOSE" default:"false"`
}

func TestParseEnv_Defaults(t *testing.T) {
	var cfg sampleConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("host: got %q want %q", cfg.Server.Host, "localhost")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port: got %d want 8080", cfg.Server.Port)
	}
	if cfg.Server.TTL != 15*time.Minute {
		t.Errorf("ttl: got %s want 15m", cfg.Server.TTL)
	}
}

func TestParseEnv_EnvironmentWins(t *testing.T) {
	t.Setenv("CP_TEST_HOST", "db.internal")
	t.Setenv("CP_TEST_TTL", "1h30m")
	t.Setenv("CP_TEST_VERBOSE", "true")

	var cfg sampleConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "db.internal" {
		t.Errorf("host: got %q want %q", cfg.Server.Host, "db.internal")
	}
	if cfg.Server.TTL != 90*time.Minute {
		t.Errorf("ttl: got %s want 1h30m", cfg.Server.TTL)
	}
	if !cfg.Verbose {
		t.Error("verbose: expected true")
	}
}

func TestParseEnv_RejectsNonPointer(t *testing.T) {
	var cfg sampleConfig
	if err := ParseEnv(cfg); err == nil {
		t.Fatal("expected error for non-pointer argument")
	}
}

func TestParseEnv_InvalidValue(t *testing.T) {
	t.Setenv("CP_TEST_PORT", "not-a-number")

	var cfg sampleConfig
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected error for malformed integer")
	}
}
