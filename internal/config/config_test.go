package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:          "8080",
		SQLiteDBPath:  "./fintrack.db",
		AMQPExchange:  "fintrack",
		AMQPQueue:     "backup_transactions",
		SweepSchedule: "5 0 * * *",
		SweepTimeout:  2 * time.Minute,
		DataBackend:   "memory",
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"non-numeric port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "between 1 and 65535"},
		{"unknown backend", func(c *Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost:5672/" }, "must be 'amqp' or 'amqps'"},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://localhost:5672/"; c.AMQPQueue = "" }, "queue name cannot be empty"},
		{"google creds without spreadsheet", func(c *Config) { c.GoogleCredentialsJSON = "{}" }, "GOOGLE_SPREADSHEET_ID is required"},
		{"short sweep schedule", func(c *Config) { c.SweepSchedule = "* * *" }, "5-field cron expression"},
		{"tiny sweep timeout", func(c *Config) { c.SweepTimeout = 100 * time.Millisecond }, "at least 1 second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidateAccumulatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "nope"
	cfg.DataBackend = "oracle"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "invalid port") || !strings.Contains(msg, "invalid data backend") {
		t.Errorf("expected both problems reported, got %q", msg)
	}
}
