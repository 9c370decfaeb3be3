package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Environment:          EnvProduction,
		LogLevel:             "info",
		SessionAuthKey:       strings.Repeat("a", 32),
		SessionEncryptionKey: strings.Repeat("b", 16),
		CORSAllowedOrigins:   "https://app.example.com",
		ItemStore:            StorePostgres,
		ReconcileConcurrency: 8,
		DispatchBatch:        100,
		DispatchInterval:     time.Second,
		ResyncInterval:       5 * time.Minute,
		ReminderTimezone:     "UTC",
	}
}

func TestValidateForProduction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "short auth key", mutate: func(c *Config) { c.SessionAuthKey = "short" }, wantErr: "SESSION_AUTH_KEY"},
		{name: "short encryption key", mutate: func(c *Config) { c.SessionEncryptionKey = "short" }, wantErr: "SESSION_ENCRYPTION_KEY"},
		{name: "debug logging", mutate: func(c *Config) { c.LogLevel = "debug" }, wantErr: "LOG_LEVEL"},
		{name: "wildcard cors", mutate: func(c *Config) { c.CORSAllowedOrigins = "*" }, wantErr: "CORS_ALLOWED_ORIGINS"},
		{name: "development skips checks", mutate: func(c *Config) {
			c.Environment = EnvDevelopment
			c.SessionAuthKey = ""
			c.LogLevel = "debug"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateForProduction(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero concurrency", mutate: func(c *Config) { c.ReconcileConcurrency = 0 }, wantErr: "RECONCILE_CONCURRENCY"},
		{name: "zero batch", mutate: func(c *Config) { c.DispatchBatch = 0 }, wantErr: "DISPATCH_BATCH"},
		{name: "zero dispatch interval", mutate: func(c *Config) { c.DispatchInterval = 0 }, wantErr: "DISPATCH_INTERVAL"},
		{name: "negative resync interval", mutate: func(c *Config) { c.ResyncInterval = -time.Second }, wantErr: "RESYNC_INTERVAL"},
		{name: "sampling above one", mutate: func(c *Config) { c.TraceSampling = 1.5 }, wantErr: "TRACE_SAMPLING"},
		{name: "unknown timezone", mutate: func(c *Config) { c.ReminderTimezone = "Mars/Olympus" }, wantErr: "REMINDER_TIMEZONE"},
		{name: "firestore without project", mutate: func(c *Config) {
			c.ItemStore = StoreFirestore
			c.FirestoreProjectID = ""
		}, wantErr: "FIRESTORE_PROJECT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
