package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("DB_PATH", "./data/test.db")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-flash")
	t.Setenv("REMINDER_CHECK_INTERVAL", "5m")
	t.Setenv("URGENT_CHECK_INTERVAL", "2m")
	t.Setenv("CHAT_RATE_LIMIT", "10")
	t.Setenv("CHAT_RATE_WINDOW", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ReminderInterval != 5*time.Minute || cfg.UrgentInterval != 2*time.Minute {
		t.Errorf("intervals = %v / %v", cfg.ReminderInterval, cfg.UrgentInterval)
	}
	if cfg.RateLimit.RequestsPerWindow != 10 || cfg.RateLimit.WindowDuration != time.Minute {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	if !cfg.IsDevelopment() {
		t.Error("empty FRONTEND_URL should count as development")
	}
	if cfg.HasAPIKey() {
		t.Error("empty key should not count as configured")
	}
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("REMINDER_CHECK_INTERVAL", "not-a-duration")
	t.Setenv("URGENT_CHECK_INTERVAL", "2m")
	t.Setenv("CHAT_RATE_LIMIT", "10")
	t.Setenv("CHAT_RATE_WINDOW", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReminderInterval != 5*time.Minute {
		t.Errorf("ReminderInterval = %v, want the 5m fallback", cfg.ReminderInterval)
	}
}

func TestHasAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{APIKeyPlaceholder, false},
		{"real-key", true},
	}
	for _, tt := range tests {
		cfg := &Config{GeminiAPIKey: tt.key}
		if got := cfg.HasAPIKey(); got != tt.want {
			t.Errorf("HasAPIKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:5173", true},
		{"https://brutalytics.app", false},
	}
	for _, tt := range tests {
		cfg := &Config{FrontendURL: tt.url}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:             "8080",
			DBPath:           "./data/test.db",
			GeminiModel:      "gemini-1.5-flash",
			ReminderInterval: 5 * time.Minute,
			UrgentInterval:   2 * time.Minute,
			RateLimit:        RateLimitConfig{RequestsPerWindow: 10, WindowDuration: time.Minute},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"empty model", func(c *Config) { c.GeminiModel = "" }},
		{"zero reminder interval", func(c *Config) { c.ReminderInterval = 0 }},
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerWindow = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
