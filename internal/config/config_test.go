package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults() should validate: %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Server.Port = 0
	cfg.Redis.Addr = ""
	cfg.Engine.LeaderboardLimit = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"log_level", "server: port", "redis: addr", "leaderboard_limit"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q: %s", want, msg)
		}
	}
}

func TestValidateTelegramNeedsChatID(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "tok"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "telegram_chat_id") {
		t.Fatalf("expected telegram_chat_id error, got %v", err)
	}
	cfg.Notify.TelegramChatID = "123"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warroom.toml")
	body := `
log_level = "debug"

[front_office]
base_url = "http://fo.internal:9000"
api_key = "file-key"

[engine]
validation_debounce = "750ms"

[server]
port = 9090
cors_origins = ["https://app.example.com"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WARROOM_FRONT_OFFICE_API_KEY", "env-key")
	t.Setenv("WARROOM_SERVER_PORT", "7070")
	t.Setenv("WARROOM_ENGINE_LEADERBOARD_PUBLISH_INTERVAL", "1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.LogLevel)
	}
	if cfg.FrontOffice.BaseURL != "http://fo.internal:9000" {
		t.Errorf("base_url = %q", cfg.FrontOffice.BaseURL)
	}
	if cfg.FrontOffice.APIKey != "env-key" {
		t.Errorf("api_key = %q, want env override", cfg.FrontOffice.APIKey)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if got := cfg.Engine.ValidationDebounce.Duration; got != 750*time.Millisecond {
		t.Errorf("validation_debounce = %v, want 750ms", got)
	}
	if got := cfg.Engine.LeaderboardPublishInterval.Duration; got != time.Minute {
		t.Errorf("leaderboard_publish_interval = %v, want 1m", got)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Database != "warroom" {
		t.Errorf("postgres database = %q, want default", cfg.Postgres.Database)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.FrontOffice.APIKey = "secret-a"
	cfg.Postgres.Password = "secret-b"
	cfg.Notify.DiscordWebhookURL = "https://discord.com/api/webhooks/x/y"

	red := RedactedConfig(&cfg)

	if red.FrontOffice.APIKey != "***" || red.Postgres.Password != "***" || red.Notify.DiscordWebhookURL != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}
	if red.Grading.APIKey != "" {
		t.Errorf("empty secret should stay empty, got %q", red.Grading.APIKey)
	}
	// Original untouched.
	if cfg.FrontOffice.APIKey != "secret-a" {
		t.Error("RedactedConfig mutated original")
	}
}
