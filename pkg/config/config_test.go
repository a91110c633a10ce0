package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/courtsync/courtsync/pkg/client"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.BaseURL != client.DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, client.DefaultBaseURL)
	}
	if cfg.UserAgent != client.DefaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, client.DefaultUserAgent)
	}
	if cfg.MaxRetries != 6 {
		t.Errorf("MaxRetries = %d, want 6", cfg.MaxRetries)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.BackoffFactor != 1500*time.Millisecond {
		t.Errorf("BackoffFactor = %v, want 1.5s", cfg.BackoffFactor)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"90s", 90 * time.Second},
		{"1.5s", 1500 * time.Millisecond},
		{"2m", 2 * time.Minute},
		{"60", 60 * time.Second},
		{"1.5", 1500 * time.Millisecond},
		{"0.1", 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSeconds(tt.input)
			if err != nil {
				t.Fatalf("ParseSeconds(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSeconds(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSeconds_Invalid(t *testing.T) {
	for _, input := range []string{"", "abc", "1.5x"} {
		if _, err := ParseSeconds(input); err == nil {
			t.Errorf("ParseSeconds(%q) succeeded, want error", input)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("COURTLISTENER_BASE_URL", "https://api.test/v3")
	t.Setenv("COURTLISTENER_TOKEN", "env-token")
	t.Setenv("COURTLISTENER_UA", "EnvApp/1.0")
	t.Setenv("COURTLISTENER_MAX_RETRIES", "3")
	t.Setenv("COURTLISTENER_TIMEOUT", "30")
	t.Setenv("COURTLISTENER_BACKOFF_FACTOR", "0.5")
	t.Setenv("REDIS_URL", "localhost:6380")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}

	if cfg.BaseURL != "https://api.test/v3" {
		t.Errorf("BaseURL = %q, want env value", cfg.BaseURL)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env value", cfg.Token)
	}
	if cfg.UserAgent != "EnvApp/1.0" {
		t.Errorf("UserAgent = %q, want env value", cfg.UserAgent)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.BackoffFactor != 500*time.Millisecond {
		t.Errorf("BackoffFactor = %v, want 500ms", cfg.BackoffFactor)
	}
	if cfg.RedisURL != "localhost:6380" {
		t.Errorf("RedisURL = %q, want env value", cfg.RedisURL)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("COURTLISTENER_MAX_RETRIES", "lots")

	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("ApplyEnv() succeeded with an unparsable COURTLISTENER_MAX_RETRIES")
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courtsync.yaml")
	content := `
base_url: https://api.file/v3
user_agent: FileApp/1.0
max_retries: 4
timeout: 90s
backoff_factor: "2"
redis_url: redis://localhost:6379/2
data_dir: /var/lib/courtsync
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Seed write failed: %v", err)
	}

	cfg := Default()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile() failed: %v", err)
	}

	if cfg.BaseURL != "https://api.file/v3" {
		t.Errorf("BaseURL = %q, want file value", cfg.BaseURL)
	}
	if cfg.UserAgent != "FileApp/1.0" {
		t.Errorf("UserAgent = %q, want file value", cfg.UserAgent)
	}
	if cfg.MaxRetries != 4 {
		t.Errorf("MaxRetries = %d, want 4", cfg.MaxRetries)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.BackoffFactor != 2*time.Second {
		t.Errorf("BackoffFactor = %v, want 2s", cfg.BackoffFactor)
	}
	if cfg.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("RedisURL = %q, want file value", cfg.RedisURL)
	}
	if cfg.DataDir != "/var/lib/courtsync" {
		t.Errorf("DataDir = %q, want file value", cfg.DataDir)
	}

	// Token untouched when the file does not set it
	if cfg.Token != "" {
		t.Errorf("Token = %q, want empty", cfg.Token)
	}
}

func TestApplyFile_ExpandsEnv(t *testing.T) {
	t.Setenv("COURTSYNC_TEST_TOKEN", "expanded-secret")

	path := filepath.Join(t.TempDir(), "courtsync.yaml")
	if err := os.WriteFile(path, []byte("token: ${COURTSYNC_TEST_TOKEN}\n"), 0644); err != nil {
		t.Fatalf("Seed write failed: %v", err)
	}

	cfg := Default()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile() failed: %v", err)
	}

	if cfg.Token != "expanded-secret" {
		t.Errorf("Token = %q, want the expanded env value", cfg.Token)
	}
}

func TestLoad_Precedence(t *testing.T) {
	// File values override environment values
	t.Setenv("COURTLISTENER_UA", "EnvApp/1.0")
	t.Setenv("COURTLISTENER_MAX_RETRIES", "3")

	path := filepath.Join(t.TempDir(), "courtsync.yaml")
	if err := os.WriteFile(path, []byte("user_agent: FileApp/1.0\n"), 0644); err != nil {
		t.Fatalf("Seed write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.UserAgent != "FileApp/1.0" {
		t.Errorf("UserAgent = %q, want the file to override the environment", cfg.UserAgent)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3 from the environment", cfg.MaxRetries)
	}
}

func TestClientConfig(t *testing.T) {
	cfg := Config{
		BaseURL:       "https://api.test/v3",
		Token:         "tok",
		UserAgent:     "App/1.0",
		MaxRetries:    5,
		Timeout:       45 * time.Second,
		BackoffFactor: 2 * time.Second,
		CacheTTL:      10 * time.Minute,
	}

	cc := cfg.ClientConfig()

	if cc.BaseURL != cfg.BaseURL {
		t.Errorf("BaseURL = %q, want %q", cc.BaseURL, cfg.BaseURL)
	}
	if cc.AuthToken != "tok" {
		t.Errorf("AuthToken = %q, want tok", cc.AuthToken)
	}
	if cc.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cc.MaxRetries)
	}
	if cc.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v, want 45s", cc.RequestTimeout)
	}
	if cc.Backoff.Factor != 2*time.Second {
		t.Errorf("Backoff.Factor = %v, want 2s", cc.Backoff.Factor)
	}
	if cc.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cc.CacheTTL)
	}
}

func TestRedisClient(t *testing.T) {
	// Unset yields no client
	cfg := Config{}
	rc, err := cfg.RedisClient()
	if err != nil {
		t.Fatalf("RedisClient() failed: %v", err)
	}
	if rc != nil {
		t.Error("RedisClient() != nil for empty RedisURL")
	}

	// Plain address form
	cfg.RedisURL = "localhost:6379"
	rc, err = cfg.RedisClient()
	if err != nil {
		t.Fatalf("RedisClient() failed for plain address: %v", err)
	}
	if rc == nil {
		t.Fatal("RedisClient() = nil for plain address")
	}
	rc.Close()

	// URL form
	cfg.RedisURL = "redis://localhost:6379/3"
	rc, err = cfg.RedisClient()
	if err != nil {
		t.Fatalf("RedisClient() failed for URL: %v", err)
	}
	if rc == nil {
		t.Fatal("RedisClient() = nil for URL")
	}
	rc.Close()

	// Bad URL form
	cfg.RedisURL = "redis://bad url with spaces"
	if _, err := cfg.RedisClient(); err == nil {
		t.Error("RedisClient() succeeded for an invalid URL")
	}
}
