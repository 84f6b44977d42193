package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rigforge")
	t.Setenv("AUTH_URL", "https://auth.example.com")
	t.Setenv("AUTH_SERVICE_KEY", "svc-key")
	t.Setenv("STORAGE_BUCKET", "component-images")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("listen addr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("log level = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
}

func TestLoad_ReportsAllMissingVariables(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_URL", "")
	t.Setenv("AUTH_SERVICE_KEY", "x")
	t.Setenv("STORAGE_BUCKET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, name := range []string{"DATABASE_URL", "AUTH_URL", "STORAGE_BUCKET"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error does not name %s: %v", name, err)
		}
	}
	if strings.Contains(err.Error(), "AUTH_SERVICE_KEY") {
		t.Error("error names a variable that is present")
	}
}
