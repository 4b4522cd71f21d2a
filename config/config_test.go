package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CANVAS_API_BASE_URL", "")
	t.Setenv("TOKEN_STORAGE_TYPE", "")

	cfg := Load()
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL mismatch: got %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Storage.Type != "" {
		t.Errorf("Storage.Type should be empty by default, got %q", cfg.Storage.Type)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CANVAS_API_BASE_URL", "http://localhost:8080/")
	t.Setenv("CANVAS_AUTH_EMAIL", "dev@example.com")
	t.Setenv("CANVAS_AUTH_PASSWORD", "secret")
	t.Setenv("TOKEN_STORAGE_TYPE", "sqlite")
	t.Setenv("TOKEN_DATA_SOURCE_NAME", "tokens.db")

	cfg := Load()
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL should have trailing slash trimmed, got %q", cfg.BaseURL)
	}
	email, password := cfg.Credentials()
	if email != "dev@example.com" || password != "secret" {
		t.Errorf("Credentials mismatch: got %q/%q", email, password)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.DataSourceName != "tokens.db" {
		t.Errorf("Storage mismatch: got %+v", cfg.Storage)
	}
}
