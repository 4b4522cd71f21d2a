package config

import (
	"os"
	"strings"
)

const DefaultBaseURL = "https://dev-api.aiscreen.io"

type (
	Storage struct {
		Type           string
		Path           string
		DataSourceName string
		Bucket         string
	}

	Config struct {
		// BaseURL is the remote API host, without a trailing slash.
		BaseURL string

		// DefaultEmail and DefaultPassword are the fallback login arguments
		// for single-tenant deployments.
		DefaultEmail    string
		DefaultPassword string

		Storage Storage

		// FakeAPISecret signs tokens issued by the in-process fake upstream.
		FakeAPISecret string
	}
)

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honoured.
func Load() Config {
	baseURL := os.Getenv("CANVAS_API_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return Config{
		BaseURL:         strings.TrimSuffix(baseURL, "/"),
		DefaultEmail:    os.Getenv("CANVAS_AUTH_EMAIL"),
		DefaultPassword: os.Getenv("CANVAS_AUTH_PASSWORD"),
		Storage: Storage{
			Type:           os.Getenv("TOKEN_STORAGE_TYPE"),
			Path:           os.Getenv("TOKEN_STORAGE_PATH"),
			DataSourceName: os.Getenv("TOKEN_DATA_SOURCE_NAME"),
			Bucket:         os.Getenv("TOKEN_S3_BUCKET"),
		},
		FakeAPISecret: os.Getenv("FAKE_API_SECRET"),
	}
}

// Credentials returns the configured default login pair.
func (c Config) Credentials() (email, password string) {
	return c.DefaultEmail, c.DefaultPassword
}
