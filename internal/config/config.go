// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"] (the web client dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// ClientURL is the base URL of the web client, used to build room
	// invite links. Defaults to "http://localhost:3000".
	ClientURL string

	// GeminiAPIKey authenticates receipt extraction calls. Required.
	GeminiAPIKey string

	// GeminiModel overrides the extraction model. Empty means the
	// extractor's default.
	GeminiModel string

	// UploadDir is the directory holding transient uploaded images and
	// videos. Defaults to "uploads".
	UploadDir string

	// MaxUploadBytes caps request body sizes, receipt photos included.
	// Defaults to 10 MiB. Set MAX_UPLOAD_BYTES to override.
	MaxUploadBytes int64
}

// Automation holds configuration for the Instagram automation CLI.
// It is loaded separately from the API server config because the two
// binaries run with different credentials and neither needs the other's.
type Automation struct {
	// Username and Password are the account the browsing/polling flows
	// log in with. Required by `automation login` and `automation watch`.
	Username string
	Password string

	// PostUsername and PostPassword are the separate account used for
	// scheduled video posting. Required by `automation post`.
	PostUsername string
	PostPassword string

	// StateFile is where the serialized session is persisted between runs.
	// Defaults to "instagram_state.json".
	StateFile string

	// UploadDir is where candidate videos are read from. Defaults to "uploads".
	UploadDir string

	// CoverImage is the cover frame attached to posted videos.
	CoverImage string

	// Caption is attached to every posted video.
	Caption string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		ClientURL:   getEnv("CLIENT_URL", "http://localhost:3000"),
		GeminiModel: os.Getenv("GEMINI_MODEL"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
	}

	cfg.MaxUploadBytes = 10 << 20
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
		cfg.MaxUploadBytes = n
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// LoadAutomation reads the Instagram automation configuration. Credentials
// are not validated here; each subcommand checks for the account it needs,
// so `automation post` does not demand the browsing account's password.
func LoadAutomation() Automation {
	return Automation{
		Username:     os.Getenv("INSTAGRAM_USERNAME"),
		Password:     os.Getenv("INSTAGRAM_PASSWORD"),
		PostUsername: os.Getenv("INSTAGRAM_POST_USERNAME"),
		PostPassword: os.Getenv("INSTAGRAM_POST_PASSWORD"),
		StateFile:    getEnv("INSTAGRAM_STATE_FILE", "instagram_state.json"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		CoverImage:   os.Getenv("POST_COVER_IMAGE"),
		Caption:      getEnv("POST_CAPTION", "Your caption here..."),
	}
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
