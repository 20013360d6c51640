// Package config loads application configuration from an optional TOML file
// and environment variables. Environment variables win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the validated application configuration.
type Config struct {
	// GitHub App identity.
	GitHubAppID      string
	GitHubPrivateKey []byte
	WebhookSecret    string

	// Model invocation.
	GCPProjectID          string
	GCPServiceAccountKey  []byte
	GeminiModel           string
	GeminiTemperature     float64
	GeminiMaxOutputTokens int

	// Service behavior.
	ListenAddr    string
	DBPath        string
	GuidelinesDir string
	BotHandle     string
	MaxDiffChars  int
}

// fileConfig mirrors the optional TOML file. Only non-secret defaults live
// here; key material always comes from files named in the environment.
type fileConfig struct {
	ListenAddr            string  `toml:"listen_addr"`
	DBPath                string  `toml:"db_path"`
	GuidelinesDir         string  `toml:"guidelines_dir"`
	BotHandle             string  `toml:"bot_handle"`
	MaxDiffChars          int     `toml:"max_diff_chars"`
	GeminiModel           string  `toml:"gemini_model"`
	GeminiTemperature     float64 `toml:"gemini_temperature"`
	GeminiMaxOutputTokens int     `toml:"gemini_max_output_tokens"`
}

// Load reads configuration and returns a validated Config.
//
// Required environment variables: PRPATROL_GITHUB_APP_ID,
// PRPATROL_GITHUB_PRIVATE_KEY_FILE, PRPATROL_WEBHOOK_SECRET (or
// PRPATROL_WEBHOOK_SECRET_FILE), PRPATROL_GCP_PROJECT_ID, and
// PRPATROL_GCP_SA_KEY_FILE.
//
// Optional: PRPATROL_CONFIG_FILE points at a TOML file of defaults, and
// PRPATROL_LISTEN_ADDR, PRPATROL_DB_PATH, PRPATROL_GUIDELINES_DIR,
// PRPATROL_BOT_HANDLE, PRPATROL_MAX_DIFF_CHARS, PRPATROL_GEMINI_MODEL,
// PRPATROL_GEMINI_TEMPERATURE, and PRPATROL_GEMINI_MAX_OUTPUT_TOKENS
// override individual values.
func Load() (*Config, error) {
	fc := fileConfig{
		ListenAddr:            "127.0.0.1:8080",
		DBPath:                "prpatrol.db",
		GuidelinesDir:         "guidelines",
		BotHandle:             "@prpatrol",
		MaxDiffChars:          30000,
		GeminiModel:           "gemini-2.5-pro",
		GeminiTemperature:     0.2,
		GeminiMaxOutputTokens: 8192,
	}

	if path, ok := os.LookupEnv("PRPATROL_CONFIG_FILE"); ok {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		GeminiModel:           fc.GeminiModel,
		GeminiTemperature:     fc.GeminiTemperature,
		GeminiMaxOutputTokens: fc.GeminiMaxOutputTokens,
		ListenAddr:            fc.ListenAddr,
		DBPath:                fc.DBPath,
		GuidelinesDir:         fc.GuidelinesDir,
		BotHandle:             fc.BotHandle,
		MaxDiffChars:          fc.MaxDiffChars,
	}

	overrideString(&cfg.ListenAddr, "PRPATROL_LISTEN_ADDR")
	overrideString(&cfg.DBPath, "PRPATROL_DB_PATH")
	overrideString(&cfg.GuidelinesDir, "PRPATROL_GUIDELINES_DIR")
	overrideString(&cfg.BotHandle, "PRPATROL_BOT_HANDLE")
	overrideString(&cfg.GeminiModel, "PRPATROL_GEMINI_MODEL")
	if err := overrideInt(&cfg.MaxDiffChars, "PRPATROL_MAX_DIFF_CHARS"); err != nil {
		return nil, err
	}
	if err := overrideInt(&cfg.GeminiMaxOutputTokens, "PRPATROL_GEMINI_MAX_OUTPUT_TOKENS"); err != nil {
		return nil, err
	}
	if err := overrideFloat(&cfg.GeminiTemperature, "PRPATROL_GEMINI_TEMPERATURE"); err != nil {
		return nil, err
	}

	cfg.GitHubAppID = os.Getenv("PRPATROL_GITHUB_APP_ID")
	if cfg.GitHubAppID == "" {
		return nil, fmt.Errorf("PRPATROL_GITHUB_APP_ID is required")
	}

	var err error
	cfg.GitHubPrivateKey, err = requireFile("PRPATROL_GITHUB_PRIVATE_KEY_FILE")
	if err != nil {
		return nil, err
	}

	cfg.WebhookSecret, err = secretValue("PRPATROL_WEBHOOK_SECRET")
	if err != nil {
		return nil, err
	}

	cfg.GCPProjectID = os.Getenv("PRPATROL_GCP_PROJECT_ID")
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("PRPATROL_GCP_PROJECT_ID is required")
	}

	cfg.GCPServiceAccountKey, err = requireFile("PRPATROL_GCP_SA_KEY_FILE")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func overrideInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func overrideFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s has invalid number %q: %w", key, v, err)
	}
	*dst = f
	return nil
}

// requireFile reads the file named by the environment variable key.
func requireFile(key string) ([]byte, error) {
	path := os.Getenv(key)
	if path == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// secretValue resolves key either directly or through a <key>_FILE
// indirection, which is the friendlier shape for container secret mounts.
func secretValue(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	if path := os.Getenv(key + "_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s_FILE: %w", key, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("%s or %s_FILE is required", key, key)
}
