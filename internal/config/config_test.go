package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every PRPATROL_ env var that Load() reads.
var allConfigKeys = []string{
	"PRPATROL_CONFIG_FILE",
	"PRPATROL_GITHUB_APP_ID",
	"PRPATROL_GITHUB_PRIVATE_KEY_FILE",
	"PRPATROL_WEBHOOK_SECRET",
	"PRPATROL_WEBHOOK_SECRET_FILE",
	"PRPATROL_GCP_PROJECT_ID",
	"PRPATROL_GCP_SA_KEY_FILE",
	"PRPATROL_LISTEN_ADDR",
	"PRPATROL_DB_PATH",
	"PRPATROL_GUIDELINES_DIR",
	"PRPATROL_BOT_HANDLE",
	"PRPATROL_MAX_DIFF_CHARS",
	"PRPATROL_GEMINI_MODEL",
	"PRPATROL_GEMINI_TEMPERATURE",
	"PRPATROL_GEMINI_MAX_OUTPUT_TOKENS",
}

// isolateConfigEnv saves and unsets all PRPATROL_ env vars so tests don't
// inherit values from the host environment. t.Cleanup restores original
// values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

// setRequiredEnv writes throwaway key files and points the required env vars
// at them.
func setRequiredEnv(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "app.pem")
	saPath := filepath.Join(dir, "sa.json")
	require.NoError(t, os.WriteFile(keyPath, []byte("fake-pem"), 0o600))
	require.NoError(t, os.WriteFile(saPath, []byte(`{"type":"service_account"}`), 0o600))

	t.Setenv("PRPATROL_GITHUB_APP_ID", "12345")
	t.Setenv("PRPATROL_GITHUB_PRIVATE_KEY_FILE", keyPath)
	t.Setenv("PRPATROL_WEBHOOK_SECRET", "hush")
	t.Setenv("PRPATROL_GCP_PROJECT_ID", "test-project")
	t.Setenv("PRPATROL_GCP_SA_KEY_FILE", saPath)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	setRequiredEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "12345", cfg.GitHubAppID)
	assert.Equal(t, []byte("fake-pem"), cfg.GitHubPrivateKey)
	assert.Equal(t, "hush", cfg.WebhookSecret)
	assert.Equal(t, "test-project", cfg.GCPProjectID)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "prpatrol.db", cfg.DBPath)
	assert.Equal(t, "guidelines", cfg.GuidelinesDir)
	assert.Equal(t, "@prpatrol", cfg.BotHandle)
	assert.Equal(t, 30000, cfg.MaxDiffChars)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, 0.2, cfg.GeminiTemperature)
	assert.Equal(t, 8192, cfg.GeminiMaxOutputTokens)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateConfigEnv(t)
	setRequiredEnv(t)
	t.Setenv("PRPATROL_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("PRPATROL_MAX_DIFF_CHARS", "500")
	t.Setenv("PRPATROL_GEMINI_TEMPERATURE", "0.7")
	t.Setenv("PRPATROL_BOT_HANDLE", "@patrol-bot")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, 500, cfg.MaxDiffChars)
	assert.Equal(t, 0.7, cfg.GeminiTemperature)
	assert.Equal(t, "@patrol-bot", cfg.BotHandle)
}

func TestLoad_ConfigFileDefaultsAndEnvWins(t *testing.T) {
	isolateConfigEnv(t)
	setRequiredEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "prpatrol.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"listen_addr = \"0.0.0.0:7000\"\ngemini_model = \"gemini-2.5-flash\"\n"), 0o600))
	t.Setenv("PRPATROL_CONFIG_FILE", cfgPath)
	t.Setenv("PRPATROL_LISTEN_ADDR", "127.0.0.1:7001")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7001", cfg.ListenAddr)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
}

func TestLoad_WebhookSecretFromFile(t *testing.T) {
	isolateConfigEnv(t)
	setRequiredEnv(t)
	os.Unsetenv("PRPATROL_WEBHOOK_SECRET")

	secretPath := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(secretPath, []byte("from-file"), 0o600))
	t.Setenv("PRPATROL_WEBHOOK_SECRET_FILE", secretPath)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.WebhookSecret)
}

func TestLoad_MissingAppID(t *testing.T) {
	isolateConfigEnv(t)
	setRequiredEnv(t)
	os.Unsetenv("PRPATROL_GITHUB_APP_ID")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRPATROL_GITHUB_APP_ID")
}

func TestLoad_MissingWebhookSecret(t *testing.T) {
	isolateConfigEnv(t)
	setRequiredEnv(t)
	os.Unsetenv("PRPATROL_WEBHOOK_SECRET")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRPATROL_WEBHOOK_SECRET")
}

func TestLoad_UnreadablePrivateKeyFile(t *testing.T) {
	isolateConfigEnv(t)
	setRequiredEnv(t)
	t.Setenv("PRPATROL_GITHUB_PRIVATE_KEY_FILE", "/does/not/exist.pem")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRPATROL_GITHUB_PRIVATE_KEY_FILE")
}

func TestLoad_InvalidMaxDiffChars(t *testing.T) {
	isolateConfigEnv(t)
	setRequiredEnv(t)
	t.Setenv("PRPATROL_MAX_DIFF_CHARS", "lots")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRPATROL_MAX_DIFF_CHARS")
}
