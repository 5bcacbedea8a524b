package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")
	cfg := Load(NewViper())
	assert.Equal(t, ":7860", cfg.Addr)
	assert.Equal(t, BackendGitHub, cfg.Backend)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, 5, cfg.NotifyAttempts)
	assert.Equal(t, time.Second, cfg.NotifyInitialDelay)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
}

func TestLoad_env(t *testing.T) {
	t.Setenv("PAGESMITH_SECRET", "s1")
	t.Setenv("GITHUB_TOKEN", "gh")
	t.Setenv("PORT", "9000")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("COMMIT_PAUSE", "250ms")
	cfg := Load(NewViper())
	assert.Equal(t, "s1", cfg.Secret)
	assert.Equal(t, "gh", cfg.GitHubToken)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, "ak", cfg.LLMAPIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.CommitPause)
	require.NoError(t, cfg.Validate())
}

func TestLoad_explicitAddrWinsOverPort(t *testing.T) {
	t.Setenv("PORT", "9000")
	v := NewViper()
	v.Set("addr", "127.0.0.1:8081")
	assert.Equal(t, "127.0.0.1:8081", Load(v).Addr)
}

func TestValidate(t *testing.T) {
	cfg := Config{Backend: BackendGitHub, LLMProvider: ProviderGemini, NotifyAttempts: 5}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.Contains(t, err.Error(), "gemini")

	cfg = Config{Backend: BackendMemory, LLMProvider: ProviderGemini, LLMAPIKey: "k", NotifyAttempts: 1}
	assert.NoError(t, cfg.Validate())

	cfg.LLMProvider = "openai"
	assert.Error(t, cfg.Validate())
}

func TestValidate_durationWithoutUnit(t *testing.T) {
	t.Setenv("NOTIFY_INITIAL_DELAY", "1")
	t.Setenv("DELETE_PAUSE", "2")
	t.Setenv("COMMIT_PAUSE", "0")
	cfg := Load(NewViper())
	cfg.Backend = BackendMemory
	cfg.LLMAPIKey = "k"
	assert.Equal(t, time.Nanosecond, cfg.NotifyInitialDelay)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFY_INITIAL_DELAY")
	assert.Contains(t, err.Error(), "DELETE_PAUSE")
	assert.NotContains(t, err.Error(), "COMMIT_PAUSE")

	t.Setenv("NOTIFY_INITIAL_DELAY", "1s")
	t.Setenv("DELETE_PAUSE", "2s")
	cfg = Load(NewViper())
	cfg.Backend = BackendMemory
	cfg.LLMAPIKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotenv(t *testing.T) {
	require.NoError(t, LoadDotenv(""))
	require.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PAGESMITH_TEST_DOTENV=yes\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PAGESMITH_TEST_DOTENV") })
	require.NoError(t, LoadDotenv(path))
	assert.Equal(t, "yes", os.Getenv("PAGESMITH_TEST_DOTENV"))
}
