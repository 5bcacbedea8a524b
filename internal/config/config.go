// Package config resolves process-wide settings once at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	BackendGitHub = "github"
	BackendMemory = "memory"

	defaultAddr = ":7860"
)

// Config is built once and handed to constructors by value.
type Config struct {
	Secret      string
	GitHubToken string
	UserCode    string
	Addr        string
	Backend     string
	LogLevel    string

	LLMProvider string
	LLMAPIKey   string
	LLMModel    string

	NotifyAttempts     int
	NotifyInitialDelay time.Duration
	NotifyTimeout      time.Duration

	DeletePause time.Duration
	CommitPause time.Duration
}

// NewViper returns a viper instance with defaults and env bindings applied.
// Durations take Go syntax with a unit ("1s", "500ms").
// Callers may bind flags on top before passing it to Load. An explicit addr
// wins over PORT.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("backend", BackendGitHub)
	v.SetDefault("log_level", "info")
	v.SetDefault("llm_provider", ProviderGemini)
	v.SetDefault("notify_attempts", 5)
	v.SetDefault("notify_initial_delay", time.Second)
	v.SetDefault("notify_timeout", 10*time.Second)
	v.SetDefault("delete_pause", 2*time.Second)
	v.SetDefault("commit_pause", time.Second)

	_ = v.BindEnv("secret", "PAGESMITH_SECRET", "SECRET")
	_ = v.BindEnv("github_token", "GITHUB_TOKEN")
	_ = v.BindEnv("user_code", "USER_CODE")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("backend", "PUBLISH_BACKEND")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("llm_provider", "LLM_PROVIDER")
	_ = v.BindEnv("llm_model", "LLM_MODEL")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("notify_attempts", "NOTIFY_ATTEMPTS")
	_ = v.BindEnv("notify_initial_delay", "NOTIFY_INITIAL_DELAY")
	_ = v.BindEnv("notify_timeout", "NOTIFY_TIMEOUT")
	_ = v.BindEnv("delete_pause", "DELETE_PAUSE")
	_ = v.BindEnv("commit_pause", "COMMIT_PAUSE")
	return v
}

// LoadDotenv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func LoadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads every key from v into a Config.
func Load(v *viper.Viper) Config {
	cfg := Config{
		Secret:             v.GetString("secret"),
		GitHubToken:        v.GetString("github_token"),
		UserCode:           v.GetString("user_code"),
		Addr:               v.GetString("addr"),
		Backend:            strings.ToLower(v.GetString("backend")),
		LogLevel:           v.GetString("log_level"),
		LLMProvider:        strings.ToLower(v.GetString("llm_provider")),
		LLMModel:           v.GetString("llm_model"),
		NotifyAttempts:     v.GetInt("notify_attempts"),
		NotifyInitialDelay: v.GetDuration("notify_initial_delay"),
		NotifyTimeout:      v.GetDuration("notify_timeout"),
		DeletePause:        v.GetDuration("delete_pause"),
		CommitPause:        v.GetDuration("commit_pause"),
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
		if p := v.GetString("port"); p != "" {
			cfg.Addr = ":" + p
		}
	}
	switch cfg.LLMProvider {
	case ProviderAnthropic:
		cfg.LLMAPIKey = v.GetString("anthropic_api_key")
	default:
		cfg.LLMAPIKey = v.GetString("gemini_api_key")
	}
	return cfg
}

// Validate reports settings that would make the service unusable.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendGitHub:
		if c.GitHubToken == "" {
			errs = append(errs, errors.New("GITHUB_TOKEN not set"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	switch c.LLMProvider {
	case ProviderGemini, ProviderAnthropic:
		if c.LLMAPIKey == "" {
			errs = append(errs, fmt.Errorf("API key for %s not set", c.LLMProvider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLMProvider))
	}
	if c.NotifyAttempts < 1 {
		errs = append(errs, errors.New("notify attempts must be at least 1"))
	}
	for _, d := range []struct {
		env string
		val time.Duration
	}{
		{"NOTIFY_INITIAL_DELAY", c.NotifyInitialDelay},
		{"NOTIFY_TIMEOUT", c.NotifyTimeout},
		{"DELETE_PAUSE", c.DeletePause},
		{"COMMIT_PAUSE", c.CommitPause},
	} {
		// A bare number is read as nanoseconds.
		if d.val > 0 && d.val < time.Millisecond {
			errs = append(errs, fmt.Errorf("%s is %v; give a unit such as 2s", d.env, d.val))
		}
	}
	return errors.Join(errs...)
}
