package oracle

import (
	"os"
	"time"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
	EnvModel   = "MODEL_NAME"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4"
)

// Config configures the chat completions client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // per request. 0 means the caller's context alone bounds the call
}

func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Timeout: 20 * time.Second,
	}
}

// ConfigFromEnv starts from DefaultConfig and overrides it with whatever is set in the environment.
func ConfigFromEnv() Config {
	conf := DefaultConfig()
	if v := os.Getenv(EnvAPIKey); v != "" {
		conf.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		conf.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		conf.Model = v
	}
	return conf
}

func (c Config) IsValid() bool {
	return c.APIKey != "" && c.BaseURL != "" && c.Model != "" && c.Timeout >= 0
}
