package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "hypothesis-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetryConfig holds shared retry settings for external calls.
type RetryConfig struct {
	// MaxRetries is the number of retry attempts after the first failure
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the base backoff duration; the wait before retry n is
	// RetryDelay * n (default 1s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// ModelConfig holds settings for the text-completion API.
type ModelConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the model identifier (e.g. "claude-3-7-sonnet-20250219").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the completion length (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// StagePrompts holds the externally supplied system prompt templates, one
// per stage. The workflow substitutes placeholders into them verbatim and
// never validates their well-formedness.
type StagePrompts struct {
	Stage1 string `json:"stage1" yaml:"stage1"`
	Stage2 string `json:"stage2" yaml:"stage2"`
	Stage3 string `json:"stage3" yaml:"stage3"`
}

// ResearchConfig holds settings for the research dispatch providers.
type ResearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PerplexityAPIKey authenticates against the Perplexity research API.
	PerplexityAPIKey string `json:"perplexity_api_key,omitempty" yaml:"perplexity_api_key,omitempty"`

	// ElicitAPIKey authenticates against the Elicit search API.
	ElicitAPIKey string `json:"elicit_api_key,omitempty" yaml:"elicit_api_key,omitempty"`
}

// WorkflowConfig groups the configuration for the whole pipeline.
type WorkflowConfig struct {
	Model    ModelConfig    `json:"model" yaml:"model"`
	Prompts  StagePrompts   `json:"prompts" yaml:"prompts"`
	Retry    RetryConfig    `json:"retry" yaml:"retry"`
	Research ResearchConfig `json:"research" yaml:"research"`
}
