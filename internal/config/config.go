// Package config loads and edits the firstvibe configuration file.
// Every AI call receives a freshly loaded Configuration; nothing is cached
// between calls, so edits made mid-session apply to the next call.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/kstost/firstvibe/internal/domain"
)

// Configuration mirrors ~/.firstvibe.config.json.
type Configuration struct {
	Provider domain.ProviderType `json:"provider" mapstructure:"provider"`
	OpenAI   OpenAIConfig        `json:"openai" mapstructure:"openai"`
	Gemini   ProviderConfig      `json:"gemini" mapstructure:"gemini"`
	Claude   ProviderConfig      `json:"claude" mapstructure:"claude"`
	App      AppConfig           `json:"app" mapstructure:"app"`
}

// ProviderConfig holds the credentials and per-purpose models of a provider.
type ProviderConfig struct {
	// APIKey may hold several comma-separated keys.
	APIKey  string `json:"apiKey" mapstructure:"apiKey"`
	BaseURL string `json:"baseUrl,omitempty" mapstructure:"baseUrl"`

	QuestionModel string `json:"questionModel" mapstructure:"questionModel"`
	PRDModel      string `json:"prdModel" mapstructure:"prdModel"`
	TRDModel      string `json:"trdModel" mapstructure:"trdModel"`
	TODOModel     string `json:"todoModel" mapstructure:"todoModel"`
}

// OpenAIConfig adds the knobs only OpenAI supports.
type OpenAIConfig struct {
	ProviderConfig `mapstructure:",squash"`

	QuestionVerbosity string `json:"questionVerbosity" mapstructure:"questionVerbosity"`
	PRDVerbosity      string `json:"prdVerbosity" mapstructure:"prdVerbosity"`
	TRDVerbosity      string `json:"trdVerbosity" mapstructure:"trdVerbosity"`
	TODOVerbosity     string `json:"todoVerbosity" mapstructure:"todoVerbosity"`

	QuestionReasoningEffort string `json:"questionReasoningEffort" mapstructure:"questionReasoningEffort"`
	PRDReasoningEffort      string `json:"prdReasoningEffort" mapstructure:"prdReasoningEffort"`
	TRDReasoningEffort      string `json:"trdReasoningEffort" mapstructure:"trdReasoningEffort"`
	TODOReasoningEffort     string `json:"todoReasoningEffort" mapstructure:"todoReasoningEffort"`
}

// AppConfig holds application behavior.
type AppConfig struct {
	DefaultQuestions int  `json:"defaultQuestions" mapstructure:"defaultQuestions"`
	Verbose          bool `json:"verbose" mapstructure:"verbose"`
	SkipTRD          bool `json:"skipTrd" mapstructure:"skipTrd"`
	SkipTODO         bool `json:"skipTodo" mapstructure:"skipTodo"`

	// Log enables request/response audit records.
	Log    bool   `json:"log" mapstructure:"log"`
	LogDir string `json:"logDir,omitempty" mapstructure:"logDir"`

	// MetricsFile receives a Prometheus text export at the end of a run.
	MetricsFile string `json:"metricsFile,omitempty" mapstructure:"metricsFile"`

	RequestTimeoutSeconds int `json:"requestTimeoutSeconds" mapstructure:"requestTimeoutSeconds"`
	RateLimitMaxRetries   int `json:"rateLimitMaxRetries" mapstructure:"rateLimitMaxRetries"`
	RateLimitDelaySeconds int `json:"rateLimitDelaySeconds" mapstructure:"rateLimitDelaySeconds"`
	MalformedMaxRetries   int `json:"malformedMaxRetries" mapstructure:"malformedMaxRetries"`
}

// Allowed values for the OpenAI knobs.
var (
	Verbosities      = []string{"low", "medium", "high"}
	ReasoningEfforts = []string{"minimal", "low", "medium", "high"}
)

const (
	MinQuestions = 1
	MaxQuestions = 50
)

// Default returns the built-in configuration.
func Default() *Configuration {
	return &Configuration{
		Provider: domain.ProviderOpenAI,
		OpenAI: OpenAIConfig{
			ProviderConfig: ProviderConfig{
				QuestionModel: "gpt-5",
				PRDModel:      "gpt-5",
				TRDModel:      "gpt-5",
				TODOModel:     "gpt-5",
			},
			QuestionVerbosity:       "low",
			PRDVerbosity:            "medium",
			TRDVerbosity:            "medium",
			TODOVerbosity:           "medium",
			QuestionReasoningEffort: "minimal",
			PRDReasoningEffort:      "medium",
			TRDReasoningEffort:      "medium",
			TODOReasoningEffort:     "medium",
		},
		Gemini: ProviderConfig{
			QuestionModel: "gemini-2.5-pro",
			PRDModel:      "gemini-2.5-pro",
			TRDModel:      "gemini-2.5-pro",
			TODOModel:     "gemini-2.5-pro",
		},
		Claude: ProviderConfig{
			QuestionModel: "claude-opus-4-1-20250805",
			PRDModel:      "claude-opus-4-1-20250805",
			TRDModel:      "claude-opus-4-1-20250805",
			TODOModel:     "claude-opus-4-1-20250805",
		},
		App: AppConfig{
			DefaultQuestions:      10,
			RequestTimeoutSeconds: 300,
			RateLimitMaxRetries:   1000,
			RateLimitDelaySeconds: 10,
			MalformedMaxRetries:   2,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Configuration) Validate() error {
	var errs []string

	if !c.Provider.IsValid() {
		errs = append(errs, fmt.Sprintf("provider must be one of openai, gemini, claude (got %q)", c.Provider))
	}

	if c.App.DefaultQuestions < MinQuestions || c.App.DefaultQuestions > MaxQuestions {
		errs = append(errs, fmt.Sprintf("app.defaultQuestions must be between %d and %d", MinQuestions, MaxQuestions))
	}
	if c.App.RequestTimeoutSeconds <= 0 {
		errs = append(errs, "app.requestTimeoutSeconds must be positive")
	}
	if c.App.RateLimitMaxRetries < 0 {
		errs = append(errs, "app.rateLimitMaxRetries cannot be negative")
	}
	if c.App.RateLimitDelaySeconds < 0 {
		errs = append(errs, "app.rateLimitDelaySeconds cannot be negative")
	}
	if c.App.MalformedMaxRetries < 0 {
		errs = append(errs, "app.malformedMaxRetries cannot be negative")
	}

	for _, p := range domain.Purposes() {
		key := "openai." + purposePrefix(p)
		if v := c.OpenAI.verbosity(p); v != "" && !slices.Contains(Verbosities, v) {
			errs = append(errs, fmt.Sprintf("%sVerbosity must be one of %v", key, Verbosities))
		}
		if e := c.OpenAI.reasoningEffort(p); e != "" && !slices.Contains(ReasoningEfforts, e) {
			errs = append(errs, fmt.Sprintf("%sReasoningEffort must be one of %v", key, ReasoningEfforts))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Section returns the settings of the given provider.
func (c *Configuration) Section(p domain.ProviderType) ProviderConfig {
	switch p {
	case domain.ProviderGemini:
		return c.Gemini
	case domain.ProviderClaude:
		return c.Claude
	default:
		return c.OpenAI.ProviderConfig
	}
}

// Active returns the section of the selected provider.
func (c *Configuration) Active() ProviderConfig {
	return c.Section(c.Provider)
}

// ModelFor returns the active provider's model for a purpose.
func (c *Configuration) ModelFor(p domain.Purpose) string {
	return c.Active().Model(p)
}

// OptionsFor returns the generation knobs for a purpose. Only OpenAI has any.
func (c *Configuration) OptionsFor(p domain.Purpose) domain.GenerationOptions {
	if c.Provider != domain.ProviderOpenAI {
		return domain.GenerationOptions{}
	}
	return domain.GenerationOptions{
		Verbosity:       c.OpenAI.verbosity(p),
		ReasoningEffort: c.OpenAI.reasoningEffort(p),
	}
}

// Model returns the model configured for a purpose.
func (pc ProviderConfig) Model(p domain.Purpose) string {
	switch p {
	case domain.PurposeQuestion:
		return pc.QuestionModel
	case domain.PurposePRD:
		return pc.PRDModel
	case domain.PurposeTRD:
		return pc.TRDModel
	case domain.PurposeTODO:
		return pc.TODOModel
	}
	return ""
}

func (oc OpenAIConfig) verbosity(p domain.Purpose) string {
	switch p {
	case domain.PurposeQuestion:
		return oc.QuestionVerbosity
	case domain.PurposePRD:
		return oc.PRDVerbosity
	case domain.PurposeTRD:
		return oc.TRDVerbosity
	case domain.PurposeTODO:
		return oc.TODOVerbosity
	}
	return ""
}

func (oc OpenAIConfig) reasoningEffort(p domain.Purpose) string {
	switch p {
	case domain.PurposeQuestion:
		return oc.QuestionReasoningEffort
	case domain.PurposePRD:
		return oc.PRDReasoningEffort
	case domain.PurposeTRD:
		return oc.TRDReasoningEffort
	case domain.PurposeTODO:
		return oc.TODOReasoningEffort
	}
	return ""
}

func purposePrefix(p domain.Purpose) string {
	switch p {
	case domain.PurposeQuestion:
		return "question"
	case domain.PurposePRD:
		return "prd"
	case domain.PurposeTRD:
		return "trd"
	default:
		return "todo"
	}
}

// RequestTimeout returns the per-attempt deadline.
func (a AppConfig) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RateLimitDelay returns the fixed backoff between rate-limited attempts.
func (a AppConfig) RateLimitDelay() time.Duration {
	return time.Duration(a.RateLimitDelaySeconds) * time.Second
}

// AuditDir returns where audit records go, defaulting to ~/.firstvibe/logs.
func (a AppConfig) AuditDir() string {
	if a.LogDir != "" {
		return a.LogDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".firstvibe", "logs")
	}
	return filepath.Join(home, ".firstvibe", "logs")
}
