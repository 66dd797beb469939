package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// FileName is the configuration file in the user's home directory.
	FileName = ".firstvibe.config.json"

	envPrefix = "FIRSTVIBE"

	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "FIRSTVIBE_CONFIG"
)

// DefaultPath returns the configuration file path.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads the configuration at path. Priority, highest first:
//  1. FIRSTVIBE_* environment variables (e.g. FIRSTVIBE_OPENAI_APIKEY)
//  2. the JSON file
//  3. built-in defaults
//
// A missing file is not an error.
func Load(path string) (*Configuration, error) {
	v, err := newViper(path, true)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Loader returns a function that loads path on every call.
func Loader(path string) func() (*Configuration, error) {
	return func() (*Configuration, error) {
		return Load(path)
	}
}

// Save writes cfg as indented JSON with owner-only permissions. The file
// is written through a temporary file so a crash never leaves it half
// written.
func Save(path string, cfg *Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &ConfigError{Op: "encode", Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &ConfigError{Op: "write", Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".firstvibe-config-*")
	if err != nil {
		return &ConfigError{Op: "write", Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &ConfigError{Op: "write", Err: err}
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return &ConfigError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ConfigError{Op: "write", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &ConfigError{Op: "write", Err: err}
	}
	return nil
}

// Update applies fn to the stored configuration and saves it. Environment
// overrides are not applied.
func Update(path string, fn func(*Configuration) error) error {
	v, err := newViper(path, false)
	if err != nil {
		return err
	}
	cfg, err := decode(v)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return Save(path, cfg)
}

// Reset overwrites the file with the defaults.
func Reset(path string) error {
	return Save(path, Default())
}

// newViper builds a viper instance over path. Environment overrides are
// only applied when withEnv is set, so editing commands never copy
// environment secrets into the file.
func newViper(path string, withEnv bool) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("json")

	if withEnv {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, &ConfigError{
			Op:  "read",
			Err: fmt.Errorf("failed to read %s: %w", path, err),
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (*Configuration, error) {
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}
	return &cfg, nil
}

// setDefaults registers every key so that environment overrides and
// partial files both resolve.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("provider", string(d.Provider))

	for _, section := range []struct {
		name string
		pc   ProviderConfig
	}{
		{"openai", d.OpenAI.ProviderConfig},
		{"gemini", d.Gemini},
		{"claude", d.Claude},
	} {
		v.SetDefault(section.name+".apiKey", "")
		v.SetDefault(section.name+".baseUrl", "")
		v.SetDefault(section.name+".questionModel", section.pc.QuestionModel)
		v.SetDefault(section.name+".prdModel", section.pc.PRDModel)
		v.SetDefault(section.name+".trdModel", section.pc.TRDModel)
		v.SetDefault(section.name+".todoModel", section.pc.TODOModel)
	}

	v.SetDefault("openai.questionVerbosity", d.OpenAI.QuestionVerbosity)
	v.SetDefault("openai.prdVerbosity", d.OpenAI.PRDVerbosity)
	v.SetDefault("openai.trdVerbosity", d.OpenAI.TRDVerbosity)
	v.SetDefault("openai.todoVerbosity", d.OpenAI.TODOVerbosity)
	v.SetDefault("openai.questionReasoningEffort", d.OpenAI.QuestionReasoningEffort)
	v.SetDefault("openai.prdReasoningEffort", d.OpenAI.PRDReasoningEffort)
	v.SetDefault("openai.trdReasoningEffort", d.OpenAI.TRDReasoningEffort)
	v.SetDefault("openai.todoReasoningEffort", d.OpenAI.TODOReasoningEffort)

	v.SetDefault("app.defaultQuestions", d.App.DefaultQuestions)
	v.SetDefault("app.verbose", d.App.Verbose)
	v.SetDefault("app.skipTrd", d.App.SkipTRD)
	v.SetDefault("app.skipTodo", d.App.SkipTODO)
	v.SetDefault("app.log", d.App.Log)
	v.SetDefault("app.logDir", "")
	v.SetDefault("app.metricsFile", "")
	v.SetDefault("app.requestTimeoutSeconds", d.App.RequestTimeoutSeconds)
	v.SetDefault("app.rateLimitMaxRetries", d.App.RateLimitMaxRetries)
	v.SetDefault("app.rateLimitDelaySeconds", d.App.RateLimitDelaySeconds)
	v.SetDefault("app.malformedMaxRetries", d.App.MalformedMaxRetries)
}
