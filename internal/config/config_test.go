package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kstost/firstvibe/internal/domain"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != domain.ProviderOpenAI {
		t.Errorf("Provider = %s, want openai", cfg.Provider)
	}
	if cfg.OpenAI.PRDModel != "gpt-5" || cfg.Gemini.PRDModel != "gemini-2.5-pro" {
		t.Errorf("models = %s / %s", cfg.OpenAI.PRDModel, cfg.Gemini.PRDModel)
	}
	if cfg.App.DefaultQuestions != 10 || cfg.App.RateLimitMaxRetries != 1000 || cfg.App.MalformedMaxRetries != 2 {
		t.Errorf("app = %+v", cfg.App)
	}
}

func TestLoad_PartialFileMergesDefaults(t *testing.T) {
	path := writeFile(t, `{
  "provider": "claude",
  "claude": {"apiKey": "sk-ant-file", "prdModel": "claude-sonnet-4"},
  "app": {"defaultQuestions": 5, "skipTodo": true}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != domain.ProviderClaude {
		t.Errorf("Provider = %s, want claude", cfg.Provider)
	}
	if cfg.Claude.APIKey != "sk-ant-file" {
		t.Errorf("Claude.APIKey = %q", cfg.Claude.APIKey)
	}
	if got := cfg.ModelFor(domain.PurposePRD); got != "claude-sonnet-4" {
		t.Errorf("ModelFor(PRD) = %s", got)
	}
	if got := cfg.ModelFor(domain.PurposeTRD); got != "claude-opus-4-1-20250805" {
		t.Errorf("ModelFor(TRD) = %s, want default", got)
	}
	if cfg.App.DefaultQuestions != 5 || !cfg.App.SkipTODO {
		t.Errorf("app = %+v", cfg.App)
	}
	if opts := cfg.OptionsFor(domain.PurposePRD); opts != (domain.GenerationOptions{}) {
		t.Errorf("OptionsFor() = %+v, want none for claude", opts)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, `{"openai": {"apiKey": "sk-file"}}`)
	t.Setenv("FIRSTVIBE_OPENAI_APIKEY", "sk-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Errorf("OpenAI.APIKey = %q, want sk-env", cfg.OpenAI.APIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{name: "broken json", content: `{"provider":`, check: func(err error) bool {
			_, ok := err.(*ConfigError)
			return ok
		}},
		{name: "bad provider", content: `{"provider":"azure"}`, check: IsValidationError},
		{name: "too many questions", content: `{"app":{"defaultQuestions":51}}`, check: IsValidationError},
		{name: "bad verbosity", content: `{"openai":{"prdVerbosity":"loud"}}`, check: IsValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil || !tt.check(err) {
				t.Errorf("Load() error = %v (%T)", err, err)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	if _, err := Set(path, "openai.apiKey", "sk-new"); err != nil {
		t.Fatalf("Set(apiKey) error = %v", err)
	}
	if _, err := Set(path, "app.defaultQuestions", "15"); err != nil {
		t.Fatalf("Set(defaultQuestions) error = %v", err)
	}
	if _, err := Set(path, "APP.SKIPTRD", "true"); err != nil {
		t.Fatalf("Set(skipTrd) error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-new" || cfg.App.DefaultQuestions != 15 || !cfg.App.SkipTRD {
		t.Errorf("cfg = %+v / %+v", cfg.OpenAI.ProviderConfig, cfg.App)
	}

	got, err := Get(path, "app.defaultQuestions")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != 15 && got != float64(15) {
		t.Errorf("Get(app.defaultQuestions) = %v (%T)", got, got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"defaultQuestions": 15`) || !strings.Contains(string(raw), `"apiKey": "sk-new"`) {
		t.Errorf("file lost camelCase keys:\n%s", raw)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Errorf("saved file is not JSON: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestSet_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	if _, err := Set(path, "openai.temperature", "1"); !IsUnknownKeyError(err) {
		t.Errorf("Set(unknown) error = %v, want UnknownKeyError", err)
	}
	if _, err := Set(path, "provider", "azure"); !IsValidationError(err) {
		t.Errorf("Set(provider=azure) error = %v, want ValidationError", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected Set should not create the file")
	}
}

func TestSet_DoesNotPersistEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	t.Setenv("FIRSTVIBE_GEMINI_APIKEY", "from-env")

	if _, err := Set(path, "provider", "gemini"); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "from-env") {
		t.Errorf("environment secret written to file:\n%s", raw)
	}
}

func TestReset(t *testing.T) {
	path := writeFile(t, `{"provider":"gemini","app":{"defaultQuestions":3}}`)
	if err := Reset(path); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != domain.ProviderOpenAI || cfg.App.DefaultQuestions != 10 {
		t.Errorf("after Reset: provider=%s questions=%d", cfg.Provider, cfg.App.DefaultQuestions)
	}
}

func TestModes(t *testing.T) {
	cfg := Default()
	if got := CurrentMode(cfg); got != ModeCustom {
		t.Errorf("CurrentMode(default) = %s, want custom", got)
	}

	if err := ApplyMode(cfg, ModeCheap); err != nil {
		t.Fatal(err)
	}
	if got := CurrentMode(cfg); got != ModeCheap {
		t.Errorf("CurrentMode() = %s, want cheap", got)
	}
	if cfg.OpenAI.TODOModel != "gpt-5-mini" || cfg.OpenAI.PRDReasoningEffort != "minimal" || cfg.Gemini.PRDModel != "gemini-2.5-flash-lite" {
		t.Errorf("cheap preset not applied: %+v", cfg.OpenAI)
	}

	cfg.Provider = domain.ProviderClaude
	if got := CurrentMode(cfg); got != ModeCheap {
		t.Errorf("CurrentMode(claude) = %s, want cheap", got)
	}

	if err := ApplyMode(cfg, ModeExpensive); err != nil {
		t.Fatal(err)
	}
	if got := CurrentMode(cfg); got != ModeExpensive {
		t.Errorf("CurrentMode() = %s, want expensive", got)
	}

	cfg.Claude.TRDModel = "something-else"
	if got := CurrentMode(cfg); got != ModeCustom {
		t.Errorf("CurrentMode(mixed) = %s, want custom", got)
	}

	if err := ApplyMode(cfg, "turbo"); err == nil {
		t.Error("ApplyMode(turbo) expected error")
	}
}

func TestFlatten(t *testing.T) {
	flat, err := Flatten(Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != len(AvailableKeys()) {
		t.Errorf("len(Flatten()) = %d, want %d", len(flat), len(AvailableKeys()))
	}
	if flat["openai.questionVerbosity"] != "low" || flat["app.defaultQuestions"] != float64(10) {
		t.Errorf("Flatten() = %v", flat)
	}
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("FIRSTVIBE_CLAUDE_APIKEY", "sk-ant-env")

	err := Update(path, func(c *Configuration) error {
		c.Provider = domain.ProviderClaude
		return ApplyMode(c, ModeCheap)
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(data), "sk-ant-env") {
		t.Error("Update() persisted an environment override")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != domain.ProviderClaude {
		t.Errorf("Provider = %v, want claude", cfg.Provider)
	}
	if got := CurrentMode(cfg); got != ModeCheap {
		t.Errorf("CurrentMode() = %v, want cheap", got)
	}

	wantErr := errors.New("stop")
	if err := Update(path, func(*Configuration) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("Update() error = %v, want %v", err, wantErr)
	}
}
