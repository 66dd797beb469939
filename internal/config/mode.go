package config

import (
	"fmt"

	"github.com/kstost/firstvibe/internal/domain"
)

// Mode is a preset of models and knobs.
type Mode string

const (
	ModeCheap     Mode = "cheap"
	ModeExpensive Mode = "expensive"
	ModeCustom    Mode = "custom"
)

type preset struct {
	openAIModel string
	verbosity   string
	effort      string
	geminiModel string
	claudeModel string
}

var presets = map[Mode]preset{
	ModeCheap: {
		openAIModel: "gpt-5-mini",
		verbosity:   "low",
		effort:      "minimal",
		geminiModel: "gemini-2.5-flash-lite",
		claudeModel: "claude-3-5-haiku-20241022",
	},
	ModeExpensive: {
		openAIModel: "gpt-5",
		verbosity:   "high",
		effort:      "high",
		geminiModel: "gemini-2.5-pro",
		claudeModel: "claude-opus-4-1-20250805",
	},
}

// Describe returns a one-line summary of a preset for the active provider.
func Describe(m Mode, p domain.ProviderType) string {
	ps, ok := presets[m]
	if !ok {
		return "individual settings are mixed"
	}
	switch p {
	case domain.ProviderGemini:
		return "model " + ps.geminiModel
	case domain.ProviderClaude:
		return "model " + ps.claudeModel
	}
	return fmt.Sprintf("model %s, verbosity %s, reasoning %s", ps.openAIModel, ps.verbosity, ps.effort)
}

// ApplyMode sets every model and knob of every provider to the preset.
func ApplyMode(cfg *Configuration, m Mode) error {
	ps, ok := presets[m]
	if !ok {
		return &InvalidValueError{Key: "mode", Value: m, AllowedValues: []string{string(ModeCheap), string(ModeExpensive)}}
	}

	setModels(&cfg.OpenAI.ProviderConfig, ps.openAIModel)
	setModels(&cfg.Gemini, ps.geminiModel)
	setModels(&cfg.Claude, ps.claudeModel)

	o := &cfg.OpenAI
	o.QuestionVerbosity, o.PRDVerbosity, o.TRDVerbosity, o.TODOVerbosity = ps.verbosity, ps.verbosity, ps.verbosity, ps.verbosity
	o.QuestionReasoningEffort, o.PRDReasoningEffort, o.TRDReasoningEffort, o.TODOReasoningEffort = ps.effort, ps.effort, ps.effort, ps.effort
	return nil
}

// CurrentMode reports which preset the active provider's settings match.
func CurrentMode(cfg *Configuration) Mode {
	for _, m := range []Mode{ModeCheap, ModeExpensive} {
		if matches(cfg, presets[m]) {
			return m
		}
	}
	return ModeCustom
}

func matches(cfg *Configuration, ps preset) bool {
	switch cfg.Provider {
	case domain.ProviderGemini:
		return allModels(cfg.Gemini, ps.geminiModel)
	case domain.ProviderClaude:
		return allModels(cfg.Claude, ps.claudeModel)
	}
	for _, p := range domain.Purposes() {
		if cfg.OpenAI.verbosity(p) != ps.verbosity || cfg.OpenAI.reasoningEffort(p) != ps.effort {
			return false
		}
	}
	return allModels(cfg.OpenAI.ProviderConfig, ps.openAIModel)
}

func allModels(pc ProviderConfig, model string) bool {
	for _, p := range domain.Purposes() {
		if pc.Model(p) != model {
			return false
		}
	}
	return true
}

func setModels(pc *ProviderConfig, model string) {
	pc.QuestionModel, pc.PRDModel, pc.TRDModel, pc.TODOModel = model, model, model, model
}
