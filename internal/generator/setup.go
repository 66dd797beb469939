package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kstost/firstvibe/internal/config"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/prompt"
	"github.com/kstost/firstvibe/internal/ui"
)

// ErrSetupCancelled is returned when the operator leaves the API key empty.
var ErrSetupCancelled = errors.New("setup cancelled")

type providerSetup struct {
	provider domain.ProviderType
	keyURL   string
	models   []string
}

var setupProviders = []providerSetup{
	{
		provider: domain.ProviderOpenAI,
		keyURL:   "https://platform.openai.com/account/api-keys",
		models:   []string{"gpt-5", "gpt-5-mini", "gpt-5-nano"},
	},
	{
		provider: domain.ProviderGemini,
		keyURL:   "https://aistudio.google.com/app/apikey",
		models:   []string{"gemini-2.5-pro", "gemini-2.5-flash", "gemini-2.5-flash-lite"},
	},
	{
		provider: domain.ProviderClaude,
		keyURL:   "https://console.anthropic.com/account/keys",
		models: []string{
			"claude-opus-4-1-20250805",
			"claude-opus-4-20250514",
			"claude-sonnet-4-20250514",
			"claude-3-7-sonnet-20250219",
			"claude-3-5-haiku-20241022",
		},
	},
}

// NeedsSetup reports whether the active provider has no usable API key.
func NeedsSetup(cfg *config.Configuration) bool {
	return len(domain.ParseKeys(cfg.Active().APIKey)) == 0
}

// Setup walks the operator through choosing a provider, entering its API
// key and picking a model, then saves the result to path.
func Setup(ctx context.Context, path string, p prompt.Prompter, c *ui.Console) (domain.ProviderType, error) {
	c.Styled(ui.Pink.Bold(true), "🔧 Initial setup")
	c.Muted("No API key is configured yet. Choose an AI provider to get started.")

	names := make([]string, 0, len(setupProviders))
	for _, ps := range setupProviders {
		names = append(names, ps.provider.DisplayName())
	}
	idx, err := p.Select(ctx, "Which AI provider do you want to use?", names, 0)
	if err != nil {
		return "", err
	}
	ps := setupProviders[idx]

	c.Info("Create an API key at " + ps.keyURL)
	key, err := p.Secret(ctx, fmt.Sprintf("Enter your %s API key:", ps.provider.DisplayName()))
	if err != nil {
		return "", err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		c.Warn("No API key entered. Setup cancelled.")
		return "", ErrSetupCancelled
	}

	modelIdx, err := p.Select(ctx, "Which model should generate the documents?", ps.models, 0)
	if err != nil {
		return "", err
	}
	model := ps.models[modelIdx]

	err = config.Update(path, func(cfg *config.Configuration) error {
		cfg.Provider = ps.provider
		var pc *config.ProviderConfig
		switch ps.provider {
		case domain.ProviderGemini:
			pc = &cfg.Gemini
		case domain.ProviderClaude:
			pc = &cfg.Claude
		default:
			pc = &cfg.OpenAI.ProviderConfig
		}
		pc.APIKey = key
		pc.QuestionModel, pc.PRDModel, pc.TRDModel, pc.TODOModel = model, model, model, model
		return nil
	})
	if err != nil {
		return "", err
	}

	c.Success(fmt.Sprintf("%s is configured with %s.", ps.provider.DisplayName(), model))
	c.Muted("Settings saved to " + path)
	return ps.provider, nil
}
