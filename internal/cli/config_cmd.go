package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kstost/firstvibe/internal/config"
	"github.com/kstost/firstvibe/internal/security"
	"github.com/kstost/firstvibe/internal/ui"
)

func newConfigCmd(env *Env, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
		Long: `Show or change the configuration stored in ~/` + config.FileName + `.

Environment variables such as FIRSTVIBE_OPENAI_APIKEY override the file.
Set FIRSTVIBE_CONFIG to use another file.`,
	}
	cmd.AddCommand(
		newConfigGetCmd(env, flags),
		newConfigSetCmd(env, flags),
		newConfigListCmd(env, flags),
		newConfigModeCmd(env, flags),
		newConfigResetCmd(env, flags),
		newConfigPathCmd(env, flags),
	)
	return cmd
}

func newConfigGetCmd(env *Env, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.CanonicalKey(args[0])
			if err != nil {
				return err
			}
			v, err := config.Get(flags.path(), key)
			if err != nil {
				return err
			}
			fmt.Fprintln(env.Out, displayValue(key, v))
			return nil
		},
	}
}

func newConfigSetCmd(env *Env, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value",
		Example: `  firstvibe config set provider gemini
  firstvibe config set openai.apiKey sk-...
  firstvibe config set app.defaultQuestions 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.CanonicalKey(args[0])
			if err != nil {
				return err
			}
			v, err := config.Set(flags.path(), key, args[1])
			if err != nil {
				return err
			}
			ui.NewConsole(env.Out).Styled(ui.Mint, fmt.Sprintf("✅ %s = %s", key, displayValue(key, v)))
			return nil
		},
	}
}

func newConfigListCmd(env *Env, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.path())
			if err != nil {
				return err
			}
			values, err := config.Flatten(cfg)
			if err != nil {
				return err
			}

			c := ui.NewConsole(env.Out)
			c.Styled(ui.Lavender.Bold(true), "📋 Configuration ("+flags.path()+")")
			section := ""
			for _, key := range config.AvailableKeys() {
				if s, _, ok := strings.Cut(key, "."); ok && s != section {
					section = s
					c.Styled(ui.Orange.Bold(true), "\n["+section+"]")
				}
				fmt.Fprintf(env.Out, "  %s = %s\n", ui.Blue.Render(key), displayValue(key, values[key]))
			}
			fmt.Fprintln(env.Out)
			c.Muted(fmt.Sprintf("Mode: %s", config.CurrentMode(cfg)))
			return nil
		},
	}
}

func newConfigModeCmd(env *Env, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "mode [cheap|expensive|status]",
		Short:     "Switch every model to a cost preset",
		ValidArgs: []string{string(config.ModeCheap), string(config.ModeExpensive), "status"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ui.NewConsole(env.Out)
			if len(args) == 0 || args[0] == "status" {
				cfg, err := config.Load(flags.path())
				if err != nil {
					return err
				}
				mode := config.CurrentMode(cfg)
				c.Info(fmt.Sprintf("Current mode: %s (%s)", mode, cfg.Provider.DisplayName()))
				c.Muted("  " + config.Describe(mode, cfg.Provider))
				for _, m := range []config.Mode{config.ModeCheap, config.ModeExpensive} {
					c.Muted(fmt.Sprintf("  %-9s %s", m, config.Describe(m, cfg.Provider)))
				}
				return nil
			}

			mode := config.Mode(args[0])
			err := config.Update(flags.path(), func(cfg *config.Configuration) error {
				return config.ApplyMode(cfg, mode)
			})
			if err != nil {
				return err
			}
			c.Success(fmt.Sprintf("Switched to %s mode.", mode))
			return nil
		},
	}
}

func newConfigResetCmd(env *Env, flags *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ui.NewConsole(env.Out)
			if !force {
				ok, err := env.Prompter.Confirm(cmd.Context(),
					"Reset every setting, including API keys, to the defaults?", false)
				if err != nil {
					return err
				}
				if !ok {
					c.Warn("Reset cancelled.")
					return nil
				}
			}
			if err := config.Reset(flags.path()); err != nil {
				return err
			}
			c.Success("Configuration reset to the defaults.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation")
	return cmd
}

func newConfigPathCmd(env *Env, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(env.Out, flags.path())
		},
	}
}

func displayValue(key string, v any) string {
	if v == nil {
		return "(not set)"
	}
	if s, ok := v.(string); ok && s == "" {
		return "(not set)"
	}
	return config.FormatValue(key, v, security.Mask)
}
