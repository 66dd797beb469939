package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kstost/firstvibe/internal/config"
	"github.com/kstost/firstvibe/internal/dispatch"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/generator"
	"github.com/kstost/firstvibe/internal/metrics"
	"github.com/kstost/firstvibe/internal/ui"
)

type rootFlags struct {
	verbose    bool
	skipTRD    bool
	skipTODO   bool
	questions  int
	from       string
	outDir     string
	configPath string
}

// NewRootCmd builds the firstvibe command tree.
func NewRootCmd(env *Env) *cobra.Command {
	env.fill()
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "firstvibe [description]",
		Version: ui.Version,
		Short:   "Interview-driven PRD, TRD and TODO generator",
		Long: `firstvibe interviews you about the project you want to build, then asks an
AI model to write a Product Requirements Document (prd.md), a Technical
Requirements Document (trd.md) and a development TODO list (todo.md).

Supported providers: OpenAI, Google Gemini and Anthropic Claude.

A description whose first word is a subcommand name (config, version)
must follow "--".`,
		Example: `  firstvibe
  firstvibe "A habit tracker for students" -q 5
  firstvibe -- config drift checker
  echo "A recipe planner" | firstvibe
  firstvibe --from firstvibe.json --skip-todo
  firstvibe config set provider claude
  firstvibe config mode cheap`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, env, flags, args)
		},
	}
	cmd.SetIn(env.In)
	cmd.SetOut(env.Out)
	cmd.SetErr(env.Err)

	f := cmd.Flags()
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "show provider, models and token usage")
	f.BoolVar(&flags.skipTRD, "skip-trd", false, "stop after the PRD")
	f.BoolVar(&flags.skipTODO, "skip-todo", false, "stop after the TRD")
	f.IntVarP(&flags.questions, "questions", "q", 0,
		fmt.Sprintf("number of interview questions (%d-%d, default from config)", config.MinQuestions, config.MaxQuestions))
	f.StringVar(&flags.from, "from", "", "regenerate documents from a saved "+generator.SessionFile)
	f.StringVarP(&flags.outDir, "out", "o", ".", "directory to write the documents to")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "configuration file (default ~/"+config.FileName+")")

	cmd.AddCommand(
		newConfigCmd(env, flags),
		newVersionCmd(env),
	)
	return cmd
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, env *Env, args []string) error {
	cmd := NewRootCmd(env)
	cmd.SetArgs(args)
	return MapError(cmd.ExecuteContext(ctx))
}

func (f *rootFlags) path() string {
	if f.configPath != "" {
		return f.configPath
	}
	return config.DefaultPath()
}

func runGenerate(cmd *cobra.Command, env *Env, flags *rootFlags, args []string) error {
	ctx := cmd.Context()
	path := flags.path()
	console := ui.NewConsole(env.Out)

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	verbose := flags.verbose || cfg.App.Verbose
	if verbose {
		env.Level.Set(slog.LevelDebug)
	}

	ui.PrintBanner(env.Out)

	if generator.NeedsSetup(cfg) {
		if !env.Interactive {
			return fmt.Errorf("%s: %w", cfg.Provider, domain.ErrNoKeysAvailable)
		}
		if _, err := generator.Setup(ctx, path, env.Prompter, console); err != nil {
			return err
		}
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	questions := cfg.App.DefaultQuestions
	if cmd.Flags().Changed("questions") {
		questions = flags.questions
	}
	if questions < config.MinQuestions || questions > config.MaxQuestions {
		return NewCLIError(
			fmt.Sprintf("--questions must be between %d and %d", config.MinQuestions, config.MaxQuestions),
			"", nil)
	}

	opts := generator.RunOptions{
		Questions:   questions,
		SkipTRD:     flags.skipTRD || cfg.App.SkipTRD,
		SkipTODO:    flags.skipTODO || cfg.App.SkipTODO,
		Description: strings.TrimSpace(strings.Join(args, " ")),
	}
	if flags.from != "" {
		s, err := generator.LoadSession(ctx, flags.from)
		if err != nil {
			return NewCLIError("Failed to restore the interview", "Check the path given to --from", err)
		}
		opts.Session = s
	}
	if opts.Description == "" && opts.Session == nil && !env.Interactive {
		opts.Stdin = env.In
	}
	opts.Auto = !env.Interactive

	if verbose {
		printRunHeader(console, cfg, opts)
	}

	collector := metrics.New()
	invoker := env.Invoker
	if invoker == nil {
		invoker = dispatch.New(
			dispatch.WithOperator(env.Prompter),
			dispatch.WithProgress(ui.NewSpinner(env.Err, env.Interactive)),
			dispatch.WithMetrics(collector),
			dispatch.WithLogger(env.Logger),
			dispatch.WithOutput(env.Out),
		)
	}

	gen := generator.New(invoker, config.Loader(path), env.Prompter,
		generator.WithConsole(console),
		generator.WithLogger(env.Logger),
		generator.WithOutputDir(flags.outDir),
	)

	_, runErr := gen.Run(ctx, opts)

	if summary := collector.Usage().Summary(); verbose && summary != "" {
		console.Styled(ui.LightPurple, "\n📊 Token usage\n"+strings.TrimRight(summary, "\n"))
	}
	if cfg.App.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.App.MetricsFile); err != nil {
			env.Logger.Warn("failed to write metrics file",
				slog.String("path", cfg.App.MetricsFile),
				slog.String("error", err.Error()),
			)
		}
	}
	return runErr
}

func printRunHeader(c *ui.Console, cfg *config.Configuration, opts generator.RunOptions) {
	c.Styled(ui.Lavender.Bold(true), "⚙️  Run settings")
	c.Muted(fmt.Sprintf("  provider:  %s", cfg.Provider.DisplayName()))
	for _, p := range domain.Purposes() {
		c.Muted(fmt.Sprintf("  %-9s  %s", strings.ToLower(string(p))+":", cfg.ModelFor(p)))
	}
	c.Muted(fmt.Sprintf("  questions: %d", opts.Questions))
	c.Muted(fmt.Sprintf("  mode:      %s", config.CurrentMode(cfg)))
	if opts.SkipTRD {
		c.Muted("  skipping:  TRD and TODO")
	} else if opts.SkipTODO {
		c.Muted("  skipping:  TODO")
	}
}

func newVersionCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(env.Out, "firstvibe v%s\n", ui.Version)
		},
	}
}
