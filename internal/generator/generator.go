// Package generator runs the firstvibe interview and turns its answers into
// a PRD, a TRD and a TODO list through the AI dispatcher.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kstost/firstvibe/internal/config"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/prompt"
	"github.com/kstost/firstvibe/internal/ui"
)

var headingStyle = ui.Lavender.Bold(true)

// Output file names.
const (
	PRDFile      = "prd.md"
	TRDFile      = "trd.md"
	TODOFile     = "todo.md"
	TODOYAMLFile = "todo.yaml"
)

// ErrEmptyDescription is returned when no project description was given.
var ErrEmptyDescription = errors.New("project description is empty")

// Invoker performs one AI call. dispatch.Dispatcher satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, cfg *config.Configuration, req domain.Request) (domain.Response, error)
}

// ConfigLoader returns a freshly loaded configuration.
type ConfigLoader func() (*config.Configuration, error)

// Generator drives an interview and the document pipeline.
type Generator struct {
	invoker    Invoker
	loadConfig ConfigLoader
	prompter   prompt.Prompter
	console    *ui.Console
	logger     *slog.Logger
	outDir     string
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithConsole sets where interview output goes.
func WithConsole(c *ui.Console) Option {
	return func(g *Generator) {
		if c != nil {
			g.console = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithOutputDir sets the directory documents are written to.
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		if dir != "" {
			g.outDir = dir
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a Generator. loadConfig is called before every AI call.
func New(invoker Invoker, loadConfig ConfigLoader, p prompt.Prompter, opts ...Option) *Generator {
	g := &Generator{
		invoker:    invoker,
		loadConfig: loadConfig,
		prompter:   p,
		console:    ui.NewConsole(nil),
		logger:     slog.Default(),
		outDir:     ".",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RunOptions controls one run.
type RunOptions struct {
	// Questions is the number of interview turns (1..50).
	Questions int
	SkipTRD   bool
	SkipTODO  bool

	// Description skips the description prompt when set.
	Description string
	// Stdin, when set, is read to the end for the description.
	Stdin io.Reader
	// Auto answers every question with its default choice and confirms the
	// review without asking. It is used when input is piped.
	Auto bool
	// Session resumes from a saved interview instead of asking again.
	Session *Session
}

// File is a written output.
type File struct {
	Path        string
	Description string
}

// Result lists what a run produced.
type Result struct {
	Session *Session
	Files   []File
	Todo    *TodoList
}

// Run performs the interview and writes the documents.
func (g *Generator) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Questions < config.MinQuestions || opts.Questions > config.MaxQuestions {
		return nil, fmt.Errorf("number of questions must be between %d and %d (got %d)",
			config.MinQuestions, config.MaxQuestions, opts.Questions)
	}

	var s *Session
	if opts.Session != nil {
		restored, err := g.resume(ctx, opts)
		if err != nil {
			return nil, err
		}
		s = restored
		if s == nil {
			opts.Description = opts.Session.Project.Description
		}
	}

	for s == nil {
		desc, err := g.describe(ctx, opts, opts.Stdin)
		if err != nil {
			return nil, err
		}
		if opts.Stdin != nil {
			opts.Description, opts.Stdin = desc, nil
		}
		candidate, err := g.interview(ctx, desc, opts.Questions, opts.Auto)
		if err != nil {
			return nil, err
		}
		confirmed, err := g.review(ctx, candidate, opts.Questions, opts.Auto)
		if err != nil {
			return nil, err
		}
		if confirmed {
			s = candidate
		}
	}

	return g.produce(ctx, s, opts)
}

func (g *Generator) resume(ctx context.Context, opts RunOptions) (*Session, error) {
	s := opts.Session
	g.console.Styled(headingStyle, "🚀 Restoring the interview from "+SessionFile)
	g.console.Styled(ui.Mint, "📝 Project: "+s.Project.Description)
	g.console.Styled(ui.LightPurple, fmt.Sprintf("📊 Restored answers: %d", len(s.History)))

	confirmed, err := g.review(ctx, s, len(s.History), opts.Auto)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		g.console.Styled(ui.Yellow, "🔄 Restarting the interview...")
		return nil, nil
	}
	return s, nil
}

// produce saves the session and writes every requested document.
func (g *Generator) produce(ctx context.Context, s *Session, opts RunOptions) (*Result, error) {
	res := &Result{Session: s}

	sessionPath := g.path(SessionFile)
	if err := s.Save(sessionPath); err != nil {
		g.console.Warn("Failed to save the Q&A data: " + err.Error())
	} else {
		g.console.Saved("Q&A data saved", sessionPath)
		res.Files = append(res.Files, File{Path: sessionPath, Description: "interview answers"})
	}

	prd, err := g.writePRD(ctx, s)
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, File{Path: g.path(PRDFile), Description: "product requirements document"})
	g.console.Styled(ui.Mint.Bold(true), "\n🎉 The PRD was generated successfully!")
	g.console.Saved("PRD", g.path(PRDFile))

	if opts.SkipTRD {
		g.console.Warn("Skipping TRD generation.")
		g.finish(res, false)
		return res, nil
	}

	trd, err := g.writeTRD(ctx, prd)
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, File{Path: g.path(TRDFile), Description: "technical requirements document"})
	g.console.Saved("TRD", g.path(TRDFile))

	if opts.SkipTODO {
		g.console.Warn("Skipping TODO generation.")
		g.finish(res, false)
		return res, nil
	}

	todo, err := g.writeTODO(ctx, trd)
	if err != nil {
		return res, err
	}
	res.Todo = todo
	res.Files = append(res.Files,
		File{Path: g.path(TODOFile), Description: "development task list"},
		File{Path: g.path(TODOYAMLFile), Description: "task list for tools"},
	)
	g.console.Saved(fmt.Sprintf("TODO list (%d tasks)", todo.TaskCount()), g.path(TODOFile))
	g.finish(res, true)
	return res, nil
}

func (g *Generator) finish(res *Result, complete bool) {
	if complete {
		g.console.Styled(ui.Mint.Bold(true), "\n🎉 All documents were generated!")
	} else {
		g.console.Styled(ui.Mint.Bold(true), "\n🎉 Document generation finished!")
	}
	files := make([][2]string, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, [2]string{filepath.Base(f.Path), f.Description})
	}
	g.console.FileList(files)
	if complete {
		g.console.Styled(ui.Peach, "✨ You are ready to start vibe coding!")
	}
}

// invoke loads the configuration and performs one AI call.
func (g *Generator) invoke(ctx context.Context, req domain.Request) (domain.Response, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return domain.Response{}, err
	}
	return g.invoker.Invoke(ctx, cfg, req)
}

func (g *Generator) path(name string) string {
	return filepath.Join(g.outDir, name)
}
