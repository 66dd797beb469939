// Package main is the entry point for the firstvibe CLI.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kstost/firstvibe/internal/cli"
	"github.com/kstost/firstvibe/internal/security"
	"github.com/kstost/firstvibe/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// =========================================================================
	// 1. Setup structured logger (JSON on stderr, secrets redacted)
	// =========================================================================
	level := new(slog.LevelVar)
	logger := setupLogger(os.Stderr, level)

	// =========================================================================
	// 2. Cancel on SIGINT/SIGTERM
	// =========================================================================
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// 3. Run the command tree
	// =========================================================================
	env := cli.DefaultEnv(logger, level)
	err := cli.Execute(ctx, env, args)
	return report(env.Out, err)
}

// report prints the outcome of a run and returns the exit code.
func report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	console := ui.NewConsole(w)
	if cli.IsQuit(err) {
		console.Goodbye()
		return 0
	}

	var cliErr *cli.CLIError
	if errors.As(err, &cliErr) {
		console.Error(cliErr.Error())
		if cliErr.Hint != "" {
			console.Muted("  💡 " + cliErr.Hint)
		}
	} else {
		console.Error(err.Error())
	}
	return cli.ExitCode(err)
}

// setupLogger creates a structured JSON logger. FIRSTVIBE_LOG_LEVEL
// overrides the default level of warn.
func setupLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	level.Set(parseLevel(os.Getenv("FIRSTVIBE_LOG_LEVEL")))

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(security.NewRedactedHandler(handler))

	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
