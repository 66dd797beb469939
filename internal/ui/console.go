// Package ui renders firstvibe's pastel console output: status badges,
// the banner, the interview summary and the progress spinner.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR DEFINITIONS - Pastel Theme
// ══════════════════════════════════════════════════════════════════════════════

var (
	Pink        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB3BA"))
	Mint        = lipgloss.NewStyle().Foreground(lipgloss.Color("#BAFFC9"))
	Yellow      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFBA"))
	Lavender    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C8BFE7"))
	Blue        = lipgloss.NewStyle().Foreground(lipgloss.Color("#B3E5FC"))
	Orange      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCBA4"))
	Peach       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD7AF"))
	LightMint   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AFFFD7"))
	LightPurple = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7AFFF"))
	LightPink   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAFD7"))
)

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	mutedText   = color.New(color.FgHiBlack)
)

// Console writes styled lines to an output stream.
type Console struct {
	out io.Writer
}

// NewConsole creates a Console on w. A nil w means stdout.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{out: w}
}

// Writer returns the underlying stream.
func (c *Console) Writer() io.Writer {
	return c.out
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS BADGES
// ══════════════════════════════════════════════════════════════════════════════

// Success prints a green badge line.
// Format: [ OK ] message
func (c *Console) Success(msg string) {
	successBadge.Fprint(c.out, " OK ")
	fmt.Fprint(c.out, " ")
	successText.Fprintln(c.out, msg)
}

// Warn prints a yellow warning line.
func (c *Console) Warn(msg string) {
	warningBadge.Fprint(c.out, "[WARN]")
	fmt.Fprint(c.out, " ")
	warningText.Fprintln(c.out, msg)
}

// Error prints a red error line.
func (c *Console) Error(msg string) {
	errorBadge.Fprint(c.out, " ERROR ")
	fmt.Fprint(c.out, " ")
	errorText.Fprintln(c.out, msg)
}

// Info prints a cyan info line.
func (c *Console) Info(msg string) {
	infoBadge.Fprint(c.out, "[FIRSTVIBE]")
	fmt.Fprint(c.out, " ")
	fmt.Fprintln(c.out, msg)
}

// Muted prints a dim line, used for verbose details.
func (c *Console) Muted(msg string) {
	mutedText.Fprintln(c.out, msg)
}

// Styled prints msg rendered with style.
func (c *Console) Styled(style lipgloss.Style, msg string) {
	fmt.Fprintln(c.out, style.Render(msg))
}

// Saved reports a written file.
// Format: ✅ label path
func (c *Console) Saved(label, path string) {
	fmt.Fprintln(c.out, Mint.Render("✅ "+label+": ")+Blue.Render(path))
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERVIEW OUTPUT
// ══════════════════════════════════════════════════════════════════════════════

// QA is one answered question for the summary.
type QA struct {
	Question string
	Answer   string
}

// Summary prints the project description and every answered question.
func (c *Console) Summary(description string, qas []QA) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, Lavender.Bold(true).Render("📋 Questions and answers"))
	fmt.Fprintln(c.out, strings.Repeat("═", 60))

	if description != "" {
		fmt.Fprintln(c.out, Orange.Bold(true).Render("\n🎯 Project description:"))
		fmt.Fprintln(c.out, Yellow.Render(description))
	}
	for i, qa := range qas {
		fmt.Fprintln(c.out, Blue.Bold(true).Render(fmt.Sprintf("[%d] %s", i+1, qa.Question)))
		fmt.Fprintln(c.out, Mint.Render(" ⎿ "+qa.Answer))
	}

	fmt.Fprintln(c.out, strings.Repeat("═", 60))
}

// FileList prints the generated files with their descriptions.
func (c *Console) FileList(files [][2]string) {
	fmt.Fprintln(c.out, LightPurple.Render("Generated files:"))
	for _, f := range files {
		fmt.Fprintln(c.out, Blue.Render("  • "+f[0])+LightPurple.Render(" - "+f[1]))
	}
}

// Goodbye prints the line shown when the operator quits.
func (c *Console) Goodbye() {
	fmt.Fprintln(c.out, Peach.Render("\n👋 vibe quitting"))
}

// ══════════════════════════════════════════════════════════════════════════════
// UTILITY FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

// Truncate shortens s to max runes, adding "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
