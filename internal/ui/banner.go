package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Version is the firstvibe release shown in the banner and by `version`.
var Version = "1.0.0"

var bannerLines = []string{
	"███████╗██╗██████╗ ███████╗████████╗██╗   ██╗██╗██████╗ ███████╗",
	"██╔════╝██║██╔══██╗██╔════╝╚══██╔══╝██║   ██║██║██╔══██╗██╔════╝",
	"█████╗  ██║██████╔╝███████╗   ██║   ██║   ██║██║██████╔╝█████╗  ",
	"██╔══╝  ██║██╔══██╗╚════██║   ██║   ╚██╗ ██╔╝██║██╔══██╗██╔══╝  ",
	"██║     ██║██║  ██║███████║   ██║    ╚████╔╝ ██║██████╔╝███████╗",
	"╚═╝     ╚═╝╚═╝  ╚═╝╚══════╝   ╚═╝     ╚═══╝  ╚═╝╚═════╝ ╚══════╝",
}

// gradient colors the banner top to bottom.
var gradient = []lipgloss.Style{Pink, LightPink, LightPurple, Lavender, Blue, LightMint}

// PrintBanner displays the ASCII art startup banner.
func PrintBanner(w io.Writer) {
	for i, line := range bannerLines {
		fmt.Fprintln(w, gradient[i%len(gradient)].Bold(true).Render(line))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, Lavender.Bold(true).Render("🚀 firstvibe - Vibe Document Generator"))
	fmt.Fprintln(w, LightPurple.Render("Turn an idea into a PRD, a TRD and a TODO list"))
	fmt.Fprintln(w)
}

// Banner returns the plain banner text, used as the CLI long description.
func Banner() string {
	out := ""
	for _, line := range bannerLines {
		out += line + "\n"
	}
	return out
}
