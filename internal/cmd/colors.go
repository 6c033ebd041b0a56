package cmd

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// colorMode is bound to the --color flag on commands that produce styled
// output: auto, always, or never.
var colorMode = "auto"

// Color palette. Muted on purpose: launcher output sits next to a query
// prompt and should not fight it for attention.
const (
	colorAccent = lipgloss.Color("#7C3AED")
	colorMuted  = lipgloss.Color("#6B7280")
	colorResult = lipgloss.Color("#10B981")
	colorWarn   = lipgloss.Color("#F59E0B")
)

var (
	// styleName is for item display names.
	styleName = lipgloss.NewStyle().Bold(true)

	// styleSource is for source tags and other secondary columns.
	styleSource = lipgloss.NewStyle().Foreground(colorMuted)

	// styleExpr is for evaluated arithmetic results.
	styleExpr = lipgloss.NewStyle().Bold(true).Foreground(colorResult)

	// styleFallback marks the raw-query item that matched nothing.
	styleFallback = lipgloss.NewStyle().Foreground(colorWarn)

	// styleHeader is for table headers in history output.
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// styleOK is for healthy status indicators.
	styleOK = lipgloss.NewStyle().Foreground(colorResult)

	// styleDim is for counts and trailing notes.
	styleDim = lipgloss.NewStyle().Faint(true)
)

// applyColorMode resolves colorMode into a lipgloss color profile.
// SetColorProfile modifies the default renderer in place, so the
// package-level styles above pick it up without being rebuilt.
func applyColorMode() {
	switch colorMode {
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		if shouldDisableColors() {
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
		// Detect from the real stdout; a pipe yields Ascii.
		lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).ColorProfile())
	}
}

func shouldDisableColors() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return os.Getenv("TERM") == "dumb"
}
