package cmd

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

// saveColorState restores the shared color mode and profile after a test.
func saveColorState(t *testing.T) {
	t.Helper()
	origMode := colorMode
	origProfile := lipgloss.ColorProfile()
	t.Cleanup(func() {
		colorMode = origMode
		lipgloss.SetColorProfile(origProfile)
	})
}

func TestApplyColorMode_Always(t *testing.T) {
	saveColorState(t)

	// Force disabled first; "always" must re-enable.
	lipgloss.SetColorProfile(termenv.Ascii)
	colorMode = "always"
	applyColorMode()

	assert.NotEqual(t, termenv.Ascii, lipgloss.ColorProfile(),
		"always should enable colors even when auto would disable")
}

func TestApplyColorMode_Never(t *testing.T) {
	saveColorState(t)

	lipgloss.SetColorProfile(termenv.ANSI256)
	colorMode = "never"
	applyColorMode()

	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
}

func TestApplyColorMode_AutoRespectsNoColor(t *testing.T) {
	saveColorState(t)
	t.Setenv("NO_COLOR", "1")

	lipgloss.SetColorProfile(termenv.ANSI256)
	colorMode = "auto"
	applyColorMode()

	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
}

func TestApplyColorMode_AutoRespectsDumbTerm(t *testing.T) {
	saveColorState(t)
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")

	lipgloss.SetColorProfile(termenv.ANSI256)
	colorMode = "auto"
	applyColorMode()

	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
}
