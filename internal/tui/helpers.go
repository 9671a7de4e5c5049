package tui

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/cybersentry/sentry/internal/output"
)

func stripAnsi(str string) string {
	return ansi.Strip(str)
}

// sanitize makes feed-supplied text safe to draw.
func sanitize(s string) string {
	return output.Sanitize(s)
}
