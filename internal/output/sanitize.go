package output

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/cybersentry/sentry/pkg/model"
)

// Sanitize makes feed-supplied text safe to print on a terminal: escape
// sequences are removed and control characters become spaces.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return ' '
		}
		return r
	}, ansi.Strip(s))
}

// SanitizeAlert applies Sanitize to every text field of a.
func SanitizeAlert(a model.NetworkAlert) model.NetworkAlert {
	a.SrcIP = Sanitize(a.SrcIP)
	a.DstIP = Sanitize(a.DstIP)
	a.Timestamp = Sanitize(a.Timestamp)
	a.Reason = Sanitize(a.Reason)
	return a
}
