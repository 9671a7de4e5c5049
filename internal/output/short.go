package output

import (
	"fmt"
	"io"

	"github.com/cybersentry/sentry/pkg/model"
)

var (
	colorResetShort   = "\033[0m"
	colorMagentaShort = "\033[35m"
	colorBoldShort    = "\033[2m"
	colorGreenShort   = "\033[32m"
	colorYellowShort  = "\033[33m"
	colorRedShort     = "\033[31m"
)

func statusColor(s model.RiskStatus) string {
	switch s {
	case model.StatusDanger:
		return colorRedShort
	case model.StatusWarning:
		return colorYellowShort
	default:
		return colorGreenShort
	}
}

// RenderShort writes one line per alert:
//
//	timestamp src → dst  risk n/10 [status]  reason
func RenderShort(w io.Writer, a model.NetworkAlert, colorEnabled bool) {
	a = SanitizeAlert(a)
	status := a.Status()
	if !colorEnabled {
		fmt.Fprintf(w, "%s %s → %s  risk %d/10 [%s]  %s\n", a.Timestamp, a.SrcIP, a.DstIP, a.RiskLevel, status, a.Reason)
		return
	}
	sc := statusColor(status)
	fmt.Fprintf(w, "%s%s%s %s%s%s → %s  %srisk %d/10 [%s]%s  %s\n",
		colorBoldShort, a.Timestamp, colorResetShort,
		a.SrcIP, colorMagentaShort, colorResetShort, a.DstIP,
		sc, a.RiskLevel, status, colorResetShort,
		a.Reason)
}

// RenderNotification writes a notification as "title: description".
func RenderNotification(w io.Writer, n model.Notification, colorEnabled bool) {
	n.Title, n.Description = Sanitize(n.Title), Sanitize(n.Description)
	if !colorEnabled {
		fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
		return
	}
	c := colorGreenShort
	switch n.Severity {
	case model.SeverityDestructive:
		c = colorRedShort
	case model.SeverityWarning:
		c = colorYellowShort
	case model.SeverityInfo:
		c = colorMagentaShort
	}
	fmt.Fprintf(w, "%s%s%s: %s\n", c, n.Title, colorResetShort, n.Description)
}
