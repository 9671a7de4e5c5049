package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/cybersentry/sentry/pkg/model"
)

var (
	colorResetTree   = "\033[0m"
	colorMagentaTree = "\033[35m"
	colorRedTree     = "\033[31m"
	colorBoldTree    = "\033[2m"
)

// treeLimit caps the alerts listed under one source.
const treeLimit = 10

// PrintTree groups alerts by source address, in order of first appearance,
// and lists each source's alerts beneath it. Greetings are skipped.
func PrintTree(w io.Writer, alerts []model.NetworkAlert, colorEnabled bool) {
	colorReset := ""
	colorMagenta := ""
	colorRed := ""
	colorBold := ""
	if colorEnabled {
		colorReset = colorResetTree
		colorMagenta = colorMagentaTree
		colorRed = colorRedTree
		colorBold = colorBoldTree
	}

	var order []string
	bySrc := map[string][]model.NetworkAlert{}
	for _, a := range alerts {
		if a.IsGreeting() {
			continue
		}
		a = SanitizeAlert(a)
		if _, ok := bySrc[a.SrcIP]; !ok {
			order = append(order, a.SrcIP)
		}
		bySrc[a.SrcIP] = append(bySrc[a.SrcIP], a)
	}

	for _, src := range order {
		group := bySrc[src]
		maxRisk := 0
		for _, a := range group {
			maxRisk = max(maxRisk, a.RiskLevel)
		}
		srcColor := ""
		if model.StatusForRisk(maxRisk) == model.StatusDanger {
			srcColor = colorRed
		}
		noun := "alerts"
		if len(group) == 1 {
			noun = "alert"
		}
		fmt.Fprintf(w, "%s%s%s (%s%d %s, max risk %d%s)\n", srcColor, src, colorReset, colorBold, len(group), noun, maxRisk, colorReset)

		count := len(group)
		for i, a := range group {
			if i >= treeLimit {
				fmt.Fprintf(w, "  %s└─ %s... and %d more\n", colorMagenta, colorReset, count-treeLimit)
				break
			}
			connector := "├─ "
			if i == count-1 || (i == treeLimit-1 && count <= treeLimit) {
				connector = "└─ "
			}
			fmt.Fprintf(w, "  %s%s%s%s → %s risk %d %s%s%s\n",
				colorMagenta, connector, colorReset,
				a.Timestamp, a.DstIP, a.RiskLevel,
				colorBold, strings.TrimSpace(a.Reason), colorReset)
		}
	}
}
