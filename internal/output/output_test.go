package output

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/cybersentry/sentry/pkg/model"
)

var scan = model.NetworkAlert{SrcIP: "10.0.0.5", DstIP: "10.0.0.1", Timestamp: "t1", RiskLevel: 8, Reason: "port scan"}

func TestRenderShort(t *testing.T) {
	var buf bytes.Buffer
	RenderShort(&buf, scan, false)
	want := "t1 10.0.0.5 → 10.0.0.1  risk 8/10 [danger]  port scan\n"
	if buf.String() != want {
		t.Errorf("RenderShort() = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	RenderShort(&buf, scan, true)
	if !strings.Contains(buf.String(), colorRedShort+"risk 8/10 [danger]") {
		t.Errorf("colored output missing danger color: %q", buf.String())
	}
}

func TestRenderNotification(t *testing.T) {
	n := model.Notification{Title: "Connection Error", Description: "Failed", Severity: model.SeverityDestructive}

	var buf bytes.Buffer
	RenderNotification(&buf, n, false)
	if buf.String() != "Connection Error: Failed\n" {
		t.Errorf("RenderNotification() = %q", buf.String())
	}

	buf.Reset()
	RenderNotification(&buf, n, true)
	if !strings.HasPrefix(buf.String(), colorRedShort+"Connection Error") {
		t.Errorf("colored notification = %q", buf.String())
	}
}

func TestToJSON(t *testing.T) {
	compact, err := ToJSON(scan, false)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"srcIp":"10.0.0.5","dstIp":"10.0.0.1","timestamp":"t1","riskLevel":8,"reason":"port scan"}`
	if compact != want {
		t.Errorf("ToJSON(compact) = %s, want %s", compact, want)
	}

	indented, err := ToJSON(scan, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(indented, "\n  \"srcIp\": \"10.0.0.5\"") {
		t.Errorf("ToJSON(indent) = %s", indented)
	}
}

func TestPrintTree(t *testing.T) {
	alerts := []model.NetworkAlert{
		{SrcIP: "0.0.0.0", DstIP: "0.0.0.0", Reason: "hello"},
		scan,
		{SrcIP: "192.168.42.7", DstIP: "10.0.0.50", Timestamp: "t2", RiskLevel: 4, Reason: "odd port"},
		{SrcIP: "10.0.0.5", DstIP: "10.0.0.2", Timestamp: "t3", RiskLevel: 2, Reason: "ping"},
	}

	var buf bytes.Buffer
	PrintTree(&buf, alerts, false)
	want := strings.Join([]string{
		"10.0.0.5 (2 alerts, max risk 8)",
		"  ├─ t1 → 10.0.0.1 risk 8 port scan",
		"  └─ t3 → 10.0.0.2 risk 2 ping",
		"192.168.42.7 (1 alert, max risk 4)",
		"  └─ t2 → 10.0.0.50 risk 4 odd port",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("PrintTree() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintTreeTruncates(t *testing.T) {
	var alerts []model.NetworkAlert
	for i := 0; i < 13; i++ {
		alerts = append(alerts, model.NetworkAlert{SrcIP: "10.0.0.5", DstIP: "10.0.0.1", Timestamp: fmt.Sprintf("t%d", i), RiskLevel: 1})
	}

	var buf bytes.Buffer
	PrintTree(&buf, alerts, false)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 1+treeLimit+1 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[treeLimit], "├─ t9") {
		t.Errorf("last listed line = %q", lines[treeLimit])
	}
	if lines[len(lines)-1] != "  └─ ... and 3 more" {
		t.Errorf("overflow line = %q", lines[len(lines)-1])
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "port scan", "port scan"},
		{"sgr color", "\x1b[31mred\x1b[0m", "red"},
		{"osc title", "10.0.0.5\x1b]0;pwned\x07", "10.0.0.5"},
		{"clear screen", "scan\x1b[2J", "scan"},
		{"controls", "a\nb\tc\rd", "a b c d"},
		{"unicode kept", "192.168.1.1 → tablet", "192.168.1.1 → tablet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderersSanitizeFeedText(t *testing.T) {
	hostile := model.NetworkAlert{SrcIP: "10.0.0.5\x1b]0;pwned\x07", DstIP: "10.0.0.1", Timestamp: "t1", RiskLevel: 9, Reason: "scan\x1b[2J"}

	var buf bytes.Buffer
	RenderShort(&buf, hostile, false)
	if want := "t1 10.0.0.5 → 10.0.0.1  risk 9/10 [danger]  scan\n"; buf.String() != want {
		t.Errorf("RenderShort() = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	PrintTree(&buf, []model.NetworkAlert{hostile}, false)
	if strings.Contains(buf.String(), "\x1b") || strings.Contains(buf.String(), "pwned") {
		t.Errorf("PrintTree() = %q", buf.String())
	}

	buf.Reset()
	RenderNotification(&buf, model.Notification{Title: "x\x1b[2J", Description: "y"}, false)
	if buf.String() != "x: y\n" {
		t.Errorf("RenderNotification() = %q", buf.String())
	}
}
