package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"

	"github.com/cybersentry/sentry/internal/stream"
	"github.com/cybersentry/sentry/pkg/model"
)

type connectResultMsg struct{ err error }

func (m MainModel) connectCmd() tea.Cmd {
	s, addr := m.stream, m.address
	return func() tea.Msg {
		return connectResultMsg{err: s.Connect(context.Background(), addr)}
	}
}

func (m MainModel) disconnectCmd() tea.Cmd {
	s := m.stream
	return func() tea.Msg {
		s.Disconnect()
		return nil
	}
}

// connectError renders a Connect failure for the status line. Superseded
// dials are expected and not shown.
func connectError(err error) string {
	if err == nil || errors.Is(err, stream.ErrSuperseded) {
		return ""
	}
	return fmt.Sprintf("connect failed: %v", err)
}

func networkColumns(sortCol string, desc bool) []table.Column {
	cols := []table.Column{
		{Title: "IP Address", Width: 16},
		{Title: "Device", Width: 16},
		{Title: "Timestamp", Width: 19},
		{Title: "Risk", Width: 6},
		{Title: "Status", Width: 9},
	}

	addArrow := func(idx int, key string) {
		if sortCol == key {
			if desc {
				cols[idx].Title += " ↓"
			} else {
				cols[idx].Title += " ↑"
			}
		}
	}

	addArrow(0, "ip")
	addArrow(1, "device")
	addArrow(2, "time")
	addArrow(3, "risk")

	return cols
}

func permissionColumns() []table.Column {
	return []table.Column{
		{Title: "App", Width: 18},
		{Title: "Package", Width: 22},
		{Title: "Permissions", Width: 26},
		{Title: "Harmful", Width: 30},
		{Title: "Risk", Width: 9},
	}
}

func usbColumns() []table.Column {
	return []table.Column{
		{Title: "Device", Width: 24},
		{Title: "Vendor ID", Width: 10},
		{Title: "Product ID", Width: 10},
	}
}

// sortedRows returns the session rows in display order. An empty sort
// column keeps arrival order, newest first.
func (m *MainModel) sortedRows() []model.IPEntry {
	rows := append([]model.IPEntry(nil), m.session.Rows()...)
	if m.sortCol == "" {
		return rows
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if m.sortDesc {
			a, b = b, a
		}
		switch m.sortCol {
		case "ip":
			return strings.ToLower(a.IP) < strings.ToLower(b.IP)
		case "device":
			return strings.ToLower(a.Device) < strings.ToLower(b.Device)
		case "time":
			return a.Timestamp < b.Timestamp
		case "risk":
			return a.RiskLevel < b.RiskLevel
		}
		return false
	})
	return rows
}

func matchesFilter(e model.IPEntry, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.IP), filter) ||
		strings.Contains(strings.ToLower(e.Device), filter) ||
		strings.Contains(string(e.Status), filter) ||
		strings.Contains(fmt.Sprintf("%d", e.RiskLevel), filter)
}

func (m *MainModel) filterRows() {
	filter := strings.ToLower(strings.TrimSpace(m.input.Value()))
	var rows []table.Row
	for _, e := range m.sortedRows() {
		if !matchesFilter(e, filter) {
			continue
		}
		rows = append(rows, table.Row{
			sanitize(e.IP),
			sanitize(e.Device),
			sanitize(e.Timestamp),
			fmt.Sprintf("%d/10", e.RiskLevel),
			string(e.Status),
		})
	}
	m.table.SetRows(rows)
}

func (m *MainModel) updatePermTable() {
	var rows []table.Row
	for _, p := range m.session.Permissions() {
		risk := "Safe"
		if p.HighRisk() {
			risk = "High Risk"
		}
		rows = append(rows, table.Row{
			p.App,
			p.PackageName,
			strings.Join(p.Permissions, ", "),
			strings.Join(p.HarmfulPermissions, ", "),
			risk,
		})
	}
	m.permTable.SetRows(rows)
}

func (m *MainModel) updateUSBTable() {
	var rows []table.Row
	for _, d := range m.session.USBDevices() {
		rows = append(rows, table.Row{d.DisplayName(), d.VendorID, d.ProductID})
	}
	m.usbTable.SetRows(rows)
}

// updateFeed renders the live feed history, newest first, wrapped to the
// viewport width.
func (m *MainModel) updateFeed() {
	width := m.feedView.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for _, a := range m.session.Feed() {
		line := fmt.Sprintf("%s  %s → %s  risk %d/10  %s",
			sanitize(a.Timestamp), sanitize(a.SrcIP), sanitize(a.DstIP), a.RiskLevel, sanitize(a.Reason))
		switch a.Status() {
		case model.StatusDanger:
			line = errorStyle.Render(line)
		case model.StatusWarning:
			line = warningStyle.Render(line)
		}
		if a.IsGreeting() {
			line = dimStyle.Render(line)
		}
		b.WriteString(wrap.String(line, width))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		b.WriteString(dimStyle.Render("No alerts received yet. Press r to connect to the feed."))
	}
	m.feedView.SetContent(b.String())
}

func (m *MainModel) refreshTables() {
	m.filterRows()
	m.updatePermTable()
	m.updateUSBTable()
	m.updateFeed()
}

// fit shortens s to width cells, marking the cut with an ellipsis.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

func connStatus(st stream.State) string {
	switch {
	case st.Connected:
		return successStyle.Render("● Feed connected")
	case st.Exhausted:
		return errorStyle.Render("● Feed unreachable (press r to retry)")
	case st.ReconnectPending:
		return warningStyle.Render(fmt.Sprintf("● Reconnecting %d/%d", st.Attempts, st.MaxAttempts))
	default:
		return dimStyle.Render("● Feed offline")
	}
}
