package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cybersentry/sentry/pkg/model"
)

const appTitle = "CyberSentry"

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)
	innerWidth := m.width - 4

	return outerStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.headerView(innerWidth),
			m.bannerView(innerWidth),
			m.controlsView(innerWidth),
			m.statsView(),
			m.tabsView(),
			m.inputView(),
			m.contentView(),
			m.toastView(innerWidth),
			footerStyle.Width(innerWidth).Render(m.footerContent()),
		),
	)
}

func (m MainModel) headerView(width int) string {
	left := titleStyle.Render(appTitle)
	if n := m.session.Stats().AlertsDetected; n > 0 {
		left = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", badgeStyle.Render(fmt.Sprintf("⚠ %d", n)))
	}
	right := ""
	if m.stream != nil {
		right = connStatus(m.conn)
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// bannerView always takes one line so the layout below stays put.
func (m MainModel) bannerView(width int) string {
	b := m.session.Banner()
	if b.Kind == model.BannerNone {
		return ""
	}
	var style lipgloss.Style
	icon := "✓"
	switch b.Kind {
	case model.BannerError:
		style, icon = errorStyle, "✗"
	case model.BannerWarning:
		style, icon = warningStyle, "!"
	default:
		style = successStyle
	}
	text := fmt.Sprintf("%s %s %s", icon, sanitize(b.Title), sanitize(b.Message))
	return style.Render(fit(text, width-4)) + dimStyle.Render(" [x]")
}

func (m MainModel) controlsView(width int) string {
	state := warningStyle.Render("PAUSED")
	hint := "space: start monitoring"
	if m.session.Monitoring() {
		state = successStyle.Render("ACTIVE")
		hint = "space: stop monitoring"
	}
	line := fmt.Sprintf("Monitoring: %s  %s", state, dimStyle.Render(hint))
	if m.statusMsg != "" {
		line += "  " + errorStyle.Render(m.statusMsg)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func (m MainModel) statsView() string {
	st := m.session.Stats()
	card := func(label string, value int, style lipgloss.Style) string {
		return cardStyle.Render(fmt.Sprintf("%s %s", dimStyle.Render(label), style.Render(fmt.Sprintf("%d", value))))
	}
	alertStyle := successStyle
	if st.AlertsDetected > 0 {
		alertStyle = errorStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Devices Connected", st.DevicesConnected, promptStyle),
		" ",
		card("IP Addresses Scanned", st.IPScanned, promptStyle),
		" ",
		card("Alerts Detected", st.AlertsDetected, alertStyle),
	)
}

func (m MainModel) tabsView() string {
	tabs := make([]string, len(tabLabels))
	for i, label := range tabLabels {
		if tab(i) == m.activeTab {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = inactiveTabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m MainModel) inputView() string {
	switch m.activeTab {
	case tabNetwork:
		return m.input.View()
	case tabPermissions:
		high := 0
		for _, p := range m.session.Permissions() {
			if p.HighRisk() {
				high++
			}
		}
		return fmt.Sprintf("%d apps, %d high risk", len(m.session.Permissions()), high)
	case tabUSB:
		return fmt.Sprintf("%d devices", len(m.session.USBDevices()))
	default:
		title := fmt.Sprintf("%d alerts received", len(m.session.Feed()))
		if !m.feedView.AtTop() && !m.feedView.AtBottom() {
			title += " ↕"
		} else if !m.feedView.AtTop() {
			title += " ↑"
		} else if !m.feedView.AtBottom() {
			title += " ↓"
		}
		return title
	}
}

func (m MainModel) contentView() string {
	switch m.activeTab {
	case tabPermissions:
		if len(m.permTable.Rows()) == 0 {
			return m.emptyView("No app permission data. Start monitoring to scan device permissions.")
		}
		return m.permTable.View()
	case tabUSB:
		if len(m.usbTable.Rows()) == 0 {
			return m.emptyView(`No USB devices detected. Press "s" to scan for USB devices.`)
		}
		return m.usbTable.View()
	case tabFeed:
		return tableHeaderStyle.Width(m.feedView.Width).Render("Live Feed") + "\n" + m.feedView.View()
	default:
		if len(m.session.Rows()) == 0 {
			return m.emptyView("No network activity. Start monitoring to see IP traffic.")
		}
		return m.table.View()
	}
}

func (m MainModel) emptyView(text string) string {
	return lipgloss.NewStyle().
		Height(m.table.Height()).
		Foreground(lipgloss.Color("#767676")). // Dimmed Gray
		Render(text)
}

func (m MainModel) toastView(width int) string {
	if !m.hasToast {
		return ""
	}
	style := promptStyle
	switch m.toast.Severity {
	case model.SeverityDestructive:
		style = errorStyle
	case model.SeverityWarning:
		style = warningStyle
	case model.SeveritySuccess:
		style = successStyle
	}
	title := sanitize(m.toast.Title)
	return style.Render(title) + " " + fit(sanitize(m.toast.Description), width-lipgloss.Width(title)-1)
}

func (m MainModel) footerContent() string {
	var helpText string
	switch m.activeTab {
	case tabNetwork:
		helpText = fmt.Sprintf("Total: %d | /: Search | I/D/T/R: Sort | space: Monitor | r/o: Feed on/off | x: Dismiss | q: Quit", len(m.table.Rows()))
	case tabUSB:
		helpText = "s: Scan | d: Remove | space: Monitor | r/o: Feed on/off | q: Quit"
	default:
		helpText = "Tab/1-4: Switch | Up/Down: Scroll | space: Monitor | r/o: Feed on/off | q: Quit"
	}
	footerContent := helpText
	if m.version != "" {
		gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.version)
		if gap > 0 {
			footerContent = helpText + strings.Repeat(" ", gap) + m.version
		}
	}
	return footerContent
}
