package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// returns the column index at x pixels, or -1 if not found.
func getColumnAtX(x int, cols []table.Column) int {
	currentX := 0
	for i, col := range cols {
		colWidth := col.Width + 2
		if x >= currentX && x < currentX+colWidth {
			return i
		}
		currentX += colWidth
	}
	return -1
}

// tabAtX maps a click on the tab row to a tab, or -1.
func tabAtX(x int, active tab) tab {
	currentX := 0
	for i, label := range tabLabels {
		style := inactiveTabStyle
		if tab(i) == active {
			style = activeTabStyle
		}
		w := lipgloss.Width(style.Render(label))
		if x >= currentX && x < currentX+w {
			return tab(i)
		}
		currentX += w
	}
	return -1
}

func (m *MainModel) handleNetworkHeaderClick(x int) {
	keys := []string{"ip", "device", "time", "risk"}
	if i := getColumnAtX(x, m.table.Columns()); i >= 0 && i < len(keys) {
		m.toggleSort(keys[i])
	}
}

func (m MainModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = "" // clear any transient error on interaction
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	isWheel := msg.Button == tea.MouseButtonWheelUp ||
		msg.Button == tea.MouseButtonWheelDown ||
		msg.Button == tea.MouseButtonWheelLeft ||
		msg.Button == tea.MouseButtonWheelRight
	isClick := !isWheel
	contentX := msg.X - 2

	if isClick {
		switch msg.Y {
		case rowHeader:
			// title click returns home
			if contentX >= 0 && contentX < lipgloss.Width(titleStyle.Render(appTitle)) {
				m.activeTab = tabNetwork
			}
			return m, nil
		case rowBanner:
			m.session.ClearBanner()
			return m, nil
		case rowControls:
			m.showToast(m.session.Toggle())
			m.refreshTables()
			return m, nil
		case rowTabs:
			if t := tabAtX(contentX, m.activeTab); t >= 0 {
				m.activeTab = t
			}
			return m, nil
		case rowInput:
			if m.activeTab == tabNetwork {
				m.input.Focus()
			}
			return m, nil
		}
		if m.input.Focused() {
			m.input.Blur()
		}
		if msg.Y == rowTable && m.activeTab == tabNetwork && contentX >= 0 {
			m.handleNetworkHeaderClick(contentX)
		}
		return m, nil
	}

	if msg.Y < rowTable {
		return m, nil
	}

	// Convert wheel to key so tables scroll by one row
	// without jumping the cursor to the mouse Y position.
	var keyMsg tea.KeyMsg
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		keyMsg = tea.KeyMsg{Type: tea.KeyUp}
	case tea.MouseButtonWheelDown:
		keyMsg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		return m, nil
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabNetwork:
		m.table, cmd = m.table.Update(keyMsg)
	case tabPermissions:
		m.permTable, cmd = m.permTable.Update(keyMsg)
	case tabUSB:
		m.usbTable, cmd = m.usbTable.Update(keyMsg)
	case tabFeed:
		m.feedView, cmd = m.feedView.Update(keyMsg)
	}
	return m, cmd
}
