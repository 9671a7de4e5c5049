package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cybersentry/sentry/pkg/model"
)

type tickMsg time.Time

func waitTick() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Screen rows of the fixed layout, counted from the top border.
const (
	rowHeader   = 1
	rowBanner   = 2
	rowControls = 3
	rowTabs     = 7
	rowInput    = 8
	rowTable    = 9
	// border, header, banner, controls, cards, tabs, input, toast, footer
	fixedLines = 2 + 1 + 1 + 1 + 3 + 1 + 1 + 1 + 2
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		if m.session.Tick(now) {
			m.refreshTables()
		}
		if m.hasToast && now.Sub(m.toastAt) >= toastTimeout {
			m.hasToast = false
		}
		m.syncConn()
		return m, waitTick()

	case alertMsg:
		m.session.Ingest(model.NetworkAlert(msg), m.now())
		m.refreshTables()
		return m, nil

	case notifyMsg:
		m.showToast(model.Notification(msg))
		m.syncConn()
		return m, nil

	case connectResultMsg:
		m.statusMsg = connectError(msg.err)
		m.syncConn()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	}
	return m, nil
}

func (m *MainModel) syncConn() {
	if m.stream != nil {
		m.conn = m.stream.State()
	}
}

func (m *MainModel) showToast(n model.Notification) {
	m.toast = n
	m.toastAt = m.now()
	m.hasToast = true
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = "" // clear any transient error on interaction
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.activeTab == tabNetwork && m.input.Focused() {
		if msg.String() == "enter" || msg.String() == "esc" {
			m.input.Blur()
			return m, nil
		}
		var inputCmd tea.Cmd
		m.input, inputCmd = m.input.Update(msg)
		m.filterRows()
		m.table.SetCursor(0)
		return m, inputCmd
	}

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "1", "2", "3", "4":
		m.activeTab = tab(msg.String()[0] - '1')
		return m, nil
	case "tab":
		m.activeTab = (m.activeTab + 1) % tab(len(tabLabels))
		return m, nil
	case "shift+tab":
		m.activeTab = (m.activeTab + tab(len(tabLabels)) - 1) % tab(len(tabLabels))
		return m, nil
	case " ":
		m.showToast(m.session.Toggle())
		m.refreshTables()
		return m, nil
	case "x":
		m.session.ClearBanner()
		return m, nil
	case "r":
		if m.stream == nil {
			m.statusMsg = "no feed configured"
			return m, nil
		}
		return m, m.connectCmd()
	case "o":
		if m.stream == nil {
			return m, nil
		}
		return m, m.disconnectCmd()
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabNetwork:
		if msg.String() == "/" {
			m.input.Focus()
			return m, textinput.Blink
		}
		if col := networkSortKey(msg.String()); col != "" {
			m.toggleSort(col)
			return m, nil
		}
		m.table, cmd = m.table.Update(msg)

	case tabPermissions:
		m.permTable, cmd = m.permTable.Update(msg)

	case tabUSB:
		switch msg.String() {
		case "s":
			_, n, _ := m.session.ScanUSB()
			m.showToast(n)
			m.updateUSBTable()
			return m, nil
		case "d":
			if row := m.usbTable.SelectedRow(); len(row) == 3 {
				m.session.DetachUSB(row[1], row[2])
				m.updateUSBTable()
				if c := m.usbTable.Cursor(); c >= len(m.usbTable.Rows()) && c > 0 {
					m.usbTable.SetCursor(c - 1)
				}
			}
			return m, nil
		}
		m.usbTable, cmd = m.usbTable.Update(msg)

	case tabFeed:
		m.feedView, cmd = m.feedView.Update(msg)
	}
	return m, cmd
}

// networkSortKey maps the sort keys of the Network tab. They are upper
// case so the table keeps its vim-style j/k/d/u/g navigation.
func networkSortKey(k string) string {
	switch k {
	case "I":
		return "ip"
	case "D":
		return "device"
	case "T":
		return "time"
	case "R":
		return "risk"
	}
	return ""
}

// toggleSort flips direction on the current column, or switches column
// starting descending. A third press on the same column restores arrival
// order.
func (m *MainModel) toggleSort(col string) {
	switch {
	case m.sortCol != col:
		m.sortCol = col
		m.sortDesc = true
	case m.sortDesc:
		m.sortDesc = false
	default:
		m.sortCol = ""
		m.sortDesc = false
	}

	cols := m.table.Columns()
	newCols := networkColumns(m.sortCol, m.sortDesc)
	for i := range cols {
		if i < len(newCols) {
			newCols[i].Width = cols[i].Width
		}
	}
	m.table.SetColumns(newCols)
	m.filterRows()
}

func (m *MainModel) resize(width, height int) {
	m.width = width
	m.height = height

	availableWidth := width - 6
	if availableWidth < 0 {
		availableWidth = 0
	}
	tableHeight := height - fixedLines
	if tableHeight < 5 {
		tableHeight = 5
	}

	// widen the last column of each table to fill the pane
	stretch := func(cols []table.Column, fixed int) {
		last := availableWidth - fixed - 2*len(cols)
		if last < 10 {
			last = 10
		}
		cols[len(cols)-1].Width = last
	}

	netCols := m.table.Columns()
	stretch(netCols, 16+16+19+6)
	m.table.SetColumns(netCols)
	m.table.SetWidth(availableWidth)
	m.table.SetHeight(tableHeight)

	permCols := m.permTable.Columns()
	stretch(permCols, 18+22+26+30)
	m.permTable.SetColumns(permCols)
	m.permTable.SetWidth(availableWidth)
	m.permTable.SetHeight(tableHeight)

	usbCols := m.usbTable.Columns()
	stretch(usbCols, 24+10)
	m.usbTable.SetColumns(usbCols)
	m.usbTable.SetWidth(availableWidth)
	m.usbTable.SetHeight(tableHeight)

	m.feedView.Width = availableWidth
	m.feedView.Height = tableHeight
	m.updateFeed()
}
