package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cybersentry/sentry/internal/monitor"
	"github.com/cybersentry/sentry/internal/stream"
	"github.com/cybersentry/sentry/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#0b6fb8")). // Cyber blue
			Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#d70000")). // Red
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#38b2ff")). // Light blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38b2ff")). // Light blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1).
			Width(100)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#0b6fb8")). // Cyber blue
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#767676")). // Dimmed Gray
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#38b2ff")). // Light blue
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffdf87")). // Amber
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5fd787")). // Green
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")) // Dimmed Gray
)

type tab int

const (
	tabNetwork tab = iota
	tabPermissions
	tabUSB
	tabFeed
)

var tabLabels = []string{"1. Network", "2. Permissions", "3. USB", "4. Live Feed"}

const (
	clockInterval = time.Second
	toastTimeout  = 4 * time.Second
)

// Streamer is the part of *stream.Client the dashboard drives.
type Streamer interface {
	Connect(ctx context.Context, address string) error
	Disconnect()
	State() stream.State
}

type Options struct {
	Version     string
	Session     *monitor.Session
	Stream      Streamer // optional
	Address     string
	AutoConnect bool
	Bridge      *Bridge
}

type MainModel struct {
	session *monitor.Session
	stream  Streamer
	address string
	conn    stream.State
	auto    bool

	table     table.Model
	permTable table.Model
	usbTable  table.Model
	feedView  viewport.Model
	input     textinput.Model
	activeTab tab

	toast    model.Notification
	toastAt  time.Time
	hasToast bool

	statusMsg string // transient error shown in the status line
	width     int
	height    int
	quitting  bool

	sortCol  string
	sortDesc bool
	version  string

	now func() time.Time
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = tableHeaderStyle.BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#005f87")). // Deep blue
		Bold(false)
	return s
}

func InitialModel(opts Options) MainModel {
	s := tableStyles()

	t := table.New(
		table.WithColumns(networkColumns("", false)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(s)

	pt := table.New(
		table.WithColumns(permissionColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	pt.SetStyles(s)

	ut := table.New(
		table.WithColumns(usbColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ut.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Search IP, Device, Status..."
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Blur()

	vp := viewport.New(0, 0)
	vp.YPosition = 0

	session := opts.Session
	if session == nil {
		session = monitor.NewSession(monitor.Options{})
	}

	m := MainModel{
		session:   session,
		stream:    opts.Stream,
		address:   opts.Address,
		auto:      opts.AutoConnect,
		table:     t,
		permTable: pt,
		usbTable:  ut,
		feedView:  vp,
		input:     ti,
		activeTab: tabNetwork,
		version:   opts.Version,
		now:       time.Now,
	}
	m.refreshTables()
	return m
}

// Start runs the dashboard until the user quits or ctx is cancelled.
func Start(ctx context.Context, opts Options) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	bridge := opts.Bridge
	if bridge == nil {
		bridge = &Bridge{}
	}

	p := tea.NewProgram(InitialModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.attach(p)
	defer bridge.detach()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		waitTick(),
		tea.EnableMouseCellMotion,
	}
	if m.auto && m.stream != nil {
		cmds = append(cmds, m.connectCmd())
	}
	return tea.Batch(cmds...)
}
