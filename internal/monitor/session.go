// Package monitor simulates a monitoring session: IP activity, app
// permissions, USB devices, counters and the alert banner. Nothing is
// captured from the host; activity is generated from a random source.
package monitor

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/cybersentry/sentry/internal/output"
	"github.com/cybersentry/sentry/pkg/model"
)

const (
	DefaultTick              = 10 * time.Second
	DefaultBannerTimeout     = 5 * time.Second
	DefaultInitialAlertDelay = 3 * time.Second
	DefaultMaxRows           = 10
	DefaultMaxFeed           = 50

	timestampLayout = "2006-01-02 15:04:05"
)

// Rand is the subset of *rand.Rand the session draws from.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type Options struct {
	Tick              time.Duration
	BannerTimeout     time.Duration
	InitialAlertDelay time.Duration
	MaxRows           int
	MaxFeed           int

	Rand  Rand
	Now   func() time.Time
	NewID func() string
}

func (o *Options) setDefaults() {
	if o.Tick <= 0 {
		o.Tick = DefaultTick
	}
	if o.BannerTimeout <= 0 {
		o.BannerTimeout = DefaultBannerTimeout
	}
	if o.InitialAlertDelay <= 0 {
		o.InitialAlertDelay = DefaultInitialAlertDelay
	}
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	if o.MaxFeed <= 0 {
		o.MaxFeed = DefaultMaxFeed
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
}

// Session is the dashboard state. It is not safe for concurrent use; the
// dashboard drives it from its update loop.
type Session struct {
	opts Options

	monitoring bool
	rows       []model.IPEntry
	perms      []model.AppPermission
	usb        []model.USBDevice
	feed       []model.NetworkAlert
	stats      model.Stats

	banner   model.Banner
	bannerAt time.Time

	lastGen      time.Time
	initialAlert time.Time // zero when nothing is pending
}

func NewSession(opts Options) *Session {
	opts.setDefaults()
	return &Session{opts: opts}
}

var (
	startedNotification = model.Notification{
		Title:       "Monitoring Started",
		Description: "CyberSentry is now actively scanning network traffic and device permissions.",
		Severity:    model.SeverityInfo,
	}
	stoppedNotification = model.Notification{
		Title:       "Monitoring Stopped",
		Description: "CyberSentry monitoring has been paused.",
		Severity:    model.SeverityInfo,
	}
)

// Start loads the seed activity, sets the counters and arms the initial
// alert. Starting an active session only repeats the notification.
func (s *Session) Start() model.Notification {
	if s.monitoring {
		return startedNotification
	}
	now := s.opts.Now()
	s.monitoring = true
	s.rows = append([]model.IPEntry(nil), seedRows...)
	s.perms = append([]model.AppPermission(nil), seedPermissions...)
	s.stats.DevicesConnected = seedDevices
	s.stats.IPScanned = seedScanned
	s.stats.AlertsDetected = seedAlerts
	s.lastGen = now
	s.initialAlert = now.Add(s.opts.InitialAlertDelay)
	return startedNotification
}

// Stop pauses generation. Rows and counters are kept on screen.
func (s *Session) Stop() model.Notification {
	s.monitoring = false
	s.initialAlert = time.Time{}
	return stoppedNotification
}

func (s *Session) Toggle() model.Notification {
	if s.monitoring {
		return s.Stop()
	}
	return s.Start()
}

// Tick advances the session to now. It fires the initial alert when due,
// generates a row once the tick interval has passed and expires the banner.
// It reports whether anything visible changed.
func (s *Session) Tick(now time.Time) bool {
	changed := false

	if !s.initialAlert.IsZero() && !now.Before(s.initialAlert) {
		s.initialAlert = time.Time{}
		s.raise(model.BannerError, "Suspicious Activity Detected!",
			"High risk IP address 45.33.49.201 detected communicating with com.messages app.", now)
		s.stats.AlertsDetected++
		changed = true
	}

	if s.monitoring && now.Sub(s.lastGen) >= s.opts.Tick {
		s.lastGen = now
		s.generate(now)
		changed = true
	}

	if s.ExpireBanner(now) {
		changed = true
	}
	return changed
}

func (s *Session) generate(now time.Time) {
	ip := fmt.Sprintf("192.168.1.%d", s.opts.Rand.IntN(255))
	risk := s.opts.Rand.IntN(10) + 1
	status := model.StatusForRisk(risk)

	s.addRow(model.IPEntry{
		ID:        s.opts.NewID(),
		IP:        ip,
		Device:    "Unknown Device",
		Timestamp: now.Format(timestampLayout),
		RiskLevel: risk,
		Status:    status,
	})
	s.stats.IPScanned++

	switch status {
	case model.StatusDanger:
		s.raise(model.BannerError, "Suspicious Activity Detected!",
			fmt.Sprintf("High risk IP address %s detected with risk level %d.", ip, risk), now)
		s.stats.AlertsDetected++
	case model.StatusWarning:
		s.raise(model.BannerWarning, "Potential Risk Detected",
			fmt.Sprintf("Moderate risk IP address %s detected with risk level %d.", ip, risk), now)
		s.stats.AlertsDetected++
	default:
		if risk == 1 && s.opts.Rand.Float64() > 0.7 {
			s.raise(model.BannerSuccess, "Safe IP Detected",
				fmt.Sprintf("IP address %s verified as safe.", ip), now)
		}
	}
}

// Ingest records an alert from the live feed. The feed's greeting is kept
// in the feed history but does not count as activity. Text fields are
// sanitized on entry. It reports whether the alert raised a banner.
func (s *Session) Ingest(a model.NetworkAlert, now time.Time) bool {
	a = output.SanitizeAlert(a)
	s.feed = append([]model.NetworkAlert{a}, s.feed...)
	if len(s.feed) > s.opts.MaxFeed {
		s.feed = s.feed[:s.opts.MaxFeed]
	}
	if a.IsGreeting() {
		return false
	}

	status := a.Status()
	s.addRow(model.IPEntry{
		ID:        s.opts.NewID(),
		IP:        a.SrcIP,
		Device:    "Live Feed",
		Timestamp: a.Timestamp,
		RiskLevel: a.RiskLevel,
		Status:    status,
	})
	s.stats.IPScanned++

	switch status {
	case model.StatusDanger:
		s.raise(model.BannerError, "Suspicious Activity Detected!",
			fmt.Sprintf("High risk traffic %s → %s: %s (risk %d).", a.SrcIP, a.DstIP, a.Reason, a.RiskLevel), now)
	case model.StatusWarning:
		s.raise(model.BannerWarning, "Potential Risk Detected",
			fmt.Sprintf("Moderate risk traffic %s → %s: %s (risk %d).", a.SrcIP, a.DstIP, a.Reason, a.RiskLevel), now)
	default:
		return false
	}
	s.stats.AlertsDetected++
	return true
}

func (s *Session) addRow(e model.IPEntry) {
	s.rows = append([]model.IPEntry{e}, s.rows...)
	if len(s.rows) > s.opts.MaxRows {
		s.rows = s.rows[:s.opts.MaxRows]
	}
}

func (s *Session) raise(kind model.BannerKind, title, msg string, now time.Time) {
	s.banner = model.Banner{Kind: kind, Title: title, Message: msg}
	s.bannerAt = now
}

// ExpireBanner clears the banner once it has been up for the banner
// timeout. It reports whether a banner was cleared.
func (s *Session) ExpireBanner(now time.Time) bool {
	if s.banner.Kind == model.BannerNone || now.Sub(s.bannerAt) < s.opts.BannerTimeout {
		return false
	}
	s.ClearBanner()
	return true
}

func (s *Session) ClearBanner() {
	s.banner = model.Banner{}
	s.bannerAt = time.Time{}
}

func (s *Session) Monitoring() bool { return s.monitoring }
func (s *Session) Banner() model.Banner { return s.banner }
func (s *Session) Stats() model.Stats { return s.stats }
func (s *Session) Rows() []model.IPEntry { return s.rows }
func (s *Session) Permissions() []model.AppPermission { return s.perms }
func (s *Session) USBDevices() []model.USBDevice { return s.usb }
func (s *Session) Feed() []model.NetworkAlert { return s.feed }
