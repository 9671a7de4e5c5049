package monitor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cybersentry/sentry/pkg/model"
)

// scriptedRand replays fixed draws.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestSession(r *scriptedRand) *Session {
	n := 0
	return NewSession(Options{
		Rand: r,
		Now:  func() time.Time { return t0 },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
}

func TestStartLoadsSeedData(t *testing.T) {
	s := newTestSession(&scriptedRand{})
	if s.Monitoring() || len(s.Rows()) != 0 || s.Stats() != (model.Stats{}) {
		t.Fatal("new session should be idle and empty")
	}

	n := s.Start()
	if n.Title != "Monitoring Started" {
		t.Errorf("Start() title = %q", n.Title)
	}
	if !s.Monitoring() {
		t.Error("expected monitoring")
	}
	want := model.Stats{DevicesConnected: 4, IPScanned: 5, AlertsDetected: 2}
	if s.Stats() != want {
		t.Errorf("stats = %+v, want %+v", s.Stats(), want)
	}
	if len(s.Rows()) != 5 || s.Rows()[2].IP != "45.33.49.201" {
		t.Errorf("rows = %+v", s.Rows())
	}
	if len(s.Permissions()) != 4 {
		t.Errorf("permissions = %d, want 4", len(s.Permissions()))
	}

	high := 0
	for _, p := range s.Permissions() {
		if p.HighRisk() {
			high++
		}
	}
	if high != 2 {
		t.Errorf("high risk apps = %d, want 2", high)
	}
}

func TestInitialAlertAndAutoClose(t *testing.T) {
	s := newTestSession(&scriptedRand{})
	s.Start()

	if s.Tick(t0.Add(2900 * time.Millisecond)) {
		t.Error("nothing should change before the initial alert is due")
	}
	if !s.Tick(t0.Add(3 * time.Second)) {
		t.Fatal("initial alert should fire at 3s")
	}
	b := s.Banner()
	if b.Kind != model.BannerError || b.Title != "Suspicious Activity Detected!" || !strings.Contains(b.Message, "com.messages") {
		t.Errorf("banner = %+v", b)
	}
	if s.Stats().AlertsDetected != 3 {
		t.Errorf("alerts = %d, want 3", s.Stats().AlertsDetected)
	}

	s.Tick(t0.Add(7 * time.Second))
	if s.Banner().Kind == model.BannerNone {
		t.Error("banner closed early")
	}
	s.Tick(t0.Add(8 * time.Second))
	if s.Banner().Kind != model.BannerNone {
		t.Error("banner should auto-close after 5s")
	}

	// fires once only
	s.Tick(t0.Add(9 * time.Second))
	if s.Stats().AlertsDetected != 3 {
		t.Errorf("alerts = %d after re-tick, want 3", s.Stats().AlertsDetected)
	}
}

func TestTickGeneratesActivity(t *testing.T) {
	tests := []struct {
		name       string
		risk       int
		float      float64
		wantBanner model.BannerKind
		wantTitle  string
		wantAlerts int
	}{
		{"danger", 9, 0, model.BannerError, "Suspicious Activity Detected!", 1},
		{"danger boundary", 7, 0, model.BannerError, "Suspicious Activity Detected!", 1},
		{"warning", 5, 0, model.BannerWarning, "Potential Risk Detected", 1},
		{"warning boundary", 4, 0, model.BannerWarning, "Potential Risk Detected", 1},
		{"safe", 3, 0.9, model.BannerNone, "", 0},
		{"risk one lucky", 1, 0.8, model.BannerSuccess, "Safe IP Detected", 0},
		{"risk one quiet", 1, 0.7, model.BannerNone, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &scriptedRand{ints: []int{42, tt.risk - 1}, floats: []float64{tt.float}}
			s := NewSession(Options{Rand: r, Now: func() time.Time { return t0 }, InitialAlertDelay: time.Hour})
			s.Start()
			before := s.Stats()

			if s.Tick(t0.Add(9 * time.Second)) {
				t.Fatal("no row before the tick interval")
			}
			if !s.Tick(t0.Add(10 * time.Second)) {
				t.Fatal("expected a generated row")
			}

			row := s.Rows()[0]
			if row.IP != "192.168.1.42" || row.RiskLevel != tt.risk || row.Device != "Unknown Device" {
				t.Errorf("row = %+v", row)
			}
			if row.Timestamp != "2024-05-01 10:00:10" {
				t.Errorf("timestamp = %q", row.Timestamp)
			}
			if row.Status != model.StatusForRisk(tt.risk) {
				t.Errorf("status = %q", row.Status)
			}
			if row.ID == "" {
				t.Error("row id should be set")
			}
			if got := s.Stats().IPScanned - before.IPScanned; got != 1 {
				t.Errorf("scanned delta = %d, want 1", got)
			}
			if got := s.Stats().AlertsDetected - before.AlertsDetected; got != tt.wantAlerts {
				t.Errorf("alerts delta = %d, want %d", got, tt.wantAlerts)
			}
			if b := s.Banner(); b.Kind != tt.wantBanner || b.Title != tt.wantTitle {
				t.Errorf("banner = %+v, want %q %q", b, tt.wantBanner, tt.wantTitle)
			}
		})
	}
}

func TestRowsKeepLatestTen(t *testing.T) {
	s := newTestSession(&scriptedRand{})
	s.Start()

	now := t0
	for i := 0; i < 15; i++ {
		now = now.Add(10 * time.Second)
		s.Tick(now)
	}
	rows := s.Rows()
	if len(rows) != DefaultMaxRows {
		t.Fatalf("rows = %d, want %d", len(rows), DefaultMaxRows)
	}
	if rows[0].ID != "id-15" || rows[9].ID != "id-6" {
		t.Errorf("rows should be newest first, got %s..%s", rows[0].ID, rows[9].ID)
	}
	if s.Stats().IPScanned != 5+15 {
		t.Errorf("scanned = %d, want 20", s.Stats().IPScanned)
	}
}

func TestStopHaltsGeneration(t *testing.T) {
	s := newTestSession(&scriptedRand{})
	s.Start()
	if n := s.Toggle(); n.Title != "Monitoring Stopped" {
		t.Errorf("Toggle() title = %q", n.Title)
	}

	s.Tick(t0.Add(time.Minute))
	if len(s.Rows()) != 5 {
		t.Errorf("rows = %d, want seed rows only", len(s.Rows()))
	}
	if s.Banner().Kind != model.BannerNone {
		t.Error("stop should cancel the pending initial alert")
	}
	if n := s.Toggle(); n.Title != "Monitoring Started" || !s.Monitoring() {
		t.Errorf("second toggle = %q", n.Title)
	}
}

func TestIngest(t *testing.T) {
	s := newTestSession(&scriptedRand{})
	now := t0

	greeting := model.NetworkAlert{SrcIP: "0.0.0.0", DstIP: "0.0.0.0", Timestamp: "t0", Reason: "Connected to CyberSentry Network Monitor"}
	if s.Ingest(greeting, now) {
		t.Error("greeting should not raise a banner")
	}
	if len(s.Rows()) != 0 || s.Stats().IPScanned != 0 {
		t.Error("greeting should not count as activity")
	}
	if len(s.Feed()) != 1 {
		t.Errorf("feed = %d, want 1", len(s.Feed()))
	}

	scan := model.NetworkAlert{SrcIP: "10.0.0.5", DstIP: "10.0.0.1", Timestamp: "t1", RiskLevel: 8, Reason: "port scan"}
	if !s.Ingest(scan, now) {
		t.Error("danger alert should raise a banner")
	}
	if b := s.Banner(); b.Kind != model.BannerError || !strings.Contains(b.Message, "port scan") {
		t.Errorf("banner = %+v", b)
	}
	row := s.Rows()[0]
	if row.IP != "10.0.0.5" || row.Timestamp != "t1" || row.Status != model.StatusDanger {
		t.Errorf("row = %+v", row)
	}

	quiet := model.NetworkAlert{SrcIP: "10.0.0.6", DstIP: "10.0.0.1", Timestamp: "t2", RiskLevel: 2, Reason: "dns"}
	if s.Ingest(quiet, now) {
		t.Error("safe alert should not raise a banner")
	}
	want := model.Stats{IPScanned: 2, AlertsDetected: 1}
	if s.Stats() != want {
		t.Errorf("stats = %+v, want %+v", s.Stats(), want)
	}
	if s.Feed()[0].Reason != "dns" {
		t.Error("feed should be newest first")
	}
}

func TestIngestStripsTerminalControls(t *testing.T) {
	s := newTestSession(&scriptedRand{})
	s.Ingest(model.NetworkAlert{
		SrcIP:     "10.0.0.5\x1b]0;title\x07",
		DstIP:     "10.0.0.1",
		Timestamp: "t1",
		RiskLevel: 9,
		Reason:    "scan\x1b[2J\nnext",
	}, t0)

	if row := s.Rows()[0]; row.IP != "10.0.0.5" {
		t.Errorf("row IP = %q", row.IP)
	}
	if got := s.Feed()[0].Reason; got != "scan next" {
		t.Errorf("feed reason = %q, want %q", got, "scan next")
	}
	if msg := s.Banner().Message; strings.ContainsAny(msg, "\x1b\x07\n") {
		t.Errorf("banner message = %q", msg)
	}
}

func TestFeedIsCapped(t *testing.T) {
	s := NewSession(Options{MaxFeed: 3})
	for i := 0; i < 5; i++ {
		s.Ingest(model.NetworkAlert{SrcIP: "a", DstIP: "b", Reason: fmt.Sprint(i)}, t0)
	}
	if len(s.Feed()) != 3 || s.Feed()[0].Reason != "4" {
		t.Errorf("feed = %+v", s.Feed())
	}
}

func TestClearBanner(t *testing.T) {
	s := newTestSession(&scriptedRand{})
	s.Ingest(model.NetworkAlert{SrcIP: "a", DstIP: "b", RiskLevel: 9}, t0)
	s.ClearBanner()
	if s.Banner().Kind != model.BannerNone {
		t.Error("banner should be cleared")
	}
	if s.ExpireBanner(t0.Add(time.Hour)) {
		t.Error("nothing left to expire")
	}
}
