package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cybersentry/sentry/pkg/model"
)

// DefaultBlocklist is used when no blocklist file exists.
var DefaultBlocklist = []string{"192.168.1.100", "10.0.0.50"}

const (
	blocklistRisk   = 8
	timestampLayout = "2006-01-02 15:04:05"
)

// Blocklist is a set of suspicious addresses.
type Blocklist struct {
	ips map[string]struct{}
}

func NewBlocklist(ips ...string) *Blocklist {
	b := &Blocklist{ips: make(map[string]struct{}, len(ips))}
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			b.ips[ip] = struct{}{}
		}
	}
	return b
}

// LoadBlocklist reads one address per line, skipping blank lines and
// # comments. A missing file yields DefaultBlocklist with fromFile false.
func LoadBlocklist(path string) (b *Blocklist, fromFile bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewBlocklist(DefaultBlocklist...), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open blocklist: %w", err)
	}
	defer f.Close()

	var ips []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ips = append(ips, line)
	}
	if err := sc.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read blocklist %s: %w", path, err)
	}
	return NewBlocklist(ips...), true, nil
}

func (b *Blocklist) Contains(ip string) bool {
	_, ok := b.ips[ip]
	return ok
}

func (b *Blocklist) Len() int { return len(b.ips) }

// List returns the addresses in sorted order.
func (b *Blocklist) List() []string {
	out := make([]string, 0, len(b.ips))
	for ip := range b.ips {
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}

// Evaluator flags traffic between the watched network and a blocklisted
// address.
type Evaluator struct {
	Watched   netip.Prefix
	Blocklist *Blocklist
}

func NewEvaluator(watchedCIDR string, b *Blocklist) (*Evaluator, error) {
	p, err := netip.ParsePrefix(watchedCIDR)
	if err != nil {
		return nil, fmt.Errorf("invalid watched network %q: %w", watchedCIDR, err)
	}
	return &Evaluator{Watched: p.Masked(), Blocklist: b}, nil
}

func (e *Evaluator) watches(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	return err == nil && e.Watched.Contains(addr)
}

// Evaluate returns an alert when one side of the pair is in the watched
// network and either side is blocklisted. The source side wins when both
// are listed.
func (e *Evaluator) Evaluate(src, dst string, now time.Time) (model.NetworkAlert, bool) {
	if !e.watches(src) && !e.watches(dst) {
		return model.NetworkAlert{}, false
	}

	var hit string
	switch {
	case e.Blocklist.Contains(src):
		hit = src
	case e.Blocklist.Contains(dst):
		hit = dst
	default:
		return model.NetworkAlert{}, false
	}

	return model.NetworkAlert{
		SrcIP:     src,
		DstIP:     dst,
		Timestamp: now.Format(timestampLayout),
		RiskLevel: blocklistRisk,
		Reason:    fmt.Sprintf("IP %s found in blocklist", hit),
	}, true
}
