package feed

import (
	"context"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/cybersentry/sentry/pkg/model"
)

// blocklistHitRate is the share of synthetic packets aimed at a
// blocklisted peer.
const blocklistHitRate = 0.3

// generate emits one synthetic packet per interval until ctx is done.
func (s *Server) generate(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn("traffic generator disabled", zap.Duration("interval", interval))
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a, ok := s.simulate(s.now())
			if !ok {
				continue
			}
			n, err := s.Broadcast(a)
			if err != nil {
				s.logger.Error("broadcast failed", zap.Error(err))
				continue
			}
			s.logger.Info("alert",
				zap.String("src", a.SrcIP),
				zap.String("dst", a.DstIP),
				zap.Int("risk", a.RiskLevel),
				zap.String("reason", a.Reason),
				zap.Int("clients", n))
		}
	}
}

// simulate synthesises one packet between a host in the watched network
// and a peer, then evaluates it.
func (s *Server) simulate(now time.Time) (model.NetworkAlert, bool) {
	local := randomHost(s.eval.Watched, s.rand.IntN)

	var peer string
	if list := s.eval.Blocklist.List(); len(list) > 0 && s.rand.Float64() < blocklistHitRate {
		peer = list[s.rand.IntN(len(list))]
	} else {
		// TEST-NET-3, never routable
		peer = netip.AddrFrom4([4]byte{203, 0, 113, byte(1 + s.rand.IntN(254))}).String()
	}

	src, dst := local, peer
	if s.rand.IntN(2) == 0 {
		src, dst = peer, local
	}
	return s.eval.Evaluate(src, dst, now)
}

// randomHost picks an address inside an IPv4 prefix, avoiding the network
// and broadcast addresses when the prefix is wide enough.
func randomHost(p netip.Prefix, intn func(int) int) string {
	base := p.Masked().Addr()
	if !base.Is4() || p.Bits() >= 31 {
		return base.String()
	}
	hostBits := 32 - p.Bits()
	if hostBits > 16 {
		hostBits = 16
	}
	span := 1<<hostBits - 2
	off := uint32(1 + intn(span))

	b := base.As4()
	v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	v += off
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}).String()
}
