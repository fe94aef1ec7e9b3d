package grpc

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweepSize = 4096
	limiterIdle      = 10 * time.Minute
)

type peerEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// peerLimiter keeps one token bucket per remote host.
type peerLimiter struct {
	mu    sync.Mutex
	peers map[string]*peerEntry
	limit rate.Limit
	burst int
	now   func() time.Time
}

func newPeerLimiter(perSecond float64, burst int) *peerLimiter {
	if burst < 1 {
		burst = 1
	}
	return &peerLimiter{
		peers: make(map[string]*peerEntry),
		limit: rate.Limit(perSecond),
		burst: burst,
		now:   time.Now,
	}
}

func (l *peerLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.peers[key]
	if !ok {
		if len(l.peers) >= limiterSweepSize {
			l.sweep(now)
		}
		e = &peerEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.peers[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *peerLimiter) sweep(now time.Time) {
	for k, e := range l.peers {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(l.peers, k)
		}
	}
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
