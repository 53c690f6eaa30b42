package main

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/ssh"
	"golang.org/x/time/rate"
)

// New game sessions allowed per remote host.
const (
	connRate  = rate.Limit(0.5) // One every two seconds once the burst is spent
	connBurst = 3
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// connLimiter throttles how fast a single host can open sessions.
type connLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	r        rate.Limit
	burst    int
}

func newConnLimiter(r rate.Limit, burst int) *connLimiter {
	return &connLimiter{
		limiters: make(map[string]*limiterEntry),
		r:        r,
		burst:    burst,
	}
}

// allow reports whether host may open another session at now.
func (l *connLimiter) allow(host string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[host]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.r, l.burst)}
		l.limiters[host] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// prune drops hosts not seen since before cutoff.
func (l *connLimiter) prune(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for host, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, host)
		}
	}
}

// sweep prunes idle hosts every interval until ctx is done.
func (l *connLimiter) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.prune(now.Add(-interval))
		}
	}
}

func (l *connLimiter) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		host := remoteHost(sess.RemoteAddr())
		if !l.allow(host, time.Now()) {
			logger.Warn("connection rate limited", "host", host, "user", sess.User())
			fmt.Fprintln(sess, "Too many connections. Try again in a few seconds.")
			return
		}
		next(sess)
	}
}

func remoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
