package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter paces requests per remote host so a run never hammers one site.
type HostLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[string]*rate.Limiter
	waits    int
}

// NewHostLimiter allows one request per interval for each host. A zero
// interval disables pacing.
func NewHostLimiter(interval time.Duration) *HostLimiter {
	return &HostLimiter{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to rawURL's host is allowed or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if l == nil || l.interval <= 0 {
		return nil
	}
	return l.limiter(Host(rawURL)).Wait(ctx)
}

func (l *HostLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.interval), 1)
		l.limiters[host] = lim
	}
	l.waits++
	return lim
}

// GetStats returns how many hosts are tracked and how many waits were issued.
func (l *HostLimiter) GetStats() map[string]interface{} {
	if l == nil {
		return map[string]interface{}{"hosts": 0, "requests": 0, "interval": "0s"}
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]interface{}{
		"hosts":    len(l.limiters),
		"requests": l.waits,
		"interval": l.interval.String(),
	}
}

// Host returns the lowercased host of rawURL without a www. prefix.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
