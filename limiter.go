package site

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RenderLimiter rate-limits image renders per client IP with a token
// bucket per visitor. Idle visitors are dropped by a janitor goroutine.
type RenderLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRenderLimiter allows perSecond renders per IP with the given burst.
// perSecond < 0 disables limiting. Visitors idle for longer than idle are
// forgotten. Call Stop to end the janitor.
func NewRenderLimiter(perSecond float64, burst int, idle time.Duration) *RenderLimiter {
	limit := rate.Limit(perSecond)
	if perSecond < 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	l := &RenderLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		idle:     idle,
		stop:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *RenderLimiter) cleanup() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

// sweep drops visitors not seen since now-idle.
func (l *RenderLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idle)
	l.mu.Lock()
	for ip, v := range l.visitors {
		if v.seen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
	l.mu.Unlock()
}

// Allow reports whether ip may start a render now and consumes a token.
func (l *RenderLimiter) Allow(ip string) bool {
	if l.limit == rate.Inf {
		return true
	}
	now := time.Now()
	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.seen = now
	l.mu.Unlock()
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked visitors.
func (l *RenderLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Stop ends the janitor goroutine. It is safe to call more than once.
func (l *RenderLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
