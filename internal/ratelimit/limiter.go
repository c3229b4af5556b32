package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrWaitExceeded is returned when the next token is further away than the wait ceiling.
var ErrWaitExceeded = eris.New("rate limiter wait exceeds ceiling")

type bucket struct {
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

// Options configures a Limiter.
type Options struct {
	// Burst is the bucket capacity.
	Burst int
	// PerSecond is the refill rate. Zero or less disables limiting.
	PerSecond float64
	// TTL drops buckets idle for longer than this.
	TTL time.Duration
	// MaxWait caps how long Wait may block. Zero means no ceiling.
	MaxWait time.Duration
}

// Limiter is a token bucket keyed by caller identifier.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	maxTokens  float64
	refillRate float64
	ttl        time.Duration
	maxWait    time.Duration
	lastPrune  time.Time
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// New constructs a limiter with the provided settings.
func New(opts Options) *Limiter {
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		buckets:    make(map[string]*bucket),
		maxTokens:  float64(burst),
		refillRate: opts.PerSecond,
		ttl:        opts.TTL,
		maxWait:    opts.MaxWait,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Every returns a limiter that admits one call per interval per key.
// A zero interval admits every call immediately.
func Every(interval, maxWait time.Duration) *Limiter {
	perSecond := 0.0
	if interval > 0 {
		perSecond = 1 / interval.Seconds()
	}
	return New(Options{Burst: 1, PerSecond: perSecond, MaxWait: maxWait})
}

// Allow consumes a token for the provided key if one is available.
func (l *Limiter) Allow(key string) bool {
	return l.reserve(key) == 0
}

// Wait blocks until a token for key is available, ctx is done, or the wait
// would exceed the configured ceiling.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	for {
		delay := l.reserve(key)
		if delay == 0 {
			return nil
		}
		if l.maxWait > 0 && delay > l.maxWait {
			return eris.Wrapf(ErrWaitExceeded, "next slot for %q in %s", key, delay)
		}
		if err := l.sleep(ctx, delay); err != nil {
			return eris.Wrap(err, "waiting for rate limiter")
		}
	}
}

// reserve takes a token and returns zero, or returns how long until one is available.
func (l *Limiter) reserve(key string) time.Duration {
	if l.refillRate <= 0 {
		return 0
	}
	if key == "" {
		key = "unknown"
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneStale(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.maxTokens, last: now}
		l.buckets[key] = b
	}
	b.lastSeen = now

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.refillRate
		if b.tokens > l.maxTokens {
			b.tokens = l.maxTokens
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return 0
	}

	missing := 1 - b.tokens
	delay := time.Duration(missing / l.refillRate * float64(time.Second))
	if delay <= 0 {
		delay = time.Nanosecond
	}
	return delay
}

func (l *Limiter) pruneStale(now time.Time) {
	if l.ttl <= 0 || now.Sub(l.lastPrune) < l.ttl {
		return
	}
	l.lastPrune = now

	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.buckets, key)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
