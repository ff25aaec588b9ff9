// Package ratelimit implements the daily scan quota: a fixed-window counter
// per client identifier. A window opens at the first committed request after
// expiry; every request inside the next 24h shares that counter, and the
// counter resets to zero at expiry rather than decaying continuously. The
// fixed window (not a sliding log) is a deliberate simplicity trade-off and
// allows a burst of up to twice the quota across a window boundary.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultQuota is the number of accepted scans per identifier per window.
	// Analyze and barcode requests share one pool.
	DefaultQuota = 50

	// DefaultWindow is the quota window length.
	DefaultWindow = 24 * time.Hour
)

// Record tracks one client's usage inside the current window.
type Record struct {
	WindowStart time.Time `json:"window_start"`
	Count       int       `json:"count"`
}

// Store persists rate records by client identifier. The in-process
// MemoryStore is adequate for a single-instance deployment only; it has no
// cross-instance consistency. RedisStore is the multi-instance option.
type Store interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Set(ctx context.Context, key string, rec Record) error
	Delete(ctx context.Context, key string) error
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	ResetIn time.Duration // remaining window time when denied, always >= 0
}

// Limiter is the admission gate. Check is read-only; Commit is the only
// mutator and must run exactly once per successfully completed unit of
// work, so failed upstream calls never consume quota.
type Limiter struct {
	store  Store
	quota  int
	window time.Duration
	now    func() time.Time

	// Serializes read-then-write per process so concurrent requests from
	// the same client cannot lose increments. Cross-instance races are a
	// property of the chosen Store.
	mu sync.Mutex
}

// New builds a Limiter over the given store. Non-positive quota or window
// fall back to the defaults.
func New(store Store, quota int, window time.Duration) *Limiter {
	if quota <= 0 {
		quota = DefaultQuota
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		store:  store,
		quota:  quota,
		window: window,
		now:    time.Now,
	}
}

// Quota returns the configured per-window quota.
func (l *Limiter) Quota() int { return l.quota }

// Check reports whether the identifier may perform another unit of work.
// It never mutates the store: an expired record is simply treated as
// absent and left for Commit (or the sweep) to replace.
func (l *Limiter) Check(ctx context.Context, id string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok, err := l.store.Get(ctx, id)
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: get %q: %w", id, err)
	}
	if !ok {
		return Decision{Allowed: true}, nil
	}

	now := l.now()
	if now.Sub(rec.WindowStart) > l.window {
		return Decision{Allowed: true}, nil
	}
	if rec.Count < l.quota {
		return Decision{Allowed: true}, nil
	}

	resetIn := rec.WindowStart.Add(l.window).Sub(now)
	if resetIn < 0 {
		resetIn = 0
	}
	return Decision{Allowed: false, ResetIn: resetIn}, nil
}

// Commit records one completed unit of work. A missing or expired record is
// replaced with a fresh window starting now.
func (l *Limiter) Commit(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok, err := l.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("ratelimit: get %q: %w", id, err)
	}
	if !ok || now.Sub(rec.WindowStart) > l.window {
		rec = Record{WindowStart: now, Count: 1}
	} else {
		rec.Count++
	}
	if err := l.store.Set(ctx, id, rec); err != nil {
		return fmt.Errorf("ratelimit: set %q: %w", id, err)
	}
	return nil
}

// FormatTimeRemaining renders a reset duration for user-facing rate-limit
// messages. Whole hours when at least one hour remains, whole minutes
// otherwise. Zero renders as "0 minute"; the singular at the zero boundary
// is long-standing behavior that client copy depends on.
func FormatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)

	if hours > 0 {
		if hours > 1 {
			return fmt.Sprintf("%d hours", hours)
		}
		return fmt.Sprintf("%d hour", hours)
	}
	if minutes > 1 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	return fmt.Sprintf("%d minute", minutes)
}
