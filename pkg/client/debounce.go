package client

import (
	"sync"
	"time"
)

// Debouncer suppresses duplicate barcode submissions. Camera scanners fire
// the same code many times per second while the barcode is in frame; only
// the first submission inside the cooldown should reach the API.
type Debouncer struct {
	mu       sync.Mutex
	cooldown time.Duration
	lastSeen map[string]time.Time
	now      func() time.Time
}

// NewDebouncer creates a debouncer with the given cooldown.
func NewDebouncer(cooldown time.Duration) *Debouncer {
	return &Debouncer{
		cooldown: cooldown,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether this barcode should be submitted now. The first
// call for a code inside each cooldown window returns true and starts the
// window; repeats return false until the window lapses.
func (d *Debouncer) Allow(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.lastSeen[code]; ok && now.Sub(last) < d.cooldown {
		return false
	}

	// Drop stale entries so a long scanning session doesn't grow the map
	// without bound.
	for k, t := range d.lastSeen {
		if now.Sub(t) >= d.cooldown {
			delete(d.lastSeen, k)
		}
	}

	d.lastSeen[code] = now
	return true
}
