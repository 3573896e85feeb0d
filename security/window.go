package security

import (
	"container/list"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultWindowQuota is the default number of requests per window per key
	DefaultWindowQuota = 10

	// DefaultWindow is the default fixed-window duration
	DefaultWindow = 60 * time.Second

	// DefaultWindowSweepInterval is how often the sweep goroutine runs
	DefaultWindowSweepInterval = 5 * time.Minute

	// DefaultWindowMaxIdle is how long an entry may go unaccessed before
	// the sweep removes it
	DefaultWindowMaxIdle = 30 * time.Minute

	// DefaultWindowMaxEntries is the maximum number of keys to track
	DefaultWindowMaxEntries = 10000

	// keySeparator joins requester identity and operation kind into a key
	keySeparator = ":"
)

// Decision is the outcome of a single window check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time

	// RetryAfter is how long a denied caller should wait before the window
	// resets. Zero when the request was allowed.
	RetryAfter time.Duration
}

// RetryAfterSeconds returns the retry hint rounded up to whole seconds
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// windowEntry tracks the fixed-window counter for one requester/operation key
type windowEntry struct {
	key         string
	count       int
	windowStart time.Time
	resetAt     time.Time
	lastAccess  time.Time
}

// WindowLimiter enforces a per-key fixed-window request quota.
//
// The window is fixed, not sliding: the counter resets at windowStart plus
// the window duration, and a request arriving after expiry restarts the
// window from that arrival. This permits up to twice the quota across a
// window boundary, which is the documented trade-off of the algorithm and
// must not be silently upgraded to a sliding window or token bucket.
//
// Idle entries are removed by a background sweep and by LRU eviction when
// the tracked-key cap is reached, so adversarial key cardinality cannot
// grow memory without bound.
type WindowLimiter struct {
	entries       map[string]*list.Element // key -> list element
	lruList       *list.List               // LRU list of *windowEntry
	mu            sync.Mutex
	quota         int
	window        time.Duration
	maxEntries    int
	clock         Clock
	logger        *slog.Logger
	sweepInterval time.Duration
	maxIdle       time.Duration
	stopSweep     chan struct{}
	stopOnce      sync.Once

	// Statistics
	totalAllowed   int64
	totalDenied    int64
	totalEvictions int64
	totalSweeps    int64
}

// WindowLimiterConfig holds WindowLimiter construction parameters.
// Zero values fall back to the package defaults.
type WindowLimiterConfig struct {
	Quota         int
	Window        time.Duration
	MaxEntries    int // negative disables the cap
	SweepInterval time.Duration
	MaxIdle       time.Duration
	Clock         Clock
	Logger        *slog.Logger
}

// NewWindowLimiter creates a fixed-window limiter with default settings
func NewWindowLimiter(logger *slog.Logger) *WindowLimiter {
	return NewWindowLimiterWithConfig(WindowLimiterConfig{Logger: logger})
}

// NewWindowLimiterWithConfig creates a fixed-window limiter with custom configuration
func NewWindowLimiterWithConfig(cfg WindowLimiterConfig) *WindowLimiter {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Quota <= 0 {
		cfg.Quota = DefaultWindowQuota
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = DefaultWindowMaxEntries
	}
	if cfg.MaxEntries < 0 {
		cfg.MaxEntries = 0 // uncapped
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultWindowSweepInterval
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = DefaultWindowMaxIdle
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	wl := &WindowLimiter{
		entries:       make(map[string]*list.Element),
		lruList:       list.New(),
		quota:         cfg.Quota,
		window:        cfg.Window,
		maxEntries:    cfg.MaxEntries,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
		sweepInterval: cfg.SweepInterval,
		maxIdle:       cfg.MaxIdle,
		stopSweep:     make(chan struct{}),
	}

	// Start background sweep goroutine
	go wl.sweepLoop()

	return wl
}

// Key builds the composite limiter key for a requester and operation
func Key(requester, operation string) string {
	return requester + keySeparator + operation
}

// Check records one request against the requester/operation key and decides
// whether it fits in the current window.
//
// The read-modify-write on the entry (reset-or-increment) is atomic with
// respect to other callers of the same key; requests within a key are
// limited in arrival order as serialized by the lock.
func (wl *WindowLimiter) Check(requester, operation string) Decision {
	now := wl.clock.Now()
	key := Key(requester, operation)

	wl.mu.Lock()
	defer wl.mu.Unlock()

	entry := wl.getOrCreateEntry(key, now)

	// A late arrival after expiry restarts the window from that arrival,
	// not from a fixed calendar boundary.
	if now.After(entry.resetAt) {
		entry.count = 0
		entry.windowStart = now
		entry.resetAt = now.Add(wl.window)
	}

	entry.count++
	entry.lastAccess = now

	if entry.count > wl.quota {
		wl.totalDenied++
		retryAfter := entry.resetAt.Sub(now)
		wl.logger.Warn("rate limit exceeded",
			"key", key,
			"count", entry.count,
			"quota", wl.quota,
			"retry_after", retryAfter,
			"total_denied", wl.totalDenied)
		return Decision{
			Allowed:    false,
			Limit:      wl.quota,
			Remaining:  0,
			ResetAt:    entry.resetAt,
			RetryAfter: retryAfter,
		}
	}

	wl.totalAllowed++
	return Decision{
		Allowed:   true,
		Limit:     wl.quota,
		Remaining: wl.quota - entry.count,
		ResetAt:   entry.resetAt,
	}
}

// getOrCreateEntry returns the entry for key, creating it lazily on first
// request. Must be called with the mutex locked.
func (wl *WindowLimiter) getOrCreateEntry(key string, now time.Time) *windowEntry {
	if elem, exists := wl.entries[key]; exists {
		wl.lruList.MoveToFront(elem)
		return elem.Value.(*windowEntry)
	}

	if wl.maxEntries > 0 && len(wl.entries) >= wl.maxEntries {
		wl.evictLRU()
	}

	entry := &windowEntry{
		key:         key,
		windowStart: now,
		resetAt:     now.Add(wl.window),
		lastAccess:  now,
	}
	elem := wl.lruList.PushFront(entry)
	wl.entries[key] = elem

	wl.logger.Debug("new rate limit key tracked",
		"key", key,
		"tracked_keys", len(wl.entries))
	return entry
}

// SumCounts sums the current-window counts of every entry whose key carries
// the given operation suffix and reports how many entries contributed.
// Read-only; entries are read under the same lock the mutators hold, so no
// record is observed mid-update.
func (wl *WindowLimiter) SumCounts(operation string) (total int64, tracked int) {
	suffix := keySeparator + operation

	wl.mu.Lock()
	defer wl.mu.Unlock()

	for key, elem := range wl.entries {
		if strings.HasSuffix(key, suffix) {
			total += int64(elem.Value.(*windowEntry).count)
			tracked++
		}
	}
	return total, tracked
}

// evictLRU removes the least recently used entry.
// Must be called with the mutex locked.
func (wl *WindowLimiter) evictLRU() {
	elem := wl.lruList.Back()
	if elem == nil {
		return
	}

	entry := elem.Value.(*windowEntry)
	delete(wl.entries, entry.key)
	wl.lruList.Remove(elem)
	wl.totalEvictions++

	wl.logger.Debug("rate limiter LRU eviction",
		"key", entry.key,
		"total_evictions", wl.totalEvictions,
		"current_entries", len(wl.entries))
}

// sweepLoop periodically removes idle entries to prevent memory leaks
func (wl *WindowLimiter) sweepLoop() {
	ticker := time.NewTicker(wl.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wl.Sweep()
		case <-wl.stopSweep:
			return
		}
	}
}

// Sweep removes entries whose window has long expired and which have seen no
// activity since maxIdle ago
func (wl *WindowLimiter) Sweep() {
	now := wl.clock.Now()

	wl.mu.Lock()
	defer wl.mu.Unlock()

	removed := 0
	var next *list.Element
	for elem := wl.lruList.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*windowEntry)

		if now.Sub(entry.lastAccess) > wl.maxIdle && now.After(entry.resetAt) {
			delete(wl.entries, entry.key)
			wl.lruList.Remove(elem)
			removed++
		}
	}

	if removed > 0 {
		wl.totalSweeps++
		wl.logger.Debug("rate limiter sweep completed",
			"removed", removed,
			"remaining", len(wl.entries),
			"total_sweeps", wl.totalSweeps)
	}
}

// Stop gracefully stops the sweep goroutine.
// Safe to call multiple times concurrently.
func (wl *WindowLimiter) Stop() {
	wl.stopOnce.Do(func() {
		close(wl.stopSweep)
	})
}

// WindowStats holds limiter statistics for monitoring
type WindowStats struct {
	CurrentEntries int     // Current number of tracked keys
	MaxEntries     int     // Maximum allowed entries (0 = unlimited)
	TotalAllowed   int64   // Total requests allowed
	TotalDenied    int64   // Total requests denied
	TotalEvictions int64   // Total number of LRU evictions
	TotalSweeps    int64   // Total number of sweep operations
	Quota          int     // Requests allowed per window
	Window         string  // Window duration
	MemoryPressure float64 // Percentage of max capacity used (0-100)
}

// GetStats returns current limiter statistics for monitoring and alerting
func (wl *WindowLimiter) GetStats() WindowStats {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	stats := WindowStats{
		CurrentEntries: len(wl.entries),
		MaxEntries:     wl.maxEntries,
		TotalAllowed:   wl.totalAllowed,
		TotalDenied:    wl.totalDenied,
		TotalEvictions: wl.totalEvictions,
		TotalSweeps:    wl.totalSweeps,
		Quota:          wl.quota,
		Window:         wl.window.String(),
	}

	if wl.maxEntries > 0 {
		stats.MemoryPressure = float64(stats.CurrentEntries) / float64(stats.MaxEntries) * 100.0
	}

	return stats
}
