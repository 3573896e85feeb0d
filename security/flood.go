package security

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// floodEntry tracks a token bucket and its last access time for one client
type floodEntry struct {
	identifier string
	limiter    *rate.Limiter
	lastAccess time.Time
}

// FloodLimiter provides per-client token-bucket limiting for the HTTP
// transport, with LRU eviction to prevent unbounded memory growth. It sits
// in front of the application-level fixed-window quota and protects the
// process from raw request floods; it does not participate in the quota
// semantics the gateway reports to callers.
type FloodLimiter struct {
	limiters        map[string]*list.Element // identifier -> list element
	lruList         *list.List               // LRU list of *floodEntry
	mu              sync.Mutex
	rate            int
	burst           int
	maxEntries      int
	logger          *slog.Logger
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once

	// Statistics
	totalEvictions int64
	totalCleanups  int64
}

// NewFloodLimiter creates a flood limiter allowing requestsPerSecond with
// the given burst per client identifier. Default max entries is 10,000.
func NewFloodLimiter(requestsPerSecond, burst int, logger *slog.Logger) *FloodLimiter {
	return NewFloodLimiterWithConfig(requestsPerSecond, burst, 10000, logger)
}

// NewFloodLimiterWithConfig creates a flood limiter with a custom cap on
// tracked identifiers. When the cap is reached, least recently used entries
// are evicted. Set maxEntries to 0 for unlimited (not recommended).
func NewFloodLimiterWithConfig(requestsPerSecond, burst, maxEntries int, logger *slog.Logger) *FloodLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEntries < 0 {
		maxEntries = 10000
	}

	fl := &FloodLimiter{
		limiters:        make(map[string]*list.Element),
		lruList:         list.New(),
		rate:            requestsPerSecond,
		burst:           burst,
		maxEntries:      maxEntries,
		logger:          logger,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go fl.cleanupLoop()

	return fl
}

// Allow checks if a request from the given identifier is allowed
func (fl *FloodLimiter) Allow(identifier string) bool {
	now := time.Now()

	fl.mu.Lock()
	defer fl.mu.Unlock()

	if elem, exists := fl.limiters[identifier]; exists {
		fl.lruList.MoveToFront(elem)
		entry := elem.Value.(*floodEntry)
		entry.lastAccess = now
		return entry.limiter.Allow()
	}

	if fl.maxEntries > 0 && len(fl.limiters) >= fl.maxEntries {
		fl.evictLRU()
	}

	entry := &floodEntry{
		identifier: identifier,
		limiter:    rate.NewLimiter(rate.Limit(fl.rate), fl.burst),
		lastAccess: now,
	}
	elem := fl.lruList.PushFront(entry)
	fl.limiters[identifier] = elem

	return entry.limiter.Allow()
}

// evictLRU removes the least recently used entry.
// Must be called with the mutex locked.
func (fl *FloodLimiter) evictLRU() {
	elem := fl.lruList.Back()
	if elem == nil {
		return
	}

	entry := elem.Value.(*floodEntry)
	delete(fl.limiters, entry.identifier)
	fl.lruList.Remove(elem)
	fl.totalEvictions++

	fl.logger.Debug("flood limiter LRU eviction",
		"identifier", entry.identifier,
		"total_evictions", fl.totalEvictions,
		"current_entries", len(fl.limiters))
}

// cleanupLoop periodically removes inactive limiters to prevent memory leaks
func (fl *FloodLimiter) cleanupLoop() {
	ticker := time.NewTicker(fl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fl.Cleanup(30 * time.Minute)
		case <-fl.stopCleanup:
			return
		}
	}
}

// Cleanup removes limiters that have not been accessed for maxIdleTime
func (fl *FloodLimiter) Cleanup(maxIdleTime time.Duration) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	now := time.Now()
	removed := 0

	var next *list.Element
	for elem := fl.lruList.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*floodEntry)

		if now.Sub(entry.lastAccess) > maxIdleTime {
			delete(fl.limiters, entry.identifier)
			fl.lruList.Remove(elem)
			removed++
		}
	}

	if removed > 0 {
		fl.totalCleanups++
		fl.logger.Debug("flood limiter cleanup completed",
			"removed", removed,
			"remaining", len(fl.limiters),
			"total_cleanups", fl.totalCleanups)
	}
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times concurrently.
func (fl *FloodLimiter) Stop() {
	fl.stopOnce.Do(func() {
		close(fl.stopCleanup)
	})
}
