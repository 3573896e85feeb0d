package security

import (
	"container/list"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultTimingBurstThreshold is the minimum number of requests inside
	// the recency window before timing analysis applies
	DefaultTimingBurstThreshold = 6

	// DefaultTimingMeanInterval is the mean inter-arrival cutoff below
	// which a burst is flagged as automated
	DefaultTimingMeanInterval = 100 * time.Millisecond

	// DefaultTimingRecencyWindow is how far back request timestamps are
	// retained for analysis
	DefaultTimingRecencyWindow = 10 * time.Second

	// DefaultTimingMaxEntries is the maximum number of requesters to track
	DefaultTimingMaxEntries = 10000

	// DefaultTimingSweepInterval is how often the sweep goroutine runs
	DefaultTimingSweepInterval = 5 * time.Minute
)

// timingEntry tracks recent request timestamps for one requester
type timingEntry struct {
	requester  string
	samples    []time.Time // timestamps inside the recency window
	lastAccess time.Time
}

// TimingAnalyzer flags request bursts whose inter-arrival timing looks
// automated. Each observation appends the current timestamp to the
// requester's log and prunes entries older than the recency window; a burst
// is flagged when enough samples remain and their mean consecutive interval
// falls below the configured cutoff.
//
// Findings are advisory: callers surface them as warnings, never as errors.
type TimingAnalyzer struct {
	entries        map[string]*list.Element // requester -> list element
	lruList        *list.List               // LRU list of *timingEntry
	mu             sync.Mutex
	burstThreshold int
	meanInterval   time.Duration
	recencyWindow  time.Duration
	maxEntries     int
	clock          Clock
	logger         *slog.Logger
	sweepInterval  time.Duration
	stopSweep      chan struct{}
	stopOnce       sync.Once

	// Statistics
	totalFlagged   int64
	totalEvictions int64
	totalSweeps    int64
}

// TimingAnalyzerConfig holds TimingAnalyzer construction parameters.
// Zero values fall back to the package defaults.
type TimingAnalyzerConfig struct {
	BurstThreshold int
	MeanInterval   time.Duration
	RecencyWindow  time.Duration
	MaxEntries     int // negative disables the cap
	SweepInterval  time.Duration
	Clock          Clock
	Logger         *slog.Logger
}

// NewTimingAnalyzer creates a timing analyzer with default settings
func NewTimingAnalyzer(logger *slog.Logger) *TimingAnalyzer {
	return NewTimingAnalyzerWithConfig(TimingAnalyzerConfig{Logger: logger})
}

// NewTimingAnalyzerWithConfig creates a timing analyzer with custom configuration
func NewTimingAnalyzerWithConfig(cfg TimingAnalyzerConfig) *TimingAnalyzer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BurstThreshold <= 0 {
		cfg.BurstThreshold = DefaultTimingBurstThreshold
	} else if cfg.BurstThreshold < 2 {
		// meanInterval needs at least two samples
		cfg.BurstThreshold = 2
	}
	if cfg.MeanInterval <= 0 {
		cfg.MeanInterval = DefaultTimingMeanInterval
	}
	if cfg.RecencyWindow <= 0 {
		cfg.RecencyWindow = DefaultTimingRecencyWindow
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = DefaultTimingMaxEntries
	}
	if cfg.MaxEntries < 0 {
		cfg.MaxEntries = 0 // uncapped
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultTimingSweepInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	ta := &TimingAnalyzer{
		entries:        make(map[string]*list.Element),
		lruList:        list.New(),
		burstThreshold: cfg.BurstThreshold,
		meanInterval:   cfg.MeanInterval,
		recencyWindow:  cfg.RecencyWindow,
		maxEntries:     cfg.MaxEntries,
		clock:          cfg.Clock,
		logger:         cfg.Logger,
		sweepInterval:  cfg.SweepInterval,
		stopSweep:      make(chan struct{}),
	}

	go ta.sweepLoop()

	return ta
}

// Observe records one request for the requester and reports whether the
// retained burst looks like an automated timing attack.
func (ta *TimingAnalyzer) Observe(requester string) bool {
	now := ta.clock.Now()
	cutoff := now.Add(-ta.recencyWindow)

	ta.mu.Lock()
	defer ta.mu.Unlock()

	entry := ta.getOrCreateEntry(requester, now)
	entry.lastAccess = now

	// Prune samples outside the recency window (in-place filtering)
	n := 0
	for _, t := range entry.samples {
		if t.After(cutoff) {
			entry.samples[n] = t
			n++
		}
	}
	entry.samples = entry.samples[:n]

	entry.samples = append(entry.samples, now)

	if len(entry.samples) < ta.burstThreshold {
		return false
	}

	mean := meanInterval(entry.samples)
	if mean >= ta.meanInterval {
		return false
	}

	ta.totalFlagged++
	ta.logger.Warn("automated request burst detected",
		"requester", requester,
		"samples", len(entry.samples),
		"mean_interval", mean,
		"cutoff", ta.meanInterval,
		"total_flagged", ta.totalFlagged)
	return true
}

// meanInterval computes the arithmetic mean of consecutive inter-arrival
// intervals. Samples must be time-ordered and len(samples) >= 2.
func meanInterval(samples []time.Time) time.Duration {
	total := samples[len(samples)-1].Sub(samples[0])
	return total / time.Duration(len(samples)-1)
}

// getOrCreateEntry returns the entry for requester, creating it lazily.
// Must be called with the mutex locked.
func (ta *TimingAnalyzer) getOrCreateEntry(requester string, now time.Time) *timingEntry {
	if elem, exists := ta.entries[requester]; exists {
		ta.lruList.MoveToFront(elem)
		return elem.Value.(*timingEntry)
	}

	if ta.maxEntries > 0 && len(ta.entries) >= ta.maxEntries {
		ta.evictLRU()
	}

	entry := &timingEntry{
		requester:  requester,
		lastAccess: now,
	}
	elem := ta.lruList.PushFront(entry)
	ta.entries[requester] = elem
	return entry
}

// evictLRU removes the least recently used entry.
// Must be called with the mutex locked.
func (ta *TimingAnalyzer) evictLRU() {
	elem := ta.lruList.Back()
	if elem == nil {
		return
	}

	entry := elem.Value.(*timingEntry)
	delete(ta.entries, entry.requester)
	ta.lruList.Remove(elem)
	ta.totalEvictions++

	ta.logger.Debug("timing analyzer LRU eviction",
		"requester", entry.requester,
		"total_evictions", ta.totalEvictions,
		"current_entries", len(ta.entries))
}

// sweepLoop periodically removes inactive requester logs
func (ta *TimingAnalyzer) sweepLoop() {
	ticker := time.NewTicker(ta.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ta.Sweep()
		case <-ta.stopSweep:
			return
		}
	}
}

// Sweep removes requester logs that have seen no activity for 2x the
// recency window
func (ta *TimingAnalyzer) Sweep() {
	now := ta.clock.Now()
	maxIdle := ta.recencyWindow * 2

	ta.mu.Lock()
	defer ta.mu.Unlock()

	removed := 0
	var next *list.Element
	for elem := ta.lruList.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*timingEntry)

		if now.Sub(entry.lastAccess) > maxIdle {
			delete(ta.entries, entry.requester)
			ta.lruList.Remove(elem)
			removed++
		}
	}

	if removed > 0 {
		ta.totalSweeps++
		ta.logger.Debug("timing analyzer sweep completed",
			"removed", removed,
			"remaining", len(ta.entries),
			"total_sweeps", ta.totalSweeps)
	}
}

// Stop gracefully stops the sweep goroutine.
// Safe to call multiple times concurrently.
func (ta *TimingAnalyzer) Stop() {
	ta.stopOnce.Do(func() {
		close(ta.stopSweep)
	})
}

// TrackedRequesters returns the number of requester logs currently held
func (ta *TimingAnalyzer) TrackedRequesters() int {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	return len(ta.entries)
}
