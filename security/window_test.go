package security

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fluxsignal/fcuid-gateway/internal/testutil"
)

// newTestWindowLimiter builds a limiter with a mock clock and quiet logger
func newTestWindowLimiter(t *testing.T, cfg WindowLimiterConfig) (*WindowLimiter, *testutil.MockClock) {
	t.Helper()

	clock := testutil.NewMockClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	cfg.Clock = clock
	cfg.Logger = slog.Default()
	wl := NewWindowLimiterWithConfig(cfg)
	t.Cleanup(wl.Stop)
	return wl, clock
}

func TestWindowLimiter_QuotaBoundary(t *testing.T) {
	wl, _ := newTestWindowLimiter(t, WindowLimiterConfig{Quota: 10, Window: time.Minute})

	for i := 0; i < 10; i++ {
		decision := wl.Check("user-1", "lookup")
		if !decision.Allowed {
			t.Fatalf("Check() request %d should be allowed", i+1)
		}
		if want := 9 - i; decision.Remaining != want {
			t.Errorf("Check() request %d remaining = %d, want %d", i+1, decision.Remaining, want)
		}
		if decision.Limit != 10 {
			t.Errorf("Check() limit = %d, want 10", decision.Limit)
		}
	}

	decision := wl.Check("user-1", "lookup")
	if decision.Allowed {
		t.Error("Check() request 11 should be denied")
	}
	if decision.Remaining != 0 {
		t.Errorf("Check() denied remaining = %d, want 0", decision.Remaining)
	}
	if decision.RetryAfterSeconds() <= 0 {
		t.Errorf("Check() denied RetryAfterSeconds = %d, want > 0", decision.RetryAfterSeconds())
	}
}

func TestWindowLimiter_WindowReset(t *testing.T) {
	wl, clock := newTestWindowLimiter(t, WindowLimiterConfig{Quota: 10, Window: time.Minute})

	for i := 0; i < 11; i++ {
		wl.Check("user-1", "lookup")
	}

	// Advance past resetAt; the next request restarts the window from its
	// own arrival time.
	clock.Advance(61 * time.Second)

	decision := wl.Check("user-1", "lookup")
	if !decision.Allowed {
		t.Fatal("Check() after window elapsed should be allowed")
	}
	if decision.Remaining != 9 {
		t.Errorf("Check() after reset remaining = %d, want 9", decision.Remaining)
	}
	if want := clock.Now().Add(time.Minute); !decision.ResetAt.Equal(want) {
		t.Errorf("Check() after reset ResetAt = %v, want %v", decision.ResetAt, want)
	}
}

func TestWindowLimiter_LateArrivalRestartsWindow(t *testing.T) {
	wl, clock := newTestWindowLimiter(t, WindowLimiterConfig{Quota: 2, Window: time.Minute})

	start := clock.Now()
	wl.Check("user-1", "lookup")

	// Arrive well after expiry; the window anchors at this arrival, not at
	// a calendar boundary.
	clock.Advance(5 * time.Minute)
	decision := wl.Check("user-1", "lookup")

	if want := start.Add(5*time.Minute + time.Minute); !decision.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", decision.ResetAt, want)
	}
}

func TestWindowLimiter_SeparateKeys(t *testing.T) {
	wl, _ := newTestWindowLimiter(t, WindowLimiterConfig{Quota: 1, Window: time.Minute})

	if d := wl.Check("user-1", "lookup"); !d.Allowed {
		t.Fatal("first request for user-1 should be allowed")
	}
	if d := wl.Check("user-1", "lookup"); d.Allowed {
		t.Error("second request for user-1 should be denied")
	}

	// Different requester, same operation
	if d := wl.Check("user-2", "lookup"); !d.Allowed {
		t.Error("first request for user-2 should be allowed")
	}

	// Same requester, different operation
	if d := wl.Check("user-1", "register"); !d.Allowed {
		t.Error("first request for user-1:register should be allowed")
	}
}

func TestWindowLimiter_SumCounts(t *testing.T) {
	wl, _ := newTestWindowLimiter(t, WindowLimiterConfig{Quota: 10, Window: time.Minute})

	wl.Check("user-1", "lookup")
	wl.Check("user-1", "lookup")
	wl.Check("user-2", "lookup")
	wl.Check("user-3", "register")

	total, tracked := wl.SumCounts("lookup")
	if total != 3 {
		t.Errorf("SumCounts() total = %d, want 3", total)
	}
	if tracked != 2 {
		t.Errorf("SumCounts() tracked = %d, want 2", tracked)
	}

	// Idempotent with no intervening activity
	again, _ := wl.SumCounts("lookup")
	if again != total {
		t.Errorf("SumCounts() second call = %d, want %d", again, total)
	}
}

func TestWindowLimiter_Sweep(t *testing.T) {
	wl, clock := newTestWindowLimiter(t, WindowLimiterConfig{
		Quota:   10,
		Window:  time.Minute,
		MaxIdle: 10 * time.Minute,
	})

	wl.Check("stale", "lookup")
	clock.Advance(11 * time.Minute)
	wl.Check("fresh", "lookup")

	wl.Sweep()

	stats := wl.GetStats()
	if stats.CurrentEntries != 1 {
		t.Errorf("CurrentEntries after sweep = %d, want 1", stats.CurrentEntries)
	}

	// The swept key starts a fresh window on its next request
	if d := wl.Check("stale", "lookup"); d.Remaining != 9 {
		t.Errorf("Remaining after sweep = %d, want 9", d.Remaining)
	}
}

func TestWindowLimiter_LRUEviction(t *testing.T) {
	wl, _ := newTestWindowLimiter(t, WindowLimiterConfig{
		Quota:      10,
		Window:     time.Minute,
		MaxEntries: 3,
	})

	for i := 0; i < 5; i++ {
		wl.Check(fmt.Sprintf("user-%d", i), "lookup")
	}

	stats := wl.GetStats()
	if stats.CurrentEntries != 3 {
		t.Errorf("CurrentEntries = %d, want 3", stats.CurrentEntries)
	}
	if stats.TotalEvictions != 2 {
		t.Errorf("TotalEvictions = %d, want 2", stats.TotalEvictions)
	}
}

func TestWindowLimiter_ConcurrentSameKey(t *testing.T) {
	wl, _ := newTestWindowLimiter(t, WindowLimiterConfig{Quota: 100, Window: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				wl.Check("user-1", "lookup")
			}
		}()
	}
	wg.Wait()

	// No lost updates: all 100 requests must be counted
	total, _ := wl.SumCounts("lookup")
	if total != 100 {
		t.Errorf("SumCounts() total = %d, want 100", total)
	}
	if d := wl.Check("user-1", "lookup"); d.Allowed {
		t.Error("request 101 should be denied")
	}
}

func TestWindowLimiter_Defaults(t *testing.T) {
	wl := NewWindowLimiter(nil)
	defer wl.Stop()

	if wl.quota != DefaultWindowQuota {
		t.Errorf("quota = %d, want %d", wl.quota, DefaultWindowQuota)
	}
	if wl.window != DefaultWindow {
		t.Errorf("window = %v, want %v", wl.window, DefaultWindow)
	}
	if wl.logger == nil {
		t.Error("logger should not be nil")
	}
}

func TestWindowLimiter_StopIsIdempotent(t *testing.T) {
	wl := NewWindowLimiter(slog.Default())
	wl.Stop()
	wl.Stop() // must not panic
}
