// Package testutil provides testing utilities and helpers for the
// fcuid-gateway packages.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// MockClock provides a controllable time source for deterministic testing.
// It satisfies the security.Clock interface and is safe for concurrent use.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new mock clock anchored at t
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the current mock time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock time forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock time to a specific value
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// RandomHex returns n random hex characters
func RandomHex(n int) string {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand.Read failed: %v", err))
	}
	return hex.EncodeToString(b)[:n]
}

// RandomStandardIdentifier returns a well-formed standard-variant FCUID
// with a random payload
func RandomStandardIdentifier() string {
	return fmt.Sprintf("FSL-%s-%s-%s-%s", RandomHex(4), RandomHex(4), RandomHex(4), RandomHex(4))
}

// RandomShortIdentifier returns a well-formed short-variant FCUID with a
// random payload
func RandomShortIdentifier() string {
	return "FSL-" + RandomHex(8)
}
