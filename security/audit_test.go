package security

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewAuditor(t *testing.T) {
	tests := []struct {
		name    string
		logger  *slog.Logger
		enabled bool
	}{
		{name: "enabled with logger", logger: slog.Default(), enabled: true},
		{name: "disabled with logger", logger: slog.Default(), enabled: false},
		{name: "enabled with nil logger", logger: nil, enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor := NewAuditor(tt.logger, tt.enabled)
			if auditor == nil {
				t.Fatal("NewAuditor() returned nil")
			}
			if auditor.enabled != tt.enabled {
				t.Errorf("enabled = %v, want %v", auditor.enabled, tt.enabled)
			}
			if auditor.logger == nil {
				t.Error("logger should not be nil")
			}
		})
	}
}

func TestAuditor_LogEvent(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		wantLog bool
	}{
		{name: "enabled", enabled: true, wantLog: true},
		{name: "disabled", enabled: false, wantLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			auditor := NewAuditor(logger, tt.enabled)

			auditor.LogEvent(AuditEvent{
				Type:       EventValidationFailed,
				Requester:  "user-123",
				Identifier: "FSL-1a2b3c4d",
				Details:    map[string]any{"code": "invalid_format"},
			})

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestAuditor_HashesRequesterIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	auditor := NewAuditor(logger, true)

	auditor.LogRateLimitExceeded("user-secret-identity", "lookup", 30*time.Second)

	out := buf.String()
	if strings.Contains(out, "user-secret-identity") {
		t.Error("raw requester identity should not appear in audit output")
	}
	if !strings.Contains(out, "requester_hash") {
		t.Error("audit output should carry a requester hash")
	}
	if !strings.Contains(out, EventRateLimitExceeded) {
		t.Errorf("audit output should carry the event type, got %q", out)
	}
}

func TestAuditor_TruncatesLongIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	auditor := NewAuditor(logger, true)

	long := strings.Repeat("x", 500)
	auditor.LogValidationFailed("user-1", long, "invalid_format")

	if strings.Contains(buf.String(), long) {
		t.Error("full oversized identifier should not appear in audit output")
	}
}

func TestHashForLogging(t *testing.T) {
	if got := hashForLogging(""); got != "" {
		t.Errorf("hashForLogging(\"\") = %q, want empty", got)
	}

	a := hashForLogging("value-a")
	b := hashForLogging("value-b")
	if a == b {
		t.Error("different values should hash differently")
	}
	if a != hashForLogging("value-a") {
		t.Error("hashing should be deterministic")
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16 hex chars", len(a))
	}
}
