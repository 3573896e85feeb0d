package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "default config",
			config: Config{
				Enabled: false,
			},
			wantErr: false,
		},
		{
			name: "with service name and version",
			config: Config{
				Enabled:        true,
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
			},
			wantErr: false,
		},
		{
			name: "empty service name gets default",
			config: Config{
				Enabled:        true,
				ServiceName:    "",
				ServiceVersion: "",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}

			if inst == nil {
				t.Fatal("New() returned nil instrumentation")
			}

			if inst.Meter("gateway") == nil {
				t.Error("Meter('gateway') returned nil")
			}
			if inst.Meter("security") == nil {
				t.Error("Meter('security') returned nil")
			}
			if inst.Tracer("gateway") == nil {
				t.Error("Tracer('gateway') returned nil")
			}
			if inst.Metrics() == nil {
				t.Error("Metrics() returned nil")
			}
			if inst.TracerProvider() == nil {
				t.Error("TracerProvider() returned nil")
			}
			if inst.MeterProvider() == nil {
				t.Error("MeterProvider() returned nil")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := inst.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
			if err := inst.Shutdown(ctx); err != nil {
				t.Errorf("second Shutdown() error = %v", err)
			}
		})
	}
}

func TestMetrics_Instruments(t *testing.T) {
	inst, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m := inst.Metrics()
	if m.ValidationsTotal == nil {
		t.Error("ValidationsTotal is nil")
	}
	if m.ValidationFailures == nil {
		t.Error("ValidationFailures is nil")
	}
	if m.ValidationWarnings == nil {
		t.Error("ValidationWarnings is nil")
	}
	if m.RateLimitDenied == nil {
		t.Error("RateLimitDenied is nil")
	}
	if m.AccessDenied == nil {
		t.Error("AccessDenied is nil")
	}
	if m.FloodLimited == nil {
		t.Error("FloodLimited is nil")
	}
	if m.RateLimitTrackedKeys == nil {
		t.Error("RateLimitTrackedKeys is nil")
	}
	if m.TimingTrackedRequesters == nil {
		t.Error("TimingTrackedRequesters is nil")
	}
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal is nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration is nil")
	}

	// Recording against no-op providers must not panic
	m.ValidationsTotal.Add(context.Background(), 1)
}

func TestRegisterSizeCallbacks(t *testing.T) {
	inst, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = inst.RegisterSizeCallbacks(
		func() int64 { return 3 },
		func() int64 { return 7 },
	)
	if err != nil {
		t.Errorf("RegisterSizeCallbacks() error = %v", err)
	}

	// Nil callbacks are tolerated
	if err := inst.RegisterSizeCallbacks(nil, nil); err != nil {
		t.Errorf("RegisterSizeCallbacks(nil, nil) error = %v", err)
	}
}
