package fcuid

import "testing"

func TestValidateAccess(t *testing.T) {
	const id = "FSL-1a2b-3c4d-5e6f-7890"

	tests := []struct {
		name      string
		requester Requester
		resource  any
		wantCode  string
	}{
		{
			name:      "no resource data requested",
			requester: Requester{},
			resource:  nil,
		},
		{
			name:      "authenticated with resource data",
			requester: Requester{ID: "user-1", Authenticated: true},
			resource:  map[string]string{"owner": "org-7"},
		},
		{
			name:      "unauthenticated with resource data",
			requester: Requester{ID: "user-1", Authenticated: false},
			resource:  map[string]string{"owner": "org-7"},
			wantCode:  ErrorCodeAccessDenied,
		},
		{
			name:      "anonymous with resource data",
			requester: Requester{},
			resource:  "sensitive",
			wantCode:  ErrorCodeAccessDenied,
		},
		{
			name: "capabilities do not bypass the gate",
			requester: Requester{
				ID:           "user-1",
				Capabilities: NewCapabilitySet("read:resource"),
			},
			resource: "sensitive",
			wantCode: ErrorCodeAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccess(id, tt.requester, tt.resource)

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateAccess() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Fatal("ValidateAccess() error = nil, want access denied")
			}
			if err.Code != tt.wantCode {
				t.Errorf("ValidateAccess() code = %q, want %q", err.Code, tt.wantCode)
			}
			if err.Description != "Access denied. Authentication required." {
				t.Errorf("ValidateAccess() description = %q", err.Description)
			}
		})
	}
}

func TestCapabilitySet(t *testing.T) {
	s := NewCapabilitySet("read:resource", "admin:report")

	if !s.Has("read:resource") {
		t.Error("Has() should find a granted capability")
	}
	if s.Has("write:resource") {
		t.Error("Has() should not find an ungranted capability")
	}

	var empty CapabilitySet
	if empty.Has("read:resource") {
		t.Error("Has() on nil set should be false")
	}
}
