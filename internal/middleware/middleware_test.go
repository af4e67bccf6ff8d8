package middleware

import (
	"testing"

	"github.com/ramate-ai/ramate/pkg/logger_i"
	"golang.org/x/time/rate"
)

func TestIsValidBearerToken(t *testing.T) {
	Init("secret-token", []string{"http://localhost:3000"})
	log := logger_i.NewLogger("test")

	tests := []struct {
		name   string
		header string
		valid  bool
	}{
		{"Valid", "Bearer secret-token", true},
		{"Wrong_Token", "Bearer other-token", false},
		{"No_Bearer_Prefix", "secret-token", false},
		{"Empty", "", false},
		{"Basic_Scheme", "Basic secret-token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidBearerToken(tt.header, log); got != tt.valid {
				t.Errorf("IsValidBearerToken(%q) = %v, want %v", tt.header, got, tt.valid)
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	Init("secret-token", []string{"http://localhost:3000"})

	if !originAllowed("http://localhost:3000") {
		t.Error("listed origin should be allowed")
	}
	if !originAllowed("HTTP://LOCALHOST:3000") {
		t.Error("origin comparison is case-insensitive")
	}
	if originAllowed("http://evil.example") {
		t.Error("unlisted origin should be rejected")
	}
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)

	a := limiter.GetLimiter("10.0.0.1")
	b := limiter.GetLimiter("10.0.0.2")

	if a == b {
		t.Fatal("distinct IPs should get distinct limiters")
	}
	if limiter.GetLimiter("10.0.0.1") != a {
		t.Error("same IP should reuse its limiter")
	}

	// Burst of 2, then rejected.
	if !a.Allow() || !a.Allow() {
		t.Error("burst allowance should admit the first requests")
	}
	if a.Allow() {
		t.Error("request past the burst should be rejected")
	}
	if !b.Allow() {
		t.Error("another IP's budget is unaffected")
	}
}
