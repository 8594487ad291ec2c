package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request within the window should be rejected")
	}

	// Other keys are unaffected.
	if !rl.Allow("5.6.7.8") {
		t.Error("a different key should have its own budget")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)

	if !rl.Allow("k") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("k") {
		t.Fatal("second request inside the window should fail")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("k") {
		t.Error("request after the window expires should pass")
	}
}
