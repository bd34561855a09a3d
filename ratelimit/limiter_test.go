package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l, err := New(Config{Limit: limit, Window: window, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	return l, clock
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Limit: 0, Window: time.Minute}); err == nil {
		t.Fatal("expected zero limit to be rejected")
	}
	if _, err := New(Config{Limit: 5, Window: 0}); err == nil {
		t.Fatal("expected zero window to be rejected")
	}
}

func TestAllowSequence(t *testing.T) {
	l, clock := newTestLimiter(t, 5, 60*time.Second)
	start := clock.now

	for i := 0; i < 5; i++ {
		res := l.Allow("user-1")
		if !res.Allowed {
			t.Fatalf("call %d should be admitted", i+1)
		}
		if want := 5 - (i + 1); res.Remaining != want {
			t.Fatalf("call %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
		clock.Advance(time.Second)
	}

	res := l.Allow("user-1")
	if res.Allowed {
		t.Fatal("6th call within the window should be denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("denied call remaining = %d, want 0", res.Remaining)
	}
	if want := start.Add(60 * time.Second); !res.ResetAt.Equal(want) {
		t.Fatalf("denied ResetAt = %v, want %v (oldest stamp + window)", res.ResetAt, want)
	}

	// 60s after the first call its stamp falls out of the window.
	clock.now = start.Add(60 * time.Second)
	res = l.Allow("user-1")
	if !res.Allowed {
		t.Fatal("call at first-stamp + window should be admitted again")
	}
}

func TestAllowNoBoundaryBurst(t *testing.T) {
	// A fixed-window counter would admit up to 2N around a boundary.
	// The sliding log must not.
	l, clock := newTestLimiter(t, 3, 30*time.Second)

	admitted := 0
	for i := 0; i < 10; i++ {
		if l.Allow("user-1").Allowed {
			admitted++
		}
		clock.Advance(2 * time.Second)
	}
	// 20 seconds elapsed, window is 30s: only the initial 3 fit.
	if admitted != 3 {
		t.Fatalf("admitted %d in 20s, want 3", admitted)
	}
}

func TestAllowIsolatesPrincipals(t *testing.T) {
	l, _ := newTestLimiter(t, 2, time.Minute)

	l.Allow("user-1")
	l.Allow("user-1")
	if l.Allow("user-1").Allowed {
		t.Fatal("user-1 should be exhausted")
	}
	if !l.Allow("user-2").Allowed {
		t.Fatal("user-2 must not be affected by user-1's window")
	}
}

func TestAllowResultCarriesLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 7, time.Minute)

	if res := l.Allow("user-1"); res.Limit != 7 {
		t.Fatalf("Limit = %d, want 7", res.Limit)
	}
}

func TestSweepRemovesIdleWindows(t *testing.T) {
	l, clock := newTestLimiter(t, 5, time.Minute)

	for i := 0; i < 10; i++ {
		l.Allow(fmt.Sprintf("user-%d", i))
	}
	if got := l.Len(); got != 10 {
		t.Fatalf("Len = %d, want 10", got)
	}

	clock.Advance(30 * time.Second)
	l.Allow("user-0") // keeps user-0 fresh

	clock.Advance(45 * time.Second)
	removed := l.Sweep(clock.now)
	if removed != 9 {
		t.Fatalf("Sweep removed %d, want 9", removed)
	}
	if got := l.Len(); got != 1 {
		t.Fatalf("Len after sweep = %d, want 1", got)
	}

	// The surviving window still enforces its history.
	if got := l.Allow("user-0"); !got.Allowed {
		t.Fatal("user-0 should be admitted after its stamps aged out")
	}
}

func TestSweepKeepsActiveWindows(t *testing.T) {
	l, clock := newTestLimiter(t, 5, time.Minute)

	l.Allow("user-1")
	if removed := l.Sweep(clock.now); removed != 0 {
		t.Fatalf("Sweep removed %d active windows, want 0", removed)
	}
}

func TestDeniedChecksRefreshIdleness(t *testing.T) {
	l, clock := newTestLimiter(t, 1, time.Minute)

	l.Allow("user-1")
	for i := 0; i < 3; i++ {
		clock.Advance(50 * time.Second)
		if l.Allow("user-1").Allowed {
			// Stamps age out while we keep probing; that is fine, the
			// point is the window record itself must survive.
			continue
		}
	}
	if l.Len() != 1 {
		t.Fatal("window probed within the last minute must not be sweepable")
	}
	if removed := l.Sweep(clock.now); removed != 0 {
		t.Fatalf("Sweep removed %d, want 0", removed)
	}
}
