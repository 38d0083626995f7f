package schedule

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// waitFired returns the next generation fired, or fails after a second.
func waitFired(t *testing.T, fired <-chan uint64) uint64 {
	t.Helper()
	select {
	case gen := <-fired:
		return gen
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
		return 0
	}
}

func TestHandle_StartsIdle(t *testing.T) {
	h := New(clockwork.NewFakeClock())

	if h.Armed() {
		t.Error("new handle should be idle")
	}
	if h.Cancel() {
		t.Error("Cancel() on idle handle = true, want false")
	}
	if h.Claim(0) {
		t.Error("Claim() on idle handle = true, want false")
	}
}

func TestHandle_ArmAndFire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)
	fired := make(chan uint64, 4)

	gen := h.Arm(5*time.Second, func(g uint64) { fired <- g })
	if !h.Armed() {
		t.Fatal("handle should be armed after Arm()")
	}

	clock.Advance(5 * time.Second)

	got := waitFired(t, fired)
	if got != gen {
		t.Errorf("fired generation = %d, want %d", got, gen)
	}
	if !h.Claim(got) {
		t.Error("Claim() of live generation = false, want true")
	}
	if h.Armed() {
		t.Error("handle should be idle after claim")
	}
	if h.Claim(got) {
		t.Error("second Claim() = true, want false")
	}
}

func TestHandle_RearmReplacesPendingTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)
	fired := make(chan uint64, 4)

	first := h.Arm(5*time.Second, func(g uint64) { fired <- g })
	clock.Advance(time.Second)
	second := h.Arm(5*time.Second, func(g uint64) { fired <- g })

	if first == second {
		t.Fatal("re-arm should produce a new generation")
	}

	// first timer's deadline passes; it was stopped so nothing fires
	clock.Advance(4*time.Second + 500*time.Millisecond)
	select {
	case g := <-fired:
		t.Fatalf("unexpected firing of generation %d", g)
	case <-time.After(50 * time.Millisecond):
	}

	clock.Advance(time.Second)
	got := waitFired(t, fired)
	if got != second {
		t.Errorf("fired generation = %d, want %d", got, second)
	}
	if h.Claim(first) {
		t.Error("Claim() of replaced generation = true, want false")
	}
	if !h.Claim(second) {
		t.Error("Claim() of live generation = false, want true")
	}
}

func TestHandle_CancelDiscardsInFlightFiring(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(clock)

	gen := h.Arm(time.Second, func(uint64) {})
	if !h.Cancel() {
		t.Fatal("Cancel() on armed handle = false, want true")
	}
	if h.Armed() {
		t.Error("handle should be idle after Cancel()")
	}
	if h.Claim(gen) {
		t.Error("Claim() after Cancel() = true, want false")
	}
}
