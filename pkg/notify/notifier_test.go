package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-authform/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) reasons() []Reason {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reason, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Reason)
	}
	return out
}

func TestNotifier_LatestWins(t *testing.T) {
	clk := testsupport.NewFakeClock()
	n := New(WithClock(clk))

	n.Success("first")
	second := n.Error("second")

	got, ok := n.Current()
	if !ok {
		t.Fatalf("expected a visible notification")
	}
	if got.ID != second.ID || got.Message != "second" || got.Kind != KindError {
		t.Fatalf("unexpected current notification: %+v", got)
	}
	if clk.Pending() != 1 {
		t.Fatalf("expected exactly one dismissal timer, got %d", clk.Pending())
	}
}

func TestNotifier_AutoDismiss(t *testing.T) {
	clk := testsupport.NewFakeClock()
	rec := &recorder{}
	n := New(WithClock(clk), WithListener(rec.listen))

	shown := n.Success("Sign in successful! Redirecting...")
	if want := shown.ShownAt.Add(DefaultTimeout); !shown.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", shown.ExpiresAt, want)
	}

	clk.Advance(DefaultTimeout - time.Millisecond)
	if _, ok := n.Current(); !ok {
		t.Fatalf("notification removed too early")
	}

	clk.Advance(time.Millisecond)
	if _, ok := n.Current(); ok {
		t.Fatalf("expected notification to expire")
	}

	if diff := cmp.Diff([]Reason{ReasonShown, ReasonExpired}, rec.reasons()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifier_ReplacementRestartsTimer(t *testing.T) {
	clk := testsupport.NewFakeClock()
	rec := &recorder{}
	n := New(WithClock(clk), WithListener(rec.listen))

	n.Success("one")
	clk.Advance(3 * time.Second)
	two := n.Success("two")
	clk.Advance(3 * time.Second)

	got, ok := n.Current()
	if !ok || got.ID != two.ID {
		t.Fatalf("replacement must survive the first timer, got %+v ok=%v", got, ok)
	}

	clk.Advance(2 * time.Second)
	if _, ok := n.Current(); ok {
		t.Fatalf("expected second notification to expire")
	}

	want := []Reason{ReasonShown, ReasonReplaced, ReasonShown, ReasonExpired}
	if diff := cmp.Diff(want, rec.reasons()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifier_Dismiss(t *testing.T) {
	clk := testsupport.NewFakeClock()
	n := New(WithClock(clk))

	first := n.Success("first")
	second := n.Success("second")

	if n.Dismiss(first.ID) {
		t.Fatalf("dismissing a replaced notification must be a no-op")
	}
	if _, ok := n.Current(); !ok {
		t.Fatalf("stale dismiss removed the visible notification")
	}
	if !n.Dismiss(second.ID) {
		t.Fatalf("expected dismiss to succeed")
	}
	if _, ok := n.Current(); ok {
		t.Fatalf("expected empty slot after dismiss")
	}
	if clk.Pending() != 0 {
		t.Fatalf("dismiss must stop the timer, %d pending", clk.Pending())
	}
	if n.Dismiss(second.ID) {
		t.Fatalf("second dismiss should report false")
	}
}

func TestNotifier_Subscribe(t *testing.T) {
	clk := testsupport.NewFakeClock()
	n := New(WithClock(clk))
	rec := &recorder{}
	unsubscribe := n.Subscribe(rec.listen)

	n.Success("hello")
	unsubscribe()
	n.Success("ignored")

	if diff := cmp.Diff([]Reason{ReasonShown}, rec.reasons()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifier_CustomTimeoutAndClose(t *testing.T) {
	clk := testsupport.NewFakeClock()
	n := New(WithClock(clk), WithTimeout(time.Second))

	n.Error("boom")
	n.Close()
	if _, ok := n.Current(); ok {
		t.Fatalf("close must clear the slot")
	}
	if clk.Pending() != 0 {
		t.Fatalf("close must stop the timer")
	}
}

func TestNotifier_RealClock(t *testing.T) {
	n := New(WithTimeout(20 * time.Millisecond))
	done := make(chan struct{})
	n.Subscribe(func(e Event) {
		if e.Reason == ReasonExpired {
			close(done)
		}
	})

	n.Success("short lived")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("notification never expired")
	}
}
