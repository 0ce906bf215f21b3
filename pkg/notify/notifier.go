// Package notify implements the transient notification slot shared by the
// sign-in and sign-up forms. A Notifier holds at most one visible
// notification: a new request replaces the current one, and every
// notification is removed after a fixed timeout unless dismissed earlier.
package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-authform/pkg/clock"
)

// DefaultTimeout is how long a notification stays visible.
const DefaultTimeout = 5 * time.Second

// Kind selects the notification styling.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single user-facing message.
type Notification struct {
	ID        ulid.ULID `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	ShownAt   time.Time `json:"shownAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Reason describes a slot transition reported to listeners.
type Reason string

const (
	ReasonShown     Reason = "shown"
	ReasonReplaced  Reason = "replaced"
	ReasonExpired   Reason = "expired"
	ReasonDismissed Reason = "dismissed"
)

// Event is delivered to listeners after every transition.
type Event struct {
	Reason       Reason
	Notification Notification
}

// Listener observes slot transitions. Listeners run outside the notifier
// lock, so they may call back into the Notifier.
type Listener func(Event)

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock overrides the clock used for auto-dismiss timers.
func WithClock(c clock.Clock) Option {
	return func(n *Notifier) {
		if c != nil {
			n.clock = c
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithListener registers a listener at construction time.
func WithListener(l Listener) Option {
	return func(n *Notifier) {
		if l != nil {
			n.addListener(l)
		}
	}
}

type subscription struct {
	id int
	fn Listener
}

// Notifier owns the single notification slot and its dismissal timer.
type Notifier struct {
	mu        sync.Mutex
	clock     clock.Clock
	timeout   time.Duration
	logger    *slog.Logger
	current   *Notification
	timer     clock.Timer
	listeners []subscription
	nextSub   int
}

// New constructs a Notifier.
func New(options ...Option) *Notifier {
	n := &Notifier{
		clock:   clock.Real(),
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(n)
	}
	return n
}

// Notify shows message, replacing whatever is visible, and schedules its
// automatic removal.
func (n *Notifier) Notify(message string, kind Kind) Notification {
	now := n.clock.Now()
	next := Notification{
		ID:        ulid.Make(),
		Message:   message,
		Kind:      kind,
		ShownAt:   now,
		ExpiresAt: now.Add(n.timeout),
	}

	n.mu.Lock()
	var events []Event
	if n.current != nil {
		events = append(events, Event{Reason: ReasonReplaced, Notification: *n.current})
	}
	n.stopTimerLocked()
	n.current = &next
	id := next.ID
	n.timer = n.clock.AfterFunc(n.timeout, func() {
		n.expire(id)
	})
	events = append(events, Event{Reason: ReasonShown, Notification: next})
	listeners := n.snapshotListenersLocked()
	n.mu.Unlock()

	n.logger.LogAttrs(context.Background(), slog.LevelDebug, "notification shown",
		slog.String("id", id.String()),
		slog.String("kind", string(kind)),
	)
	deliver(listeners, events)
	return next
}

// Success is shorthand for Notify(message, KindSuccess).
func (n *Notifier) Success(message string) Notification {
	return n.Notify(message, KindSuccess)
}

// Error is shorthand for Notify(message, KindError).
func (n *Notifier) Error(message string) Notification {
	return n.Notify(message, KindError)
}

// Dismiss removes the notification with the given id. It reports false when
// that notification is no longer the visible one.
func (n *Notifier) Dismiss(id ulid.ULID) bool {
	return n.remove(id, ReasonDismissed)
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Subscribe registers l and returns a function that removes it.
func (n *Notifier) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	id := n.addListener(l)
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, sub := range n.listeners {
			if sub.id == id {
				n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close clears the slot and stops the pending timer without notifying
// listeners.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopTimerLocked()
	n.current = nil
}

func (n *Notifier) expire(id ulid.ULID) {
	n.remove(id, ReasonExpired)
}

func (n *Notifier) remove(id ulid.ULID, reason Reason) bool {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return false
	}
	removed := *n.current
	n.current = nil
	if reason != ReasonExpired {
		n.stopTimerLocked()
	} else {
		n.timer = nil
	}
	listeners := n.snapshotListenersLocked()
	n.mu.Unlock()

	n.logger.LogAttrs(context.Background(), slog.LevelDebug, "notification removed",
		slog.String("id", id.String()),
		slog.String("reason", string(reason)),
	)
	deliver(listeners, []Event{{Reason: reason, Notification: removed}})
	return true
}

func (n *Notifier) addListener(l Listener) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextSub++
	n.listeners = append(n.listeners, subscription{id: n.nextSub, fn: l})
	return n.nextSub
}

func (n *Notifier) stopTimerLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) snapshotListenersLocked() []Listener {
	if len(n.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(n.listeners))
	for i, sub := range n.listeners {
		out[i] = sub.fn
	}
	return out
}

func deliver(listeners []Listener, events []Event) {
	for _, event := range events {
		for _, l := range listeners {
			l(event)
		}
	}
}
