// Package progress carries the human readable narrative of an allocation
// run from the orchestration code to whatever front-end is listening.
package progress

import (
	"sync"
	"time"
)

type EventKind string

const (
	// EventStep is a narrative line.
	EventStep EventKind = "step"
	// EventProgress is a polling update.
	EventProgress EventKind = "progress"
	// EventGate reports the latest Agent liveness.
	EventGate EventKind = "gate"
	// EventAffordance enables or disables a user action.
	EventAffordance EventKind = "affordance"
	// EventRedirect asks the front-end to move to Target.
	EventRedirect EventKind = "redirect"
	// EventChoices announces the stopped resource continuations.
	EventChoices EventKind = "choices"
)

type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
)

type Affordance string

const (
	AffordancePrimary  Affordance = "primary"
	AffordanceResolver Affordance = "resolver"
)

type Event struct {
	Kind       EventKind
	Tone       Tone
	Message    string
	RunID      string
	Attempt    int
	Target     string
	Affordance Affordance
	Enabled    bool
	Time       time.Time
}

type Reporter interface {
	Report(Event)
}

type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) {
	f(e)
}

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})

// Broadcaster fans events out to every subscriber in subscription order.
type Broadcaster struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]ReporterFunc
	order     []int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: map[int]ReporterFunc{}}
}

// Subscribe registers fn and returns the function that removes it.
func (b *Broadcaster) Subscribe(fn ReporterFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
		for i, existing := range b.order {
			if existing == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

func (b *Broadcaster) Report(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	listeners := make([]ReporterFunc, 0, len(b.order))
	for _, id := range b.order {
		listeners = append(listeners, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}

func Step(r Reporter, tone Tone, message string) {
	r.Report(Event{Kind: EventStep, Tone: tone, Message: message})
}

func Enable(r Reporter, affordance Affordance, enabled bool) {
	r.Report(Event{Kind: EventAffordance, Affordance: affordance, Enabled: enabled})
}

func Redirect(r Reporter, message string, target string) {
	r.Report(Event{Kind: EventRedirect, Tone: ToneSuccess, Message: message, Target: target})
}

// Recorder keeps every event it sees. Front-ends use it to replay a run and
// tests use it to assert on the narrative.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) OfKind(kind EventKind) []Event {
	out := []Event{}
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
