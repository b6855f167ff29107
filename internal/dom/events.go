package dom

import (
	"context"
	"errors"
	"time"

	"golang.org/x/net/html"
)

// EventType names a synthetic DOM event.
type EventType string

const (
	EventInput  EventType = "input"
	EventChange EventType = "change"
	EventBlur   EventType = "blur"
)

// FillSequence is the order in which events follow an assignment.
var FillSequence = []EventType{EventInput, EventChange, EventBlur}

// Event is delivered to listeners. Events bubble: Current walks from the
// target up to the root while Target stays fixed.
type Event struct {
	Type    EventType
	Target  *html.Node
	Current *html.Node
}

// Listener reacts to events. It may mutate the document.
type Listener interface {
	HandleEvent(ctx context.Context, doc *Document, ev Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, doc *Document, ev Event) error

func (f ListenerFunc) HandleEvent(ctx context.Context, doc *Document, ev Event) error {
	return f(ctx, doc, ev)
}

// Notifier runs the post-assignment notification step.
type Notifier interface {
	Notify(ctx context.Context, doc *Document, target *html.Node) error
}

// Dispatcher delivers FillSequence to its listeners, waiting Settle after
// each event. Listener errors do not stop the sequence; they are joined
// and returned.
type Dispatcher struct {
	listeners []Listener
	settle    time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a dispatcher with the given settle delay.
func NewDispatcher(settle time.Duration, listeners ...Listener) *Dispatcher {
	return &Dispatcher{
		listeners: listeners,
		settle:    settle,
		sleep:     Sleep,
	}
}

// AddListener registers another listener.
func (d *Dispatcher) AddListener(l Listener) {
	d.listeners = append(d.listeners, l)
}

// Settle returns the configured delay.
func (d *Dispatcher) Settle() time.Duration {
	return d.settle
}

// Notify fires input, change and blur at target in that order.
func (d *Dispatcher) Notify(ctx context.Context, doc *Document, target *html.Node) error {
	var errs []error
	for _, typ := range FillSequence {
		errs = append(errs, d.dispatch(ctx, doc, Event{Type: typ, Target: target}))
		if err := d.sleep(ctx, d.settle); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) dispatch(ctx context.Context, doc *Document, ev Event) error {
	var errs []error
	for cur := ev.Target; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		ev.Current = cur
		for _, l := range d.listeners {
			if err := l.HandleEvent(ctx, doc, ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recorder is a Listener that remembers the events it saw at their target.
type Recorder struct {
	Events []Event
}

func (r *Recorder) HandleEvent(_ context.Context, _ *Document, ev Event) error {
	if ev.Current == ev.Target {
		r.Events = append(r.Events, ev)
	}
	return nil
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []EventType {
	out := make([]EventType, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Type
	}
	return out
}
