package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Event is posted by runners (e.g. a transport link) and consumed
// by controllers in the next loop iteration.
type Event interface{}

// Controller is invoked once per loop iteration.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// ControlContext provides the context of current iteration.
type ControlContext interface {
	// Context retrieves context.Context.
	Context() context.Context
	// Time is when the iteration started.
	Time() time.Time
	// Iteration is the sequence number of the iteration.
	Iteration() uint64
	// PriorityLevel gets the current priority level.
	PriorityLevel() int
	// Events returns the events posted before the iteration started.
	// Controllers take the events they handle.
	Events() *EventList
	// PostRun injects a one-shot hook run after the controllers of
	// the current priority level.
	PostRun(hooks ...Controller)

	LoopControl
}

// LoopControl exposes access to the control loop from runners.
type LoopControl interface {
	// PostRunAt injects one-shot hooks at the priority level.
	PostRunAt(priorityLevel int, hooks ...Controller)
	// PostEvent enqueues an event and wakes up the loop.
	PostEvent(Event)
	// TriggerNext schedules the next iteration immediately after
	// the current one.
	TriggerNext()
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 8

// Priority levels, controllers at lower levels run first.
const (
	PrLvTop      int = 0
	PrLvIngest   int = 2
	PrLvDispatch int = 4
	PrLvOutput   int = 6
	PrLvIdle     int = PriorityLevels - 1
)
