package framework

// EventList holds the events of one iteration.
type EventList struct {
	events []Event
}

// Len returns the number of events not yet taken.
func (l *EventList) Len() int {
	return len(l.events)
}

// Take removes and returns the events accepted by fn, in order.
func (l *EventList) Take(fn func(Event) bool) (taken []Event) {
	remains := l.events[:0]
	for _, ev := range l.events {
		if fn(ev) {
			taken = append(taken, ev)
		} else {
			remains = append(remains, ev)
		}
	}
	for i := len(remains); i < len(l.events); i++ {
		l.events[i] = nil
	}
	l.events = remains
	return
}

// Add appends events to be seen by later controllers.
func (l *EventList) Add(events ...Event) {
	l.events = append(l.events, events...)
}
