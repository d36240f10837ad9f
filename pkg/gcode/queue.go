package gcode

import "sync"

// Queue is a fixed-capacity ring of raw command lines.
// All storage is allocated by NewQueue, one slot per entry.
// One producer and one consumer may use it concurrently.
type Queue struct {
	maxSize int
	buf     []byte
	lens    []int
	r, w    int
	full    bool
	lock    sync.Mutex
}

// NewQueue creates a queue holding depth lines of at most maxSize bytes.
func NewQueue(depth, maxSize int) *Queue {
	if depth < 1 {
		depth = 1
	}
	return &Queue{
		maxSize: maxSize,
		buf:     make([]byte, depth*maxSize),
		lens:    make([]int, depth),
	}
}

// Cap returns the number of slots.
func (q *Queue) Cap() int {
	return len(q.lens)
}

// MaxLineSize returns the capacity of a slot.
func (q *Queue) MaxLineSize() int {
	return q.maxSize
}

// Len returns the number of queued lines.
func (q *Queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.length()
}

func (q *Queue) length() int {
	if q.full {
		return len(q.lens)
	}
	if q.w >= q.r {
		return q.w - q.r
	}
	return len(q.lens) - q.r + q.w
}

// Enqueue copies line into the next free slot. Empty lines, comments,
// lines longer than a slot and lines arriving at a full queue are
// dropped and false is returned.
func (q *Queue) Enqueue(line []byte) bool {
	if len(line) == 0 || line[0] == CommentMarker || len(line) > q.maxSize {
		return false
	}
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.full {
		return false
	}
	copy(q.slot(q.w), line)
	q.lens[q.w] = len(line)
	q.w = (q.w + 1) % len(q.lens)
	q.full = q.w == q.r
	return true
}

// Peek returns the oldest line in place. The returned slice is only
// valid until AdvanceRead.
func (q *Queue) Peek() ([]byte, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if !q.full && q.r == q.w {
		return nil, false
	}
	return q.slot(q.r)[:q.lens[q.r]], true
}

// AdvanceRead releases the oldest slot. It does nothing on an empty queue.
func (q *Queue) AdvanceRead() {
	q.lock.Lock()
	defer q.lock.Unlock()
	if !q.full && q.r == q.w {
		return
	}
	q.r = (q.r + 1) % len(q.lens)
	q.full = false
}

// Clear discards all queued lines.
func (q *Queue) Clear() {
	q.lock.Lock()
	q.r, q.w, q.full = 0, 0, false
	q.lock.Unlock()
}

func (q *Queue) slot(i int) []byte {
	return q.buf[i*q.maxSize : (i+1)*q.maxSize]
}
