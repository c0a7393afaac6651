package event

// Queue is a FIFO of events backed by a growable ring buffer. Each engine
// instance owns exactly one queue; it is not safe for concurrent use and
// never needs to be.
type Queue struct {
	buf  []Event
	head int
	n    int
}

// Push appends an event to the back of the queue.
func (q *Queue) Push(e Event) {
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = e
	q.n++
}

// Pop removes and returns the event at the front of the queue. The second
// return value is false when the queue is empty.
func (q *Queue) Pop() (Event, bool) {
	if q.n == 0 {
		return nil, false
	}
	e := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return e, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int { return q.n }

// Reset drops all queued events but keeps the allocated buffer.
func (q *Queue) Reset() {
	for i := range q.buf {
		q.buf[i] = nil
	}
	q.head = 0
	q.n = 0
}

func (q *Queue) grow() {
	size := len(q.buf) * 2
	if size == 0 {
		size = 16
	}
	buf := make([]Event, size)
	for i := 0; i < q.n; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
