package p2pnet

// queue.go implements the bounded FIFO queue used by PointToPointNetDevice
// to hold packets while the transmitter is BUSY. Overflow policy is
// drop-tail: Enqueue on a full queue reports failure and the packet is
// dropped. Counters mirror the teacher's intrfcState packet/drop
// bookkeeping (net.go) so trace/test code can observe queue behavior.

// Unbounded is the sentinel MaxLen value meaning "no capacity limit".
const Unbounded = -1

// Queue is a bounded FIFO of *Packet. A MaxLen of Unbounded means the
// queue never reports itself full.
type Queue struct {
	MaxLen int
	items  []*Packet

	enqueued int
	dequeued int
	dropped  int

	trace *TraceManager
	objID int
}

// CreateQueue is a constructor. maxLen of Unbounded (-1) creates an
// unbounded queue; any non-negative value bounds the queue at that many
// packets.
func CreateQueue(maxLen int) *Queue {
	return &Queue{
		MaxLen: maxLen,
		items:  make([]*Packet, 0),
	}
}

// SetTrace attaches a TraceManager and an object id used to label trace
// records emitted by this queue.
func (q *Queue) SetTrace(tm *TraceManager, objID int) {
	q.trace = tm
	q.objID = objID
}

// full reports whether the queue is at capacity.
func (q *Queue) full() bool {
	return q.MaxLen != Unbounded && len(q.items) >= q.MaxLen
}

// Enqueue appends p to the back of the queue. It returns false, and drops
// the packet, iff the queue is full.
func (q *Queue) Enqueue(p *Packet) bool {
	if q.full() {
		q.dropped++
		q.logTrace("drop")
		return false
	}
	q.items = append(q.items, p)
	q.enqueued++
	q.logTrace("enqueue")
	return true
}

// Dequeue removes and returns the packet at the front of the queue. The
// second return is false iff the queue is empty.
func (q *Queue) Dequeue() (*Packet, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	p := q.items[0]
	q.items = q.items[1:]
	q.dequeued++
	q.logTrace("dequeue")
	return p, true
}

// Empty reports whether the queue currently holds no packets.
func (q *Queue) Empty() bool {
	return len(q.items) == 0
}

// Len returns the number of packets currently queued.
func (q *Queue) Len() int {
	return len(q.items)
}

// Enqueued, Dequeued, and Dropped return running counts of each operation,
// for trace/test observation.
func (q *Queue) Enqueued() int { return q.enqueued }
func (q *Queue) Dequeued() int { return q.dequeued }
func (q *Queue) Dropped() int  { return q.dropped }

func (q *Queue) logTrace(op string) {
	if q.trace == nil || !q.trace.Active() {
		return
	}
	q.trace.AddEvent(TraceEvent{
		ObjID: q.objID,
		Op:    "queue:" + op,
	})
}
