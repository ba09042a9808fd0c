package engine

// readyQueue is one module's ready-instance priority queue (§4.4
// "One priority queue per module of ready instances, ordered nondecreasing
// by resume criterion").
type readyQueue struct {
	items []*Instance
}

func newReadyQueue() *readyQueue { return &readyQueue{} }

// Enqueue inserts inst before the first existing instance whose
// ResumeTime is strictly greater (§4.4 "Enqueue": "scans from head and
// inserts before the first existing instance whose delay_amount (or
// resume_time) is strictly greater; tie goes to the incoming instance
// (later)").
func (q *readyQueue) Enqueue(inst *Instance) {
	pos := len(q.items)
	for i, it := range q.items {
		if it.ResumeTime > inst.ResumeTime {
			pos = i
			break
		}
	}
	q.items = append(q.items, nil)
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = inst
}

// Empty reports whether the queue holds no instances.
func (q *readyQueue) Empty() bool { return len(q.items) == 0 }

// HeadDue reports whether the queue's head instance is ready to run at
// tic (its ResumeTime <= tic).
func (q *readyQueue) HeadDue(tic uint64) bool {
	return len(q.items) > 0 && q.items[0].ResumeTime <= tic
}

// Dequeue removes and returns the head instance. Callers must check
// Empty/HeadDue first.
func (q *readyQueue) Dequeue() *Instance {
	inst := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return inst
}
