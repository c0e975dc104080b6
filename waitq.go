package libchannel

import (
	"sync"

	"go.uber.org/atomic"
)

// noneCd is the sentinel claim value of a waiter that no channel has
// completed an operation for yet.
const noneCd = -1

// waiter is the shared rendezvous object a blocked select parks on. One
// waiter is linked into the wait queue of every channel the select covers,
// so its lifetime is reference counted: one hold for the parked caller plus
// one per queue it is enqueued on. It goes back to the pool only at ref 0.
//
// cd is the one-shot claim field. It moves exactly once, from noneCd to the
// descriptor of the channel whose counterpart operation won the race, via
// compare-and-swap. Everything else about the wakeup (shift reservation,
// signal) happens only on the winning path.
type waiter struct {
	mu   sync.Mutex
	cond *sync.Cond

	// wid identifies the parked caller in a channel's shift slot.
	// Assigned at park time from a monotonic counter and never reused,
	// so a recycled waiter can never impersonate a live reservation.
	wid int64

	ref atomic.Int32
	cd  atomic.Int32
}

func newWaiter() *waiter {
	w := new(waiter)
	w.cond = sync.NewCond(&w.mu)
	w.cd.Store(noneCd)
	return w
}

// decref drops one hold on w and releases it to the pool when the last
// hold goes away. Safe to call without any channel lock held.
func (w *waiter) decref() {
	if w.ref.Dec() == 0 {
		releaseWaiter(w)
	}
}

// wait blocks the caller until some channel claims w, then returns the
// descriptor that was committed into the claim field.
func (w *waiter) wait() int {
	w.mu.Lock()
	for w.cd.Load() == noneCd {
		w.cond.Wait()
	}
	cd := int(w.cd.Load())
	w.mu.Unlock()
	return cd
}

// waitqnode links one waiter into one channel's queue. The node belongs to
// the queue; the waiter it points at is shared across queues.
type waitqnode struct {
	w    *waiter
	next *waitqnode
	prev *waitqnode
}

// waitq is a FIFO of parked waiters. The enclosing channel's lock protects
// it; there is no locking here.
type waitq struct {
	first *waitqnode
	last  *waitqnode
	len   int
}

func (q *waitq) enqueue(w *waiter) {
	n := &waitqnode{w: w}
	x := q.last
	if x == nil {
		q.first = n
	} else {
		n.prev = x
		x.next = n
	}
	q.last = n
	q.len++
}

func (q *waitq) dequeue() *waiter {
	n := q.first
	if n == nil {
		return nil
	}
	q.first = n.next
	if q.first != nil {
		q.first.prev = nil
	} else {
		q.last = nil
	}
	n.next = nil
	q.len--
	return n.w
}
