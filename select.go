package libchannel

import (
	"sort"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// This file contains the multi-way selection engine. Single-channel send and
// receive are one-op selects; everything funnels through selectgo.

const debugSelect = false

// OpKind says which direction an Op moves data.
type OpKind int32

const (
	OpSend OpKind = iota
	OpRecv
)

// Op is one candidate operation of a select set: a descriptor, a direction,
// and the value to send or the slot to receive into.
type Op struct {
	Cd   int
	Kind OpKind
	Val  *Value
}

// Select atomically attempts the operations in ops and completes at most one
// of them. It returns the descriptor of the completed operation, 0 when ops
// is empty or nothing was ready and block is false, or a negated descriptor
// when that descriptor does not name a live channel.
//
// When block is true and no operation is ready, the caller parks on every
// channel in the set and resumes once a counterpart operation on one of them
// completes; the choice among simultaneously ready operations is uniformly
// random.
func Select(ops []Op, block bool) int {
	return selectgo(ops, block, 0)
}

// park identities handed to waiters; monotonic, never reused.
var nextWid atomic.Int64

// selectgo runs one attempt of the select set. wid is the caller's park
// identity when re-trying after a wakeup, 0 otherwise.
func selectgo(ops []Op, block bool, wid int64) int {
	n := len(ops)
	if n == 0 {
		return 0
	}

	// Resolve every descriptor before any channel lock is taken. The table
	// mutex and the channel mutexes are never held together here; only
	// close holds both, and it takes them in table-then-channel order.
	chans := make([]*hchan, n)
	for i := range ops {
		c := lookup(ops[i].Cd)
		if c == nil {
			return -ops[i].Cd
		}
		chans[i] = c
	}

	// Generate the permuted poll order. This shuffle is the only fairness
	// mechanism: among simultaneously ready operations each one wins with
	// equal probability.
	pollorder := make([]int, n)
	for i := range pollorder {
		pollorder[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(fastrandn(uint32(i + 1)))
		pollorder[i], pollorder[j] = pollorder[j], pollorder[i]
	}

	// Sort by descriptor to get the locking order. Every select locks its
	// channels in ascending descriptor order, so no two selects can chase
	// each other's locks in a cycle.
	lockorder := make([]int, n)
	copy(lockorder, pollorder)
	sort.Slice(lockorder, func(i, j int) bool {
		return ops[lockorder[i]].Cd < ops[lockorder[j]].Cd
	})

	sellock(chans, lockorder)

	// pass 1 - try each operation in poll order
	for _, i := range pollorder {
		op := &ops[i]
		c := chans[i]
		var ok bool
		if op.Kind == OpSend {
			ok = c.trysend(op.Val, wid)
		} else {
			ok = c.tryrecv(op.Val, wid)
		}
		if ok {
			c.wakeup(op.Kind, op.Cd)
			// A wakeup for this direction may have stopped at a shift slot
			// that was taken at the time. If cells are still ready for this
			// direction, hand one to the next waiter parked on it as well.
			if op.Kind == OpRecv && !c.empty() {
				c.wakeup(OpSend, op.Cd)
			} else if op.Kind == OpSend && !c.full() {
				c.wakeup(OpRecv, op.Cd)
			}
			selunlock(chans, lockorder)
			return op.Cd
		}
	}

	if !block {
		selunlock(chans, lockorder)
		return 0
	}

	// pass 2 - enqueue on all channels and park.
	// The waiter is referenced once by this caller and once per queue it
	// sits on. Whichever channel's counterpart claims it first commits its
	// descriptor into w.cd; nodes left on the other queues drain lazily as
	// later operations on those channels walk past them.
	w := acquireWaiter()
	w.wid = nextWid.Inc()
	w.ref.Inc()
	for i := range ops {
		w.ref.Inc()
		if ops[i].Kind == OpSend {
			chans[i].sendq.enqueue(w)
		} else {
			chans[i].recvq.enqueue(w)
		}
	}
	selunlock(chans, lockorder)

	if debugSelect {
		logger.Debug("select: park", zap.Int64("wid", w.wid), zap.Int("nops", n))
	}

	cd := w.wait()
	pwid := w.wid
	w.decref()

	if debugSelect {
		logger.Debug("select: wake", zap.Int64("wid", pwid), zap.Int("cd", cd))
	}

	// Retry just the winning operation. The waker reserved the freshly
	// available cell for our identity, so this cannot miss. A set may name
	// the same channel in both directions; the shift slot that holds our
	// identity tells which direction was woken.
	for i := range ops {
		if ops[i].Cd != cd {
			continue
		}
		c := chans[i]
		c.lock.Lock()
		reserved := c.recvShift == pwid
		if ops[i].Kind == OpSend {
			reserved = c.sendShift == pwid
		}
		c.lock.Unlock()
		if reserved {
			return selectgo(ops[i:i+1], true, pwid)
		}
	}
	panic("libchannel: selectgo: bad wakeup")
}

// sellock locks the channels of the set in lock order, once per distinct
// channel.
func sellock(chans []*hchan, lockorder []int) {
	var lastc *hchan
	for _, o := range lockorder {
		c := chans[o]
		if c != lastc {
			lastc = c
			c.lock.Lock()
		}
	}
}

func selunlock(chans []*hchan, lockorder []int) {
	for i := len(lockorder) - 1; i >= 0; i-- {
		c := chans[lockorder[i]]
		if i > 0 && c == chans[lockorder[i-1]] {
			continue // will unlock it on the next iteration
		}
		c.lock.Unlock()
	}
}

// wakeup delivers a completion opportunity to at most one waiter parked on
// the direction opposite to the operation that just completed. Called with
// c.lock held.
//
// Each dequeued waiter's claim field is CASed from the sentinel to cd. The
// winner gets the shift reservation and a signal; a waiter that some other
// channel already claimed is a stale node, and walking past it drops the
// reference this queue was holding.
func (c *hchan) wakeup(completed OpKind, cd int) {
	for {
		var w *waiter
		if completed == OpSend {
			if c.recvShift != 0 {
				return // a woken receiver is already on its way
			}
			w = c.recvq.dequeue()
		} else {
			if c.sendShift != 0 {
				return
			}
			w = c.sendq.dequeue()
		}
		if w == nil {
			return
		}
		if w.cd.CAS(noneCd, int32(cd)) {
			if completed == OpSend {
				c.recvShift = w.wid
			} else {
				c.sendShift = w.wid
			}
			w.mu.Lock()
			w.cond.Signal()
			w.mu.Unlock()
			w.decref()
			return
		}
		w.decref()
	}
}
