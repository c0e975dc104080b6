package libchannel

import "sync"

// This file contains the channel object itself.
//
// Invariants, holding whenever c.lock is held and no operation is mid-flight:
//  At most one of c.sendq.len > 0 and !c.full() is true: a sender only parks
//  against a full buffer, and whoever empties a cell wakes one sender before
//  releasing the lock.
//  Symmetrically, at most one of c.recvq.len > 0 and !c.empty() is true.
//  A shift slot is nonzero only between a wakeup and the designated waiter's
//  retry of its operation.

type hchan struct {
	qcount   int     // total data in the queue
	dataqsiz int     // size of the circular queue
	buf      []Value // dataqsiz elements
	sendx    int     // send index
	recvx    int     // receive index

	recvq waitq // parked receivers
	sendq waitq // parked senders

	// Shift slots reserve the cell a wakeup just made available for the
	// specific waiter being woken. While sendShift is nonzero, only the
	// waiter carrying that identity may write; a newcomer that grabs the
	// lock first is turned away so the reserved cell cannot be stolen
	// out from under the parked sender. recvShift mirrors this for reads.
	sendShift int64
	recvShift int64

	// lock protects every field above, as well as the waiters linked
	// into the two queues.
	lock sync.Mutex
}

func newChan(size int) *hchan {
	return &hchan{
		dataqsiz: size,
		buf:      make([]Value, size),
	}
}

func (c *hchan) full() bool  { return c.qcount == c.dataqsiz }
func (c *hchan) empty() bool { return c.qcount == 0 }

// bufput appends v to the circular buffer. Reports false on a full buffer.
func (c *hchan) bufput(v Value) bool {
	if c.full() {
		return false
	}
	c.buf[c.sendx] = v
	c.sendx++
	if c.sendx == c.dataqsiz {
		c.sendx = 0
	}
	c.qcount++
	return true
}

// bufget pops the oldest element into *v. Reports false on an empty buffer.
func (c *hchan) bufget(v *Value) bool {
	if c.empty() {
		return false
	}
	*v = c.buf[c.recvx]
	c.buf[c.recvx] = Value{} // allow GC of pointer payloads
	c.recvx++
	if c.recvx == c.dataqsiz {
		c.recvx = 0
	}
	c.qcount--
	return true
}

// trysend attempts one buffered send under c.lock. wid is the caller's park
// identity, or 0 for a caller that never parked. The send is permitted only
// if no reservation is pending or the reservation names this caller; a
// successful reserved send consumes the reservation.
func (c *hchan) trysend(v *Value, wid int64) bool {
	if c.sendShift != 0 && c.sendShift != wid {
		return false
	}
	if !c.bufput(*v) {
		return false
	}
	if c.sendShift != 0 {
		c.sendShift = 0
	}
	return true
}

// tryrecv is the receive mirror of trysend, gated on recvShift.
func (c *hchan) tryrecv(v *Value, wid int64) bool {
	if c.recvShift != 0 && c.recvShift != wid {
		return false
	}
	if !c.bufget(v) {
		return false
	}
	if c.recvShift != 0 {
		c.recvShift = 0
	}
	return true
}

// isCloseable reports whether the channel can be torn down: both wait
// queues empty (a stale node of a select that completed elsewhere counts)
// and no reservation pending. Buffered values are not
// a blocker; closing discards them. Caller holds c.lock.
func (c *hchan) isCloseable() bool {
	return c.sendq.len == 0 && c.recvq.len == 0 && c.sendShift == 0 && c.recvShift == 0
}
