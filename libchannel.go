// Package libchannel provides CSP-style buffered channels with multi-way
// non-deterministic selection across OS threads.
//
// A channel is a bounded FIFO of tagged values, named by a small positive
// descriptor. Callers send, receive, or wait on many operations at once with
// Select, which completes exactly one of them; when nothing is ready a
// blocking caller parks on every involved channel and resumes on the first
// counterpart operation.
package libchannel

import "go.uber.org/zap"

const debugChan = false

// logger receives debug events when the debug consts are on. Nop by default.
var logger = zap.NewNop()

// SetLogger installs l for the package's debug output. Passing nil restores
// the nop logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Make creates a channel with the given buffer capacity (at least 1) and
// returns its descriptor, or 0 when no descriptor is available.
func Make(size int) int {
	if size < 1 {
		return 0
	}
	return makeChan(size)
}

// Close tears down the channel named by cd if both of its wait queues are
// empty and no wakeup is in flight. A queue node left behind by a select that
// completed on another channel still counts until a later operation on this
// channel walks past it. Buffered values do not prevent a close; they are
// discarded. Returns 0 on success, -1 otherwise.
func Close(cd int) int {
	return closeChan(cd)
}

// Send delivers *v into the channel, blocking while the buffer is full.
// Returns cd on success or -cd for an unknown descriptor.
func Send(cd int, v *Value) int {
	return Select([]Op{{Cd: cd, Kind: OpSend, Val: v}}, true)
}

// Recv takes the oldest value out of the channel into *v, blocking while the
// buffer is empty. Returns cd on success or -cd for an unknown descriptor.
func Recv(cd int, v *Value) int {
	return Select([]Op{{Cd: cd, Kind: OpRecv, Val: v}}, true)
}

// SendNB is Send with caller-controlled blocking: with block false it
// returns 0 instead of waiting on a full buffer.
func SendNB(cd int, v *Value, block bool) int {
	return Select([]Op{{Cd: cd, Kind: OpSend, Val: v}}, block)
}

// RecvNB is Recv with caller-controlled blocking: with block false it
// returns 0 instead of waiting on an empty buffer.
func RecvNB(cd int, v *Value, block bool) int {
	return Select([]Op{{Cd: cd, Kind: OpRecv, Val: v}}, block)
}

// Cap returns the buffer capacity of the channel, or 0 for an unknown
// descriptor.
func Cap(cd int) int {
	c := lookup(cd)
	if c == nil {
		return 0
	}
	c.lock.Lock()
	n := c.dataqsiz
	c.lock.Unlock()
	return n
}

// Len returns a snapshot of how many values the channel currently buffers,
// or 0 for an unknown descriptor. The answer can be stale by the time the
// caller looks at it.
func Len(cd int) int {
	c := lookup(cd)
	if c == nil {
		return 0
	}
	c.lock.Lock()
	n := c.qcount
	c.lock.Unlock()
	return n
}
