package libchannel

import (
	"sync"

	"go.uber.org/zap"
)

// maxChannels bounds the descriptor table. Descriptor 0 is the reserved
// sentinel; live channels get 1..maxChannels-1, assigned monotonically and
// never reused.
const maxChannels = 100

var chantab = struct {
	mu    sync.Mutex
	chans [maxChannels]*hchan
	next  int
}{next: 1}

// Init is the process-wide init hook of the descriptor surface. The
// singletons behind it (descriptor table, waiter pool) are usable from
// package load, so Init only reports readiness. Idempotent. Returns 0.
func Init() int {
	return 0
}

// makeChan allocates a channel of the given capacity and installs it in the
// table. Returns its descriptor, or 0 when the table is exhausted.
func makeChan(size int) int {
	chantab.mu.Lock()
	if chantab.next == maxChannels {
		chantab.mu.Unlock()
		return 0
	}
	cd := chantab.next
	chantab.next++
	chantab.chans[cd] = newChan(size)
	chantab.mu.Unlock()
	if debugChan {
		logger.Debug("makeChan", zap.Int("cd", cd), zap.Int("cap", size))
	}
	return cd
}

// lookup resolves a descriptor to its channel, or nil. Never called with a
// channel lock held; the table mutex guards only the pointer read.
func lookup(cd int) *hchan {
	if cd <= 0 || cd >= maxChannels {
		return nil
	}
	chantab.mu.Lock()
	c := chantab.chans[cd]
	chantab.mu.Unlock()
	return c
}

// closeChan detaches cd from the table if the channel is closeable: both
// wait queues empty (stale nodes included) and no pending shift reservation
// in either direction.
// Buffered values do not block a close; they are discarded with the
// channel. Returns 0 on success, -1 for an unknown descriptor or a channel
// that still has participants.
func closeChan(cd int) int {
	if cd <= 0 || cd >= maxChannels {
		return -1
	}
	ret := -1
	chantab.mu.Lock()
	c := chantab.chans[cd]
	if c != nil {
		c.lock.Lock()
		if c.isCloseable() {
			chantab.chans[cd] = nil
			ret = 0
		}
		c.lock.Unlock()
	}
	chantab.mu.Unlock()
	if debugChan {
		logger.Debug("closeChan", zap.Int("cd", cd), zap.Int("ret", ret))
	}
	return ret
}
