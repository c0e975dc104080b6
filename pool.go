package libchannel

import (
	"sync"

	"github.com/gammazero/deque"
)

// waiterPoolMax bounds how many idle waiters the pool keeps around.
// Releases beyond the bound just drop the waiter for the collector.
const waiterPoolMax = 64

// Pool of idle waiters. The mutex is leaf level: nothing else is ever
// acquired while it is held.
var waiterPool struct {
	mu   sync.Mutex
	free deque.Deque[*waiter]
}

// acquireWaiter returns a waiter with ref 0 and an unclaimed cd. The caller
// owns it until the refs it hands out drain back to zero.
func acquireWaiter() *waiter {
	waiterPool.mu.Lock()
	if waiterPool.free.Len() > 0 {
		w := waiterPool.free.PopFront()
		waiterPool.mu.Unlock()
		return w
	}
	waiterPool.mu.Unlock()
	return newWaiter()
}

// releaseWaiter recycles w, which must have ref 0. The claim field and the
// park identity are reset; the cond and its mutex survive reuse.
func releaseWaiter(w *waiter) {
	if w.ref.Load() != 0 {
		panic("libchannel: releaseWaiter of referenced waiter")
	}
	w.cd.Store(noneCd)
	w.wid = 0
	waiterPool.mu.Lock()
	if waiterPool.free.Len() < waiterPoolMax {
		waiterPool.free.PushBack(w)
	}
	waiterPool.mu.Unlock()
}
