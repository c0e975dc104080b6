package libchannel

import (
	"time"

	"go.uber.org/atomic"
)

// Cheap lock-free generator for the poll-order shuffle. Each call advances a
// shared counter by an odd constant and mixes the result (splitmix64), so
// concurrent selects never serialize on a generator lock. Seeded once at
// process start, not per call.
var rngstate = atomic.NewUint64(uint64(time.Now().UnixNano()))

func fastrand() uint32 {
	z := rngstate.Add(0x9e3779b97f4a7c15)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return uint32(z ^ (z >> 31))
}

// fastrandn returns a uniform value in [0, n). n must be nonzero.
func fastrandn(n uint32) uint32 {
	return uint32(uint64(fastrand()) * uint64(n) >> 32)
}
