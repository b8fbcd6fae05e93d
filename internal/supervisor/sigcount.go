package supervisor

import "sync/atomic"

// StuckThreshold is the USR1 delivery count at which the supervisor gives
// up on a graceful shutdown and exits immediately.
const StuckThreshold = 10

// SigCount tracks repeated delivery of one signal across the tick loop and
// the shutdown that follows it, using a single increment-and-compare
// operation.
type SigCount struct {
	n uint32
}

// Incr records one delivery and reports whether the threshold has now been
// reached: the StuckThreshold-th delivery trips it.
func (s *SigCount) Incr() bool {
	return atomic.AddUint32(&s.n, 1) >= StuckThreshold
}
