package replay

import "sync/atomic"

// PendingTrim is the single slot holding the duration of the next trim.
// Zero means no trim is pending. The zero value is ready to use.
type PendingTrim struct {
	seconds atomic.Int64
}

// Arm stores seconds as the pending duration, replacing any earlier one
func (p *PendingTrim) Arm(seconds int) {
	p.seconds.Store(int64(seconds))
}

// Consume reads and clears the pending duration in one atomic step
func (p *PendingTrim) Consume() int {
	return int(p.seconds.Swap(0))
}

// Disarm clears the slot only if it still holds seconds
func (p *PendingTrim) Disarm(seconds int) bool {
	return p.seconds.CompareAndSwap(int64(seconds), 0)
}

// Peek returns the pending duration without clearing it
func (p *PendingTrim) Peek() int {
	return int(p.seconds.Load())
}
