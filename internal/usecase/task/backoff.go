package task

import "time"

// Default polling delays.
const (
	DefaultBaseDelay = 100 * time.Millisecond
	DefaultMaxDelay  = 5 * time.Second
)

// Backoff computes the delay between status polls: Base*n², capped at Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff returns the 100ms / 5s schedule.
func DefaultBackoff() Backoff {
	return Backoff{Base: DefaultBaseDelay, Max: DefaultMaxDelay}
}

// Delay returns the pause after the n-th unsuccessful poll (n starts at 1).
func (b Backoff) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	// Past this point n² alone exceeds any sane Max/Base ratio; also guards overflow.
	if n > 1<<15 {
		return b.Max
	}
	d := b.Base * time.Duration(n*n)
	if d > b.Max || d < 0 {
		return b.Max
	}
	return d
}
