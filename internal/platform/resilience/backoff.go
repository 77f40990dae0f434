package resilience

import "time"

// Backoff computes exponential retry delays with a hard ceiling.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

func NormalizeBackoff(b Backoff) Backoff {
	if b.Base <= 0 {
		b.Base = 2 * time.Second
	}
	if b.Max <= 0 {
		b.Max = time.Minute
	}
	if b.Max < b.Base {
		b.Max = b.Base
	}
	return b
}

// Delay returns the wait before the given retry attempt. Attempt numbering is
// 1-based: attempt 1 waits Base, attempt 2 waits 2*Base, and so on.
func (b Backoff) Delay(attempt int) time.Duration {
	b = NormalizeBackoff(b)
	if attempt < 1 {
		attempt = 1
	}

	delay := b.Base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= b.Max {
			return b.Max
		}
	}
	if delay > b.Max {
		return b.Max
	}
	return delay
}
