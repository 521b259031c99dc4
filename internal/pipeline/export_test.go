package pipeline

import "time"

// SetBackoff shortens the retry delays for tests.
func (p *Pipeline) SetBackoff(initial, maxBackoff time.Duration) {
	p.initialBackoff = initial
	p.maxBackoff = maxBackoff
}
