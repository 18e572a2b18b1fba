package breaker

import (
	"errors"
	"sync"
	"time"
)

type state uint8

const (
	closed state = iota + 1
	open
	halfOpen
)

// ErrOpen is returned while the breaker refuses calls.
var ErrOpen = errors.New("circuit breaker is open")

type Breaker interface {
	Call(fn func() error) error
	Reset()
}

type breaker struct {
	mu sync.Mutex

	state           state
	lastAttemptedAt time.Time

	// sliding window of recent call outcomes; true marks a failure
	window []bool
	pos    int

	// failure share of the window that trips the breaker
	threshold float64
	// cool-down before a trial call is allowed
	timeout time.Duration
	// consecutive successes in half-open needed to close again
	recovery int
	streak   int
}

func New(windowSize int, timeout time.Duration, threshold float64, recovery int) Breaker {
	return &breaker{
		state:     closed,
		window:    make([]bool, windowSize),
		threshold: threshold,
		timeout:   timeout,
		recovery:  recovery,
	}
}

func (b *breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == open {
		if time.Since(b.lastAttemptedAt) <= b.timeout {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = halfOpen
		b.streak = 0
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.window[b.pos] = err != nil
	b.pos = (b.pos + 1) % len(b.window)

	if b.state == halfOpen {
		if err != nil {
			b.state = open
			b.streak = 0
			b.lastAttemptedAt = time.Now()
		} else if b.streak++; b.streak > b.recovery {
			b.reset()
		}
		return err
	}

	fails := 0
	for _, failed := range b.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(b.window)) >= b.threshold {
		b.state = open
		b.streak = 0
		b.lastAttemptedAt = time.Now()
	}

	return err
}

func (b *breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *breaker) reset() {
	for i := range b.window {
		b.window[i] = false
	}
	b.pos = 0
	b.streak = 0
	b.state = closed
}
