package core

// write_limiter.go serializes mutations of the sales collection.
//
// Every add, update, delete and import rewrites the whole collection blob,
// so two writers running at once would lose one another's changes. The
// limiter is a one-slot semaphore: a second writer waits up to maxWait for
// the slot, then fails with ErrBusy.
//
// WaitForDrain supports graceful shutdown by blocking until the active
// write finishes.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusy is returned when the write slot stays occupied past the wait
// timeout. Clients should retry after a short delay.
var ErrBusy = errors.New("another write is in progress, please try again later")

// DefaultMaxWaitTime is how long to wait for the write slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// WriteLimiter controls access to the single write slot.
type WriteLimiter struct {
	slot    chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewWriteLimiter creates a limiter whose waiters give up after maxWait.
func NewWriteLimiter(maxWait time.Duration) *WriteLimiter {
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &WriteLimiter{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the write slot.
// Returns nil on success, ErrBusy if the wait times out, or ctx.Err().
// The caller MUST call Release() when the write completes (use defer).
func (l *WriteLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slot <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Distinguish caller cancellation from our own timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
}

// Release frees the write slot.
// Must be called exactly once for each successful Acquire.
func (l *WriteLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.slot
}

// Busy reports whether a write currently holds the slot.
func (l *WriteLimiter) Busy() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active > 0
}

// WaitForDrain blocks until no write is active or ctx is cancelled.
func (l *WriteLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !l.Busy() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
