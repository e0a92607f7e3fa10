package xfer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// namespace holds the semaphores that can still be found by name.
var namespace = struct {
	mu    sync.Mutex
	names map[string]*Semaphore
}{names: make(map[string]*Semaphore)}

// Semaphore is the binary admission semaphore shared by every worker of
// one listener. Waiters are woken one at a time in arrival order.
type Semaphore struct {
	name string
	w    *semaphore.Weighted
}

// CreateSemaphore registers a new count-1 semaphore under name.
func CreateSemaphore(name string) (*Semaphore, error) {
	namespace.mu.Lock()
	defer namespace.mu.Unlock()

	if _, ok := namespace.names[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrSemaphoreExists, name)
	}
	s := &Semaphore{name: name, w: semaphore.NewWeighted(1)}
	namespace.names[name] = s
	return s, nil
}

// NewAdmissionSemaphore creates a semaphore under a fresh random name.
func NewAdmissionSemaphore() (*Semaphore, error) {
	return CreateSemaphore("/sem-" + uuid.NewString())
}

// OpenSemaphore returns the semaphore registered under name.
func OpenSemaphore(name string) (*Semaphore, error) {
	namespace.mu.Lock()
	defer namespace.mu.Unlock()

	s, ok := namespace.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSemaphoreNotFound, name)
	}
	return s, nil
}

// Unlink removes the name. Handles already held keep working.
func (s *Semaphore) Unlink() {
	namespace.mu.Lock()
	defer namespace.mu.Unlock()

	if cur, ok := namespace.names[s.name]; ok && cur == s {
		delete(namespace.names, s.name)
	}
}

func (s *Semaphore) Name() string {
	return s.name
}

// Acquire blocks until the token is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	return s.w.Acquire(ctx, 1)
}

func (s *Semaphore) TryAcquire() bool {
	return s.w.TryAcquire(1)
}

// Release hands the token to the next waiter. It panics when the token
// is not held.
func (s *Semaphore) Release() {
	s.w.Release(1)
}

// Do runs fn while holding the token and releases it on every return
// path, including a panic in fn.
func (s *Semaphore) Do(ctx context.Context, fn func() error) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	return fn()
}
