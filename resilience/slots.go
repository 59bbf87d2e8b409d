package resilience

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// SlotsConfig configures an admission controller.
type SlotsConfig struct {
	// Name identifies this controller in logs.
	Name string
	// Capacity is the number of concurrent slots. Must be positive.
	Capacity int
	// OnAcquire is called after a slot is acquired.
	OnAcquire func(name string)
	// OnRelease is called after a slot is released.
	OnRelease func(name string)
}

// Slots is a counting-semaphore admission controller. Each admitted item
// occupies one slot from Acquire until the holder calls Release; a holder
// must release its slot on failure exactly as on success, otherwise the
// pool starves.
type Slots struct {
	config SlotsConfig
	sem    *semaphore.Weighted
	inUse  atomic.Int64
}

// NewSlots creates an admission controller with the configured capacity.
func NewSlots(config SlotsConfig) (*Slots, error) {
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("resilience: slots capacity must be positive (got %d)", config.Capacity)
	}
	return &Slots{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.Capacity)),
	}, nil
}

// Acquire blocks until a slot is free or the context is cancelled.
func (s *Slots) Acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	s.inUse.Add(1)
	if s.config.OnAcquire != nil {
		s.config.OnAcquire(s.config.Name)
	}
	return nil
}

// TryAcquire acquires a slot without blocking. Returns false if none is free.
func (s *Slots) TryAcquire() bool {
	if !s.sem.TryAcquire(1) {
		return false
	}
	s.inUse.Add(1)
	if s.config.OnAcquire != nil {
		s.config.OnAcquire(s.config.Name)
	}
	return true
}

// Release frees a previously acquired slot.
func (s *Slots) Release() {
	s.inUse.Add(-1)
	s.sem.Release(1)
	if s.config.OnRelease != nil {
		s.config.OnRelease(s.config.Name)
	}
}

// Execute runs fn while holding a slot. The slot is released when fn
// returns, whether it succeeded or failed.
func (s *Slots) Execute(ctx context.Context, fn func() error) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	return fn()
}

// InUse returns the number of slots currently held.
func (s *Slots) InUse() int {
	return int(s.inUse.Load())
}

// Capacity returns the configured slot count.
func (s *Slots) Capacity() int {
	return s.config.Capacity
}
