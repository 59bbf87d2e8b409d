// Package resilience provides the fault-tolerance primitives the pipeline
// engine is built on.
//
// This package includes:
//   - Retry: retries failed operations with exponential backoff and jitter
//   - Slots: a counting-semaphore admission controller that bounds how many
//     documents may be in flight at once
//
// Both primitives are context-aware: cancellation aborts a backoff wait or
// a slot acquisition immediately.
//
//	slots := resilience.NewSlots(resilience.SlotsConfig{Capacity: 4})
//	if err := slots.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer slots.Release()
package resilience
