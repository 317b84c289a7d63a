package client

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a pending availability edit is
// flushed to the server.
const DefaultDebounce = 300 * time.Millisecond

// AvailabilityWriter owns the local availability set for one guest. Edits
// apply optimistically, coalesce while the user keeps clicking, and flush as
// a single whole-set replacement after a quiet period. A failed flush rolls
// the local set back to the last server-acknowledged snapshot and surfaces
// the error; a successful flush bumps the poller so a stale poll cannot undo
// the write.
type AvailabilityWriter struct {
	client   *Client
	guestID  string
	quiet    time.Duration
	poller   *Poller
	onChange func(dates []string)
	onError  func(err error)

	mu      sync.Mutex
	current []string
	synced  []string
	dirty   bool
	timer   *time.Timer
	inFlush sync.WaitGroup
}

// WriterOption configures an AvailabilityWriter.
type WriterOption func(*AvailabilityWriter)

// WithDebounce overrides the quiet period.
func WithDebounce(d time.Duration) WriterOption {
	return func(w *AvailabilityWriter) { w.quiet = d }
}

// WithPoller registers the poller to bump after each acknowledged flush.
func WithPoller(p *Poller) WriterOption {
	return func(w *AvailabilityWriter) { w.poller = p }
}

// WithOnChange registers a callback invoked with the new local set on every
// optimistic apply and on rollback. The slice must not be mutated.
func WithOnChange(fn func(dates []string)) WriterOption {
	return func(w *AvailabilityWriter) { w.onChange = fn }
}

// WithOnError registers a callback invoked when a flush fails.
func WithOnError(fn func(err error)) WriterOption {
	return func(w *AvailabilityWriter) { w.onError = fn }
}

// NewAvailabilityWriter creates a writer seeded with the guest's current
// server-side availability. initial may be nil when the guest has not
// responded yet.
func NewAvailabilityWriter(c *Client, guestID string, initial []string, opts ...WriterOption) *AvailabilityWriter {
	w := &AvailabilityWriter{
		client:  c,
		guestID: guestID,
		quiet:   DefaultDebounce,
		current: append([]string(nil), initial...),
		synced:  append([]string(nil), initial...),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dates returns a copy of the current local availability set.
func (w *AvailabilityWriter) Dates() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.current...)
}

// Toggle flips one date in or out of the local set and schedules a flush.
func (w *AvailabilityWriter) Toggle(ctx context.Context, date string) {
	w.mu.Lock()
	found := false
	next := make([]string, 0, len(w.current)+1)
	for _, d := range w.current {
		if d == date {
			found = true
			continue
		}
		next = append(next, d)
	}
	if !found {
		next = append(next, date)
	}
	w.setLocked(ctx, next)
	w.mu.Unlock()
	w.notify()
}

// Set replaces the local set wholesale and schedules a flush. An empty set
// is a valid "no days work" response.
func (w *AvailabilityWriter) Set(ctx context.Context, dates []string) {
	w.mu.Lock()
	w.setLocked(ctx, append([]string(nil), dates...))
	w.mu.Unlock()
	w.notify()
}

// Flush submits any pending edit immediately and waits for the result.
func (w *AvailabilityWriter) Flush(ctx context.Context) {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.flushLocked(ctx)
	w.mu.Unlock()
	w.inFlush.Wait()
}

func (w *AvailabilityWriter) setLocked(ctx context.Context, next []string) {
	w.current = next
	w.dirty = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.quiet, func() {
		w.mu.Lock()
		w.timer = nil
		w.flushLocked(ctx)
		w.mu.Unlock()
	})
}

// flushLocked snapshots the current set and writes it in the background.
// It no-ops when nothing changed since the last flush, so the quiet timer
// and an explicit Flush cannot double-submit the same edit.
func (w *AvailabilityWriter) flushLocked(ctx context.Context) {
	if !w.dirty {
		return
	}
	w.dirty = false
	snapshot := append([]string(nil), w.current...)
	w.inFlush.Add(1)
	go func() {
		defer w.inFlush.Done()
		_, err := w.client.UpdateGuestAvailability(ctx, w.guestID, snapshot)
		if err != nil {
			w.mu.Lock()
			w.current = append([]string(nil), w.synced...)
			w.mu.Unlock()
			w.notify()
			if w.onError != nil {
				w.onError(err)
			}
			return
		}
		w.mu.Lock()
		w.synced = snapshot
		w.mu.Unlock()
		if w.poller != nil {
			w.poller.Bump()
		}
	}()
}

func (w *AvailabilityWriter) notify() {
	if w.onChange == nil {
		return
	}
	w.onChange(w.Dates())
}
