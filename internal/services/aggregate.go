package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"commondays/internal/domain"
)

// Reduce folds member guest snapshots into an Aggregate. totalGuests is the
// registry size, which may exceed len(guests) when member reads were
// excluded. A guest counts as responded iff its availability is not unset;
// an explicit empty response counts.
func Reduce(guests []*domain.EventGuest, totalGuests int) *domain.Aggregate {
	agg := &domain.Aggregate{
		TotalGuests: totalGuests,
		Heatmap:     make(map[string]int),
	}
	for _, eg := range guests {
		if !eg.Guest.Responded() {
			continue
		}
		agg.RespondedGuests++
		// Availability is a set: a guest contributes at most once per date
		// even if its stored list carries a duplicate.
		seen := make(map[string]struct{}, len(*eg.Guest.Availability))
		for _, date := range *eg.Guest.Availability {
			if _, ok := seen[date]; ok {
				continue
			}
			seen[date] = struct{}{}
			agg.Heatmap[date]++
		}
	}
	return agg
}

type aggregator struct {
	events domain.EventService

	// maxStaleness == 0 recomputes on every read; > 0 serves a cached
	// aggregate refreshed in the background on that period.
	maxStaleness time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	done    chan struct{}
	once    sync.Once
}

type cacheEntry struct {
	mu       sync.Mutex
	agg      *domain.Aggregate
	lastRead time.Time
	running  bool
}

// NewAggregator returns the Aggregator for the configured freshness policy.
//
// With maxStaleness zero every read fans out to all members, strongly
// consistent at O(registry) per read. With a positive maxStaleness each
// event's aggregate is recomputed by a background refresher on that period
// and reads are O(1); a served result is at most maxStaleness old, except
// after a refresh whose fan-out failed entirely, when the refresher backs
// off by doubling up to 8x the period and keeps serving the last good value.
func NewAggregator(events domain.EventService, maxStaleness time.Duration, logger *slog.Logger) domain.Aggregator {
	return &aggregator{
		events:       events,
		maxStaleness: maxStaleness,
		logger:       logger,
		entries:      make(map[string]*cacheEntry),
		done:         make(chan struct{}),
	}
}

func (a *aggregator) Aggregate(ctx context.Context, eventID string) (*domain.Aggregate, error) {
	if a.maxStaleness <= 0 {
		return a.compute(ctx, eventID)
	}

	a.mu.Lock()
	e, ok := a.entries[eventID]
	if !ok {
		e = &cacheEntry{}
		a.entries[eventID] = e
	}
	a.mu.Unlock()

	e.mu.Lock()
	e.lastRead = time.Now()
	if e.running {
		agg := e.agg
		e.mu.Unlock()
		if agg == nil {
			// Another reader is still priming the cache; serve this one
			// with its own fan-out rather than a spurious failure.
			return a.compute(ctx, eventID)
		}
		return agg, nil
	}
	e.running = true
	e.mu.Unlock()

	// First read primes the cache synchronously, then the refresher owns it.
	agg, err := a.compute(ctx, eventID)
	if err != nil {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Lock()
	e.agg = agg
	e.mu.Unlock()
	go a.refresh(eventID, e)
	return agg, nil
}

// compute performs one live fan-out and reduction.
func (a *aggregator) compute(ctx context.Context, eventID string) (*domain.Aggregate, error) {
	event, err := a.events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if len(event.GuestIDs) == 0 {
		return &domain.Aggregate{Heatmap: make(map[string]int)}, nil
	}
	guests, err := a.events.ListGuests(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrAggregateUnavailable) {
			return nil, domain.ErrAggregateUnavailable
		}
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return Reduce(guests, len(event.GuestIDs)), nil
}

// refresh keeps one event's cached aggregate within the staleness bound.
// It stops once the entry goes unread for a while or the event disappears.
func (a *aggregator) refresh(eventID string, e *cacheEntry) {
	const backoffCap = 8
	idleAfter := 10 * a.maxStaleness
	interval := a.maxStaleness
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-timer.C:
		}

		e.mu.Lock()
		idle := time.Since(e.lastRead) > idleAfter
		e.mu.Unlock()
		if idle {
			a.evict(eventID, e)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), a.maxStaleness)
		agg, err := a.compute(ctx, eventID)
		cancel()
		switch {
		case err == nil:
			e.mu.Lock()
			e.agg = agg
			e.mu.Unlock()
			interval = a.maxStaleness
		case errors.Is(err, domain.ErrNotFound):
			a.evict(eventID, e)
			return
		default:
			// Keep serving the last good value and retry slower.
			if interval < backoffCap*a.maxStaleness {
				interval *= 2
			}
			a.logger.Warn("aggregate refresh failed", "event_id", eventID, "retry_in", interval, "err", err)
		}
		timer.Reset(interval)
	}
}

func (a *aggregator) evict(eventID string, e *cacheEntry) {
	a.mu.Lock()
	delete(a.entries, eventID)
	a.mu.Unlock()
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Close stops all background refreshers.
func (a *aggregator) Close() {
	a.once.Do(func() { close(a.done) })
}
