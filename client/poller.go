package client

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is the poll cadence used when none is configured.
const DefaultPollInterval = 5 * time.Second

// Poller fetches a snapshot on a fixed interval and hands the result to an
// apply callback. Fetches are not cancelled when a new tick fires, so
// responses may arrive out of order; the last response received wins. After
// a local write the caller invokes Bump, which restarts the interval and
// drops every response from a fetch that started before the bump, so a stale
// poll cannot overwrite a just-submitted edit.
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context) (any, error)
	apply    func(v any)

	mu     sync.Mutex
	gen    uint64
	bump   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a stopped Poller. interval <= 0 selects
// DefaultPollInterval. Fetch errors are dropped silently; polling is a
// background refresh and its failures are not surfaced to the user.
func NewPoller(interval time.Duration, fetch func(ctx context.Context) (any, error), apply func(v any)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		bump:     make(chan struct{}, 1),
	}
}

// Start begins polling. The first fetch fires immediately. Start is not
// safe to call twice without an intervening Stop.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx)
}

// Stop cancels in-flight fetches and waits for the poll loop to exit.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
}

// Bump restarts the poll interval and invalidates every fetch already in
// flight. Call it after a local write has been acknowledged.
func (p *Poller) Bump() {
	p.mu.Lock()
	p.gen++
	p.mu.Unlock()
	select {
	case p.bump <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.bump:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.interval)
		case <-timer.C:
			p.poll(ctx)
			timer.Reset(p.interval)
		}
	}
}

// GuestSnapshot is one poll result for a guest session: the guest's own
// record plus the aggregate heatmap of its event.
type GuestSnapshot struct {
	Guest     *Guest
	Aggregate *Aggregate
}

// NewGuestPoller polls the guest's own record and the event aggregate
// together through the guest namespace. apply receives each complete
// snapshot; partial failures drop the whole poll.
func NewGuestPoller(c *Client, guestID string, interval time.Duration, apply func(*GuestSnapshot)) *Poller {
	fetch := func(ctx context.Context) (any, error) {
		guest, err := c.GetGuest(ctx, guestID)
		if err != nil {
			return nil, err
		}
		agg, err := c.GetGuestAggregate(ctx, guestID)
		if err != nil {
			return nil, err
		}
		return &GuestSnapshot{Guest: guest, Aggregate: agg}, nil
	}
	return NewPoller(interval, fetch, func(v any) {
		apply(v.(*GuestSnapshot))
	})
}

func (p *Poller) poll(ctx context.Context) {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()
	go func() {
		v, err := p.fetch(ctx)
		if err != nil {
			return
		}
		p.mu.Lock()
		stale := gen != p.gen
		p.mu.Unlock()
		if stale {
			return
		}
		p.apply(v)
	}()
}
