package services

import (
	"context"
	"sync"
	"time"

	"commondays/internal/domain"
)

// mockGuestRepo is an in-memory GuestRepository. failGets injects read
// failures for specific IDs to exercise fan-out exclusion. Safe for
// concurrent use because fan-out reads run in parallel.
type mockGuestRepo struct {
	mu       sync.Mutex
	guests   map[string]*domain.Guest
	failGets map[string]error
	slowGets map[string]time.Duration
	err      error
}

func newMockGuestRepo() *mockGuestRepo {
	return &mockGuestRepo{
		guests:   make(map[string]*domain.Guest),
		failGets: make(map[string]error),
		slowGets: make(map[string]time.Duration),
	}
}

func (m *mockGuestRepo) Create(ctx context.Context, guest *domain.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *guest
	m.guests[guest.ID] = &cp
	return nil
}

func (m *mockGuestRepo) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	m.mu.Lock()
	fail := m.failGets[id]
	delay := m.slowGets[id]
	m.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *mockGuestRepo) Update(ctx context.Context, guest *domain.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.guests[guest.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *guest
	m.guests[guest.ID] = &cp
	return nil
}

func (m *mockGuestRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.guests[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.guests, id)
	return nil
}

// mockEventRepo is an in-memory EventRepository.
type mockEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	err    error
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*domain.Event)}
}

func (m *mockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *event
	cp.GuestIDs = append([]string(nil), event.GuestIDs...)
	m.events[event.ID] = &cp
	return nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	cp.GuestIDs = append([]string(nil), e.GuestIDs...)
	return &cp, nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *event
	cp.GuestIDs = append([]string(nil), event.GuestIDs...)
	m.events[event.ID] = &cp
	return nil
}
