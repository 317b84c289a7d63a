package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"commondays/internal/actor"
	"commondays/internal/domain"
	"commondays/internal/identity"
)

type eventService struct {
	eventRepo      domain.EventRepository
	guestService   domain.GuestService
	keys           *actor.Keys
	publicBaseURL  string
	fanoutTimeout  time.Duration
	contextTimeout time.Duration
}

// NewEventService creates an EventService. publicBaseURL is the prefix of
// generated guest links; fanoutTimeout bounds each per-guest read during
// ListGuests.
func NewEventService(
	eventRepo domain.EventRepository,
	guestService domain.GuestService,
	keys *actor.Keys,
	publicBaseURL string,
	fanoutTimeout time.Duration,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		guestService:   guestService,
		keys:           keys,
		publicBaseURL:  strings.TrimSuffix(publicBaseURL, "/"),
		fanoutTimeout:  fanoutTimeout,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, name, description, hostName string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	eventID, err := identity.NewEventID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	hostGuestID, err := identity.NewGuestID()
	if err != nil {
		return nil, fmt.Errorf("generate host guest id: %w", err)
	}

	now := time.Now()
	event := domain.NewEvent(eventID, name, description, hostGuestID, now, now)

	// Step 1 of the creation saga: the event record, registry = {host}.
	s.keys.Lock(eventID)
	err = s.eventRepo.Create(ctx, event)
	s.keys.Unlock(eventID)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	// Step 2: the host guest record. A crash between the steps leaves an
	// event whose host_guest_id has no backing record; this window is
	// accepted and not reconciled.
	if _, err := s.guestService.Bind(ctx, hostGuestID, eventID, hostName); err != nil {
		return nil, fmt.Errorf("bind host guest: %w", err)
	}
	return event, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, id string, name, description *string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.keys.Lock(id)
	defer s.keys.Unlock(id)

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if name != nil {
		event.Name = *name
	}
	if description != nil {
		event.Description = *description
	}
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) GenerateGuestLink(ctx context.Context, eventID, name string) (*domain.GuestLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	guestID, err := identity.NewGuestID()
	if err != nil {
		return nil, fmt.Errorf("generate guest id: %w", err)
	}

	s.keys.Lock(eventID)
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err == nil {
		event.GuestIDs = append(event.GuestIDs, guestID)
		event.UpdatedAt = time.Now()
		err = s.eventRepo.Update(ctx, event)
	}
	s.keys.Unlock(eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("register guest: %w", err)
	}

	if _, err := s.guestService.Bind(ctx, guestID, eventID, name); err != nil {
		return nil, fmt.Errorf("bind guest: %w", err)
	}

	return &domain.GuestLink{
		GuestID: guestID,
		URL:     fmt.Sprintf("%s/guests/%s", s.publicBaseURL, guestID),
	}, nil
}

func (s *eventService) ListGuests(ctx context.Context, eventID string) ([]*domain.EventGuest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if len(event.GuestIDs) == 0 {
		return []*domain.EventGuest{}, nil
	}

	// Fan out concurrently; one slow or unreachable guest must not block
	// the others. A failed read excludes that guest from the result.
	type read struct {
		index int
		guest *domain.Guest
	}
	results := make(chan read, len(event.GuestIDs))
	var wg sync.WaitGroup
	for i, guestID := range event.GuestIDs {
		wg.Add(1)
		go func(index int, id string) {
			defer wg.Done()
			readCtx, cancel := context.WithTimeout(ctx, s.fanoutTimeout)
			defer cancel()
			guest, err := s.guestService.Get(readCtx, id)
			if err != nil {
				return
			}
			results <- read{index: index, guest: guest}
		}(i, guestID)
	}
	wg.Wait()
	close(results)

	byIndex := make([]*domain.Guest, len(event.GuestIDs))
	ok := 0
	for r := range results {
		byIndex[r.index] = r.guest
		ok++
	}
	if ok == 0 {
		return nil, domain.ErrAggregateUnavailable
	}

	guests := make([]*domain.EventGuest, 0, ok)
	for _, g := range byIndex {
		if g == nil {
			continue
		}
		guests = append(guests, &domain.EventGuest{
			Guest:  g,
			IsHost: g.ID == event.HostGuestID,
		})
	}
	return guests, nil
}

func (s *eventService) RemoveGuest(ctx context.Context, eventID, guestID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.keys.Lock(eventID)
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err == nil {
		if guestID == event.HostGuestID {
			err = domain.ErrInvalidInput
		} else {
			found := false
			kept := event.GuestIDs[:0]
			for _, id := range event.GuestIDs {
				if id == guestID {
					found = true
					continue
				}
				kept = append(kept, id)
			}
			if !found {
				err = domain.ErrNotFound
			} else {
				event.GuestIDs = kept
				event.UpdatedAt = time.Now()
				err = s.eventRepo.Update(ctx, event)
			}
		}
	}
	s.keys.Unlock(eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("unregister guest: %w", err)
	}

	// Second saga step; a crash here leaves an orphaned guest record that
	// no registry references.
	if err := s.guestService.Delete(ctx, guestID); err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	return nil
}
