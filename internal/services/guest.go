package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commondays/internal/actor"
	"commondays/internal/domain"
)

type guestService struct {
	guestRepo      domain.GuestRepository
	keys           *actor.Keys
	contextTimeout time.Duration
}

// NewGuestService creates a GuestService. All mutations of one guest ID run
// under that ID's lock from keys.
func NewGuestService(guestRepo domain.GuestRepository, keys *actor.Keys, timeout time.Duration) domain.GuestService {
	return &guestService{
		guestRepo:      guestRepo,
		keys:           keys,
		contextTimeout: timeout,
	}
}

func (s *guestService) Bind(ctx context.Context, id, eventID, name string) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.keys.Lock(id)
	defer s.keys.Unlock(id)

	existing, err := s.guestRepo.GetByID(ctx, id)
	if err == nil {
		// Retry of the same creation attempt is fine; rebinding the ID to
		// a different event would corrupt both registries.
		if existing.EventID == eventID {
			return existing, nil
		}
		return nil, domain.ErrAlreadyBound
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get guest: %w", err)
	}

	now := time.Now()
	guest := domain.NewGuest(id, eventID, name, now, now)
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	return guest, nil
}

func (s *guestService) Get(ctx context.Context, id string) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	guest, err := s.guestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return guest, nil
}

func (s *guestService) Update(ctx context.Context, id string, update domain.GuestUpdate) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.keys.Lock(id)
	defer s.keys.Unlock(id)

	guest, err := s.guestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}

	if update.Name != nil {
		guest.Name = *update.Name
	}
	if update.Availability != nil {
		// An update that does not mention availability leaves the current
		// tri-state untouched; an explicit empty list is stored as an
		// empty list, never collapsed back to unset. The list is a set:
		// repeated dates collapse to one entry so a guest can never count
		// more than once for a day.
		src := *update.Availability
		dates := make([]string, 0, len(src))
		seen := make(map[string]struct{}, len(src))
		for _, d := range src {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
		guest.Availability = &dates
	}
	guest.UpdatedAt = time.Now()

	if err := s.guestRepo.Update(ctx, guest); err != nil {
		return nil, fmt.Errorf("update guest: %w", err)
	}
	return guest, nil
}

func (s *guestService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.keys.Lock(id)
	defer s.keys.Unlock(id)

	if err := s.guestRepo.Delete(ctx, id); err != nil {
		// Deleting twice is not an error.
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete guest: %w", err)
	}
	return nil
}
