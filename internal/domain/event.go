package domain

import (
	"context"
	"time"
)

// Event represents a scheduling campaign created by a host.
//
// GuestIDs is the membership registry: it holds member guest IDs only, never
// guest content. HostGuestID is always a member of GuestIDs; the host is an
// ordinary guest distinguished by ID comparison.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HostGuestID string    `json:"host_guest_id"`
	GuestIDs    []string  `json:"guest_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns an Event whose registry contains only the host guest.
func NewEvent(id, name, description, hostGuestID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		ID:          id,
		Name:        name,
		Description: description,
		HostGuestID: hostGuestID,
		GuestIDs:    []string{hostGuestID},
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// GuestLink is returned when a new guest slot is generated for an event.
// swagger:model GuestLink
type GuestLink struct {
	GuestID string `json:"guest_id"`
	URL     string `json:"url"`
}

// EventGuest is a guest snapshot annotated for the host view.
type EventGuest struct {
	Guest  *Guest `json:"guest"`
	IsHost bool   `json:"is_host"`
}

// EventRepository defines storage operations for event records.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
}

// EventService owns one event's metadata and membership registry. All
// per-guest data is reached through the GuestService, never stored here.
type EventService interface {
	// Create writes the event record and then binds the host guest. These
	// are two separate writes with no spanning transaction; a crash in
	// between leaves an event whose host guest does not exist yet.
	Create(ctx context.Context, name, description, hostName string) (*Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	// Update touches metadata only. Nil fields are left unchanged.
	Update(ctx context.Context, id string, name, description *string) (*Event, error)
	// GenerateGuestLink allocates a guest ID, registers it, binds the new
	// guest record, and returns the shareable link.
	GenerateGuestLink(ctx context.Context, eventID, name string) (*GuestLink, error)
	// ListGuests reads every member concurrently. Members whose read fails
	// or times out are excluded; if every read fails it returns
	// ErrAggregateUnavailable.
	ListGuests(ctx context.Context, eventID string) ([]*EventGuest, error)
	// RemoveGuest drops the member from the registry and deletes its
	// record. The host cannot be removed.
	RemoveGuest(ctx context.Context, eventID, guestID string) error
}
