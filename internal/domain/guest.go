package domain

import (
	"context"
	"time"
)

// Guest represents one participant of an event, including the host.
//
// Availability is tri-state: nil means the guest has not responded yet, a
// pointer to an empty slice means the guest responded "no days", and a
// non-empty slice holds the ISO dates (YYYY-MM-DD) the guest is available.
// swagger:model Guest
type Guest struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Availability *[]string `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewGuest returns a Guest bound to eventID with no response yet.
func NewGuest(id, eventID, name string, createdAt, updatedAt time.Time) *Guest {
	return &Guest{
		ID:        id,
		EventID:   eventID,
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Responded reports whether the guest has submitted any response, including
// the explicit "no days" response.
func (g *Guest) Responded() bool {
	return g.Availability != nil
}

// GuestUpdate carries a partial guest update. Nil fields are left untouched;
// a non-nil Availability pointing at an empty slice stores the explicit
// "no days" response.
type GuestUpdate struct {
	Name         *string
	Availability *[]string
}

// GuestRepository defines storage operations for guest records.
type GuestRepository interface {
	Create(ctx context.Context, guest *Guest) error
	GetByID(ctx context.Context, id string) (*Guest, error)
	Update(ctx context.Context, guest *Guest) error
	Delete(ctx context.Context, id string) error
}

// GuestService owns all access to a single guest record. Mutations of the
// same ID are serialized; there is no shared state across guests.
type GuestService interface {
	// Bind creates the guest record and ties it to its owning event.
	// Binding the same ID to the same event again is an idempotent no-op;
	// binding it to a different event returns ErrAlreadyBound.
	Bind(ctx context.Context, id, eventID, name string) (*Guest, error)
	Get(ctx context.Context, id string) (*Guest, error)
	// Update merges the partial update into the record and returns the
	// full updated snapshot.
	Update(ctx context.Context, id string, update GuestUpdate) (*Guest, error)
	// Delete purges the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, id string) error
}
