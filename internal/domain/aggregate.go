package domain

import "context"

// Aggregate is the reduced availability of an event's members.
//
// Heatmap maps an ISO date to the number of responded guests available that
// day. Counts are the canonical form: a consumer can derive a 0..1 intensity
// as count/RespondedGuests (guarding RespondedGuests == 0), but a fraction
// cannot be turned back into a count.
// swagger:model Aggregate
type Aggregate struct {
	TotalGuests     int            `json:"total_guests"`
	RespondedGuests int            `json:"responded_guests"`
	Heatmap         map[string]int `json:"heatmap"`
}

// Aggregator produces the availability heatmap for an event.
type Aggregator interface {
	// Aggregate returns the current heatmap. Depending on configuration
	// the result is recomputed on demand or served from a cache with a
	// bounded staleness.
	Aggregate(ctx context.Context, eventID string) (*Aggregate, error)
}
