package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"commondays/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{
		DB: db,
	}
}

// The tri-state availability is stored as a responded flag plus a date
// array: responded=false means unset, responded=true with an empty array is
// the explicit "no days" response.
func (r *guestRepository) Create(ctx context.Context, g *domain.Guest) error {
	query := `
		INSERT INTO guests (id, event_id, name, responded, availability, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	responded, dates := packAvailability(g.Availability)
	_, err := r.DB.ExecContext(ctx, query, g.ID, g.EventID, g.Name, responded, pq.Array(dates), g.CreatedAt, g.UpdatedAt)
	return err
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	query := `
		SELECT id, event_id, name, responded, availability, created_at, updated_at
		FROM guests
		WHERE id = $1
	`
	g := &domain.Guest{}
	var responded bool
	var dates pq.StringArray
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.EventID, &g.Name, &responded, &dates, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	g.Availability = unpackAvailability(responded, dates)
	return g, nil
}

func (r *guestRepository) Update(ctx context.Context, g *domain.Guest) error {
	query := `
		UPDATE guests
		SET name = $2, responded = $3, availability = $4, updated_at = $5
		WHERE id = $1
	`
	responded, dates := packAvailability(g.Availability)
	result, err := r.DB.ExecContext(ctx, query, g.ID, g.Name, responded, pq.Array(dates), g.UpdatedAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *guestRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM guests WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func packAvailability(availability *[]string) (responded bool, dates []string) {
	if availability == nil {
		return false, []string{}
	}
	return true, *availability
}

func unpackAvailability(responded bool, dates pq.StringArray) *[]string {
	if !responded {
		return nil
	}
	out := make([]string, len(dates))
	copy(out, dates)
	return &out
}
