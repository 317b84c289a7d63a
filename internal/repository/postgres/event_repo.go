package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"commondays/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, name, description, host_guest_id, guest_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, e.ID, e.Name, e.Description, e.HostGuestID, pq.Array(e.GuestIDs), e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, name, description, host_guest_id, guest_ids, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	var guestIDs pq.StringArray
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.HostGuestID, &guestIDs, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.GuestIDs = make([]string, len(guestIDs))
	copy(e.GuestIDs, guestIDs)
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $2, description = $3, guest_ids = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, e.ID, e.Name, e.Description, pq.Array(e.GuestIDs), e.UpdatedAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
