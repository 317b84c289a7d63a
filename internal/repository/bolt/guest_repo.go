// Package bolt implements the store interfaces on an embedded bbolt file.
// Each entity lives in its own bucket as one JSON record keyed by ID.
package bolt

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"commondays/internal/domain"
)

const bucketGuests = "guests"

type guestRepository struct {
	db *bolt.DB
}

func NewGuestRepository(db *bolt.DB) (domain.GuestRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketGuests))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &guestRepository{db: db}, nil
}

func (r *guestRepository) Create(ctx context.Context, guest *domain.Guest) error {
	j, err := json.Marshal(guest)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketGuests)).Put([]byte(guest.ID), j)
	})
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	guest := &domain.Guest{}
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketGuests)).Get([]byte(id))
		if raw == nil {
			return domain.ErrNotFound
		}
		return json.Unmarshal(raw, guest)
	})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func (r *guestRepository) Update(ctx context.Context, guest *domain.Guest) error {
	j, err := json.Marshal(guest)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGuests))
		if bucket.Get([]byte(guest.ID)) == nil {
			return domain.ErrNotFound
		}
		return bucket.Put([]byte(guest.ID), j)
	})
}

func (r *guestRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGuests))
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrNotFound
		}
		return bucket.Delete([]byte(id))
	})
}
