package bolt

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"commondays/internal/domain"
)

const bucketEvents = "events"

type eventRepository struct {
	db *bolt.DB
}

func NewEventRepository(db *bolt.DB) (domain.EventRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketEvents))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &eventRepository{db: db}, nil
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	j, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketEvents)).Put([]byte(event.ID), j)
	})
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	event := &domain.Event{}
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketEvents)).Get([]byte(id))
		if raw == nil {
			return domain.ErrNotFound
		}
		return json.Unmarshal(raw, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	j, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketEvents))
		if bucket.Get([]byte(event.ID)) == nil {
			return domain.ErrNotFound
		}
		return bucket.Put([]byte(event.ID), j)
	})
}
