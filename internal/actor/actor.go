// Package actor serializes access to records by ID.
//
// Each event and guest record has a single logical owner: all mutations of
// one ID run under that ID's lock, which gives the single-writer-per-record
// guarantee without any cross-record transaction. Locks for different IDs
// are independent.
package actor

import "sync"

// Keys is a registry of per-ID mutexes.
type Keys struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeys returns an empty lock registry.
func NewKeys() *Keys {
	return &Keys{locks: make(map[string]*entry)}
}

// Lock acquires the lock for id, creating it on first use.
func (k *Keys) Lock(id string) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &entry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()
	e.mu.Lock()
}

// Unlock releases the lock for id. The entry is dropped once no goroutine
// holds or waits on it, so the registry does not grow with dead IDs.
func (k *Keys) Unlock(id string) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		k.mu.Unlock()
		panic("actor: unlock of unheld id " + id)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()
	e.mu.Unlock()
}
