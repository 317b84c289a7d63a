package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commondays/internal/actor"
	"commondays/internal/domain"
	"commondays/internal/identity"
)

const testFanoutTimeout = 200 * time.Millisecond

type eventFixture struct {
	eventRepo *mockEventRepo
	guestRepo *mockGuestRepo
	guests    domain.GuestService
	events    domain.EventService
}

func newEventFixture() *eventFixture {
	keys := actor.NewKeys()
	eventRepo := newMockEventRepo()
	guestRepo := newMockGuestRepo()
	guests := NewGuestService(guestRepo, keys, testTimeout)
	events := NewEventService(eventRepo, guests, keys, "https://days.example.com", testFanoutTimeout, testTimeout)
	return &eventFixture{
		eventRepo: eventRepo,
		guestRepo: guestRepo,
		guests:    guests,
		events:    events,
	}
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	event, err := f.events.Create(ctx, "Summer BBQ", "bring snacks", "Ada")
	require.NoError(t, err)
	assert.Equal(t, identity.KindEvent, identity.KindOf(event.ID))
	assert.Equal(t, identity.KindGuest, identity.KindOf(event.HostGuestID))
	assert.Equal(t, "Summer BBQ", event.Name)
	assert.Equal(t, "bring snacks", event.Description)
	// The host is registered as an ordinary guest.
	assert.Equal(t, []string{event.HostGuestID}, event.GuestIDs)

	host, err := f.guests.Get(ctx, event.HostGuestID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, host.EventID)
	assert.Equal(t, "Ada", host.Name)
	assert.Nil(t, host.Availability)
}

func TestEventService_GetAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	_, err := f.events.Get(ctx, "eAAAAAA9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	event, err := f.events.Create(ctx, "Summer BBQ", "", "Ada")
	require.NoError(t, err)

	got, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	again, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	name := "Autumn BBQ"
	updated, err := f.events.Update(ctx, event.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Autumn BBQ", updated.Name)
	// Description untouched, membership untouched.
	assert.Equal(t, event.Description, updated.Description)
	assert.Equal(t, event.GuestIDs, updated.GuestIDs)
}

func TestEventService_GenerateGuestLink(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	event, err := f.events.Create(ctx, "Summer BBQ", "", "Ada")
	require.NoError(t, err)

	link, err := f.events.GenerateGuestLink(ctx, event.ID, "Grace")
	require.NoError(t, err)
	assert.Equal(t, identity.KindGuest, identity.KindOf(link.GuestID))
	assert.Equal(t, "https://days.example.com/guests/"+link.GuestID, link.URL)

	reloaded, err := f.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Contains(t, reloaded.GuestIDs, link.GuestID)

	guest, err := f.guests.Get(ctx, link.GuestID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, guest.EventID)
	assert.Equal(t, "Grace", guest.Name)

	_, err = f.events.GenerateGuestLink(ctx, "eAAAAAA9", "Nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListGuests(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	event, err := f.events.Create(ctx, "Summer BBQ", "", "Ada")
	require.NoError(t, err)
	link, err := f.events.GenerateGuestLink(ctx, event.ID, "Grace")
	require.NoError(t, err)

	guests, err := f.events.ListGuests(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, guests, 2)

	byID := make(map[string]*domain.EventGuest)
	for _, g := range guests {
		byID[g.Guest.ID] = g
	}
	assert.True(t, byID[event.HostGuestID].IsHost)
	assert.False(t, byID[link.GuestID].IsHost)
}

func TestEventService_ListGuestsExcludesFailedReads(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	event, err := f.events.Create(ctx, "Summer BBQ", "", "Ada")
	require.NoError(t, err)
	link, err := f.events.GenerateGuestLink(ctx, event.ID, "Grace")
	require.NoError(t, err)

	// One failing member is excluded, not fatal.
	f.guestRepo.failGets[link.GuestID] = errors.New("store offline")
	guests, err := f.events.ListGuests(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, event.HostGuestID, guests[0].Guest.ID)
}

func TestEventService_ListGuestsExcludesSlowReads(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	event, err := f.events.Create(ctx, "Summer BBQ", "", "Ada")
	require.NoError(t, err)
	link, err := f.events.GenerateGuestLink(ctx, event.ID, "Grace")
	require.NoError(t, err)

	// A member slower than the per-read timeout must not block the call.
	f.guestRepo.slowGets[link.GuestID] = 5 * testFanoutTimeout
	start := time.Now()
	guests, err := f.events.ListGuests(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Less(t, time.Since(start), 3*testFanoutTimeout)
}

func TestEventService_ListGuestsAllReadsFail(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	event, err := f.events.Create(ctx, "Summer BBQ", "", "Ada")
	require.NoError(t, err)
	f.guestRepo.failGets[event.HostGuestID] = errors.New("store offline")

	_, err = f.events.ListGuests(ctx, event.ID)
	assert.ErrorIs(t, err, domain.ErrAggregateUnavailable)
}

func TestEventService_RemoveGuest(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	event, err := f.events.Create(ctx, "Summer BBQ", "", "Ada")
	require.NoError(t, err)
	link, err := f.events.GenerateGuestLink(ctx, event.ID, "Grace")
	require.NoError(t, err)

	require.NoError(t, f.events.RemoveGuest(ctx, event.ID, link.GuestID))

	guests, err := f.events.ListGuests(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, event.HostGuestID, guests[0].Guest.ID)

	_, err = f.guests.Get(ctx, link.GuestID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Removing a non-member, or the host, is rejected.
	err = f.events.RemoveGuest(ctx, event.ID, "gAAAAAA9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = f.events.RemoveGuest(ctx, event.ID, event.HostGuestID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
