package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// availabilityRecorder records every whole-set write the server receives.
type availabilityRecorder struct {
	mu     sync.Mutex
	writes [][]string
	fail   bool
}

func (rec *availabilityRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		fail := rec.fail
		rec.mu.Unlock()
		if fail {
			writeErr(t, w, http.StatusServiceUnavailable, "service_unavailable", "store down")
			return
		}
		var body struct {
			Availability []string `json:"availability"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		rec.mu.Lock()
		rec.writes = append(rec.writes, body.Availability)
		rec.mu.Unlock()
		writeData(t, w, http.StatusOK, map[string]any{"id": "gAb12Cd3", "availability": body.Availability})
	}
}

func (rec *availabilityRecorder) all() [][]string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([][]string, len(rec.writes))
	copy(out, rec.writes)
	return out
}

func TestAvailabilityWriter_CoalescesRapidToggles(t *testing.T) {
	rec := &availabilityRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	w := NewAvailabilityWriter(New(srv.URL), "gAb12Cd3", nil, WithDebounce(50*time.Millisecond))

	ctx := context.Background()
	w.Toggle(ctx, "2026-09-01")
	w.Toggle(ctx, "2026-09-02")
	w.Toggle(ctx, "2026-09-01") // back off again
	w.Toggle(ctx, "2026-09-03")

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"2026-09-02", "2026-09-03"}, rec.all()[0])
}

func TestAvailabilityWriter_EmptySetIsExplicitResponse(t *testing.T) {
	rec := &availabilityRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	w := NewAvailabilityWriter(New(srv.URL), "gAb12Cd3", []string{"2026-09-01"}, WithDebounce(30*time.Millisecond))
	w.Set(context.Background(), []string{})

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{}, rec.all()[0])
}

func TestAvailabilityWriter_RollbackOnFailure(t *testing.T) {
	rec := &availabilityRecorder{fail: true}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	var mu sync.Mutex
	var lastErr error

	w := NewAvailabilityWriter(New(srv.URL), "gAb12Cd3", []string{"2026-09-01"},
		WithDebounce(20*time.Millisecond),
		WithOnError(func(err error) {
			mu.Lock()
			lastErr = err
			mu.Unlock()
		}),
	)

	ctx := context.Background()
	w.Toggle(ctx, "2026-09-02")
	assert.Equal(t, []string{"2026-09-01", "2026-09-02"}, w.Dates(), "edit applies optimistically")

	w.Flush(ctx)

	assert.Equal(t, []string{"2026-09-01"}, w.Dates(), "failed write rolls back to last acknowledged set")
	mu.Lock()
	defer mu.Unlock()
	require.Error(t, lastErr)
}

func TestAvailabilityWriter_SuccessBumpsPoller(t *testing.T) {
	rec := &availabilityRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	p := NewPoller(time.Hour, func(ctx context.Context) (any, error) { return nil, nil }, func(v any) {})

	w := NewAvailabilityWriter(New(srv.URL), "gAb12Cd3", nil,
		WithDebounce(20*time.Millisecond),
		WithPoller(p),
	)

	ctx := context.Background()
	w.Toggle(ctx, "2026-09-01")
	w.Flush(ctx)

	select {
	case <-p.bump:
	default:
		t.Fatal("acknowledged write did not bump the poller")
	}
	assert.Len(t, rec.all(), 1)
}

func TestAvailabilityWriter_OnChangeSeesOptimisticState(t *testing.T) {
	rec := &availabilityRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	var mu sync.Mutex
	var seen [][]string

	w := NewAvailabilityWriter(New(srv.URL), "gAb12Cd3", nil,
		WithDebounce(time.Hour), // never flush during the test
		WithOnChange(func(dates []string) {
			mu.Lock()
			seen = append(seen, dates)
			mu.Unlock()
		}),
	)

	ctx := context.Background()
	w.Toggle(ctx, "2026-09-01")
	w.Toggle(ctx, "2026-09-02")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, []string{"2026-09-01"}, seen[0])
	assert.Equal(t, []string{"2026-09-01", "2026-09-02"}, seen[1])
}
