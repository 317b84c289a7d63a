// Package client is the Go client for the commondays API. It implements the
// sync discipline the server expects from UIs: fixed-interval polling with
// last-response-received-wins, debounced whole-set availability writes with
// optimistic local state, and a poll-timer reset after every local write.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIError is an error response decoded from the server envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Event mirrors the server's event descriptor.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HostGuestID string    `json:"host_guest_id"`
	GuestIDs    []string  `json:"guest_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Guest mirrors the guest-scoped snapshot. It carries no event identifier.
type Guest struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Availability *[]string `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventGuest is one member in the host's guest list.
type EventGuest struct {
	Guest
	IsHost bool `json:"is_host"`
}

// GuestLink is the descriptor returned when a guest slot is generated.
type GuestLink struct {
	GuestID string `json:"guest_id"`
	URL     string `json:"url"`
}

// Aggregate is the availability heatmap with raw per-date counts.
type Aggregate struct {
	TotalGuests     int            `json:"total_guests"`
	RespondedGuests int            `json:"responded_guests"`
	Heatmap         map[string]int `json:"heatmap"`
}

// Intensity returns the 0..1 display intensity for a date, derived from the
// raw count. Zero responded guests yields zero for every date.
func (a *Aggregate) Intensity(date string) float64 {
	if a.RespondedGuests == 0 {
		return 0
	}
	return float64(a.Heatmap[date]) / float64(a.RespondedGuests)
}

// Client calls the commondays HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error != nil {
		env.Error.StatusCode = resp.StatusCode
		return env.Error
	}
	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: http.StatusText(resp.StatusCode)}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// CreateEvent creates an event and its host guest.
func (c *Client) CreateEvent(ctx context.Context, name, description, hostName string) (*Event, error) {
	body := map[string]string{"name": name, "description": description, "host_name": hostName}
	var event Event
	if err := c.do(ctx, http.MethodPost, "/events", body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEvent reads event metadata.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodGet, "/events/"+eventID, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent updates event metadata. Nil fields are left unchanged.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, name, description *string) (*Event, error) {
	body := map[string]*string{"name": name, "description": description}
	var event Event
	if err := c.do(ctx, http.MethodPut, "/events/"+eventID, body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateGuestLink generates a guest slot. email is optional; when set the
// server mails the link.
func (c *Client) CreateGuestLink(ctx context.Context, eventID, name, email string) (*GuestLink, error) {
	body := map[string]string{"name": name, "email": email}
	var link GuestLink
	if err := c.do(ctx, http.MethodPost, "/events/"+eventID+"/guests", body, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListGuests reads the host view of all members.
func (c *Client) ListGuests(ctx context.Context, eventID string) ([]EventGuest, error) {
	var guests []EventGuest
	if err := c.do(ctx, http.MethodGet, "/events/"+eventID+"/guests", nil, &guests); err != nil {
		return nil, err
	}
	return guests, nil
}

// RemoveGuest removes a guest from the event and deletes its record.
func (c *Client) RemoveGuest(ctx context.Context, eventID, guestID string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+eventID+"/guests/"+guestID, nil, nil)
}

// GetAvailability reads the event-scoped aggregate heatmap.
func (c *Client) GetAvailability(ctx context.Context, eventID string) (*Aggregate, error) {
	var agg Aggregate
	if err := c.do(ctx, http.MethodGet, "/events/"+eventID+"/availability", nil, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

// GetGuest reads the caller's own guest record.
func (c *Client) GetGuest(ctx context.Context, guestID string) (*Guest, error) {
	var guest Guest
	if err := c.do(ctx, http.MethodGet, "/guests/"+guestID, nil, &guest); err != nil {
		return nil, err
	}
	return &guest, nil
}

// UpdateGuestName sets the guest's display name.
func (c *Client) UpdateGuestName(ctx context.Context, guestID, name string) (*Guest, error) {
	var guest Guest
	if err := c.do(ctx, http.MethodPut, "/guests/"+guestID+"/name", map[string]string{"name": name}, &guest); err != nil {
		return nil, err
	}
	return &guest, nil
}

// UpdateGuestAvailability replaces the guest's entire availability set. An
// empty (non-nil) set is the explicit "no days" response.
func (c *Client) UpdateGuestAvailability(ctx context.Context, guestID string, dates []string) (*Guest, error) {
	if dates == nil {
		dates = []string{}
	}
	var guest Guest
	if err := c.do(ctx, http.MethodPut, "/guests/"+guestID+"/availability", map[string][]string{"availability": dates}, &guest); err != nil {
		return nil, err
	}
	return &guest, nil
}

// GetGuestAggregate reads the aggregate heatmap through the guest namespace,
// for callers that hold only a guest link.
func (c *Client) GetGuestAggregate(ctx context.Context, guestID string) (*Aggregate, error) {
	var agg Aggregate
	if err := c.do(ctx, http.MethodGet, "/guests/"+guestID+"/aggregate", nil, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}
