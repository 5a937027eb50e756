package smoobu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://login.smoobu.com/api"

// Booking is one reservation as Smoobu returns it
type Booking struct {
	ID        int64  `json:"id"`
	GuestName string `json:"guest-name"`
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
	Apartment struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"apartment"`
}

// Message is one entry in a reservation's conversation thread
type Message struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"message"`
	Type    int    `json:"type"`
}

// Client is the Smoobu HTTP API client
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a new Smoobu client. baseURL may be empty for
// the production endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

var errNotFound = fmt.Errorf("smoobu: not found")

// IsNotFound reports whether err is the gateway's 404
func IsNotFound(err error) bool {
	return err == errNotFound
}

// GetActiveReservations lists bookings for an apartment arriving in
// [arrivalFrom, arrivalTo], walking all result pages.
func (c *Client) GetActiveReservations(ctx context.Context, apartmentID int64, arrivalFrom, arrivalTo string) ([]Booking, error) {
	var bookings []Booking
	page := 1
	for {
		q := url.Values{}
		q.Set("apartmentId", strconv.FormatInt(apartmentID, 10))
		q.Set("pageSize", "100")
		q.Set("page", strconv.Itoa(page))
		q.Set("arrivalFrom", arrivalFrom)
		q.Set("arrivalTo", arrivalTo)

		var data struct {
			Bookings  []Booking `json:"bookings"`
			PageCount int       `json:"page_count"`
		}
		if err := c.do(ctx, http.MethodGet, "/reservations", q, nil, &data); err != nil {
			return nil, err
		}
		bookings = append(bookings, data.Bookings...)

		if data.PageCount <= page {
			break
		}
		page++
	}
	return bookings, nil
}

// GetMessages reads the conversation thread for a reservation
func (c *Client) GetMessages(ctx context.Context, reservationID int64) ([]Message, error) {
	var data struct {
		Messages []Message `json:"messages"`
	}
	path := fmt.Sprintf("/reservations/%d/messages", reservationID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &data); err != nil {
		return nil, err
	}
	return data.Messages, nil
}

// SendMessage delivers a message to the guest on a reservation
func (c *Client) SendMessage(ctx context.Context, reservationID int64, subject, body string) error {
	path := fmt.Sprintf("/reservations/%d/messages/send-message-to-guest", reservationID)
	payload := map[string]string{"subject": subject, "messageBody": body}
	return c.do(ctx, http.MethodPost, path, nil, payload, nil)
}

// GetReservation fetches one booking, nil when Smoobu has no record
func (c *Client) GetReservation(ctx context.Context, reservationID int64) (*Booking, error) {
	var b Booking
	path := fmt.Sprintf("/reservations/%d", reservationID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &b); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
