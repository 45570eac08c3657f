// Package client is the Go SDK for the booking API. Dashboards and the
// terminal tools under cmd/ consume the API through it rather than
// hand-rolling requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daryeelcare/caafimaad-platform/internal/apperr"
	"github.com/daryeelcare/caafimaad-platform/internal/bookings"
	"github.com/daryeelcare/caafimaad-platform/internal/identity"
	"github.com/daryeelcare/caafimaad-platform/internal/payments"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Client talks to the booking API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     identity.TokenProvider
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenProvider sets the credential source attached to every request.
func WithTokenProvider(tp identity.TokenProvider) Option {
	return func(c *Client) {
		c.tokens = tp
	}
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wireError struct {
	Message string `json:"message"`
}

// do issues a request and decodes the JSON response into out (unless out
// is nil). Non-2xx responses are classified into the closed error
// taxonomy; transport failures are Network errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, err := c.tokens.Token(ctx); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.Network, "could not reach the booking service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var we wireError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&we)
		return apperr.FromStatus(resp.StatusCode, we.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.Unknown, "could not read the service response", err)
	}
	return nil
}

type availabilityResponse struct {
	DoctorID       string   `json:"doctorId"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
}

// Availability fetches the open slots for a doctor and date.
func (c *Client) Availability(ctx context.Context, doctorID, date string) ([]string, error) {
	var resp availabilityResponse
	path := fmt.Sprintf("/api/bookings/available-slots/%s/%s", doctorID, date)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.AvailableSlots, nil
}

type createBookingResponse struct {
	Message string            `json:"message"`
	Booking *bookings.Booking `json:"booking"`
}

// CreateBooking submits a draft. The server wraps the created booking in
// an envelope with a confirmation message; only the booking comes back.
// Use Submitter to get double-submit protection on top of this call.
func (c *Client) CreateBooking(ctx context.Context, draft *bookings.Draft) (*bookings.Booking, error) {
	var resp createBookingResponse
	if err := c.do(ctx, http.MethodPost, "/api/bookings", draft, &resp); err != nil {
		return nil, err
	}
	if resp.Booking == nil {
		return nil, apperr.New(apperr.Unknown, "service returned no booking")
	}
	return resp.Booking, nil
}

type listResponse struct {
	Bookings []*bookings.Booking `json:"bookings"`
	Count    int                 `json:"count"`
}

// MyBookings returns the authenticated patient's bookings.
func (c *Client) MyBookings(ctx context.Context) ([]*bookings.Booking, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/api/bookings/user", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

// Booking fetches a single booking by id.
func (c *Client) Booking(ctx context.Context, id string) (*bookings.Booking, error) {
	var booking bookings.Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings/"+id, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking cancels the patient's own pending booking.
func (c *Client) CancelBooking(ctx context.Context, id string) (*bookings.Booking, error) {
	var booking bookings.Booking
	if err := c.do(ctx, http.MethodPut, "/api/bookings/"+id+"/cancel", nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

type updatePaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	PaymentNumber string `json:"paymentNumber"`
	PaymentAmount int    `json:"paymentAmount"`
}

// UpdatePayment corrects the payment details on an existing booking.
func (c *Client) UpdatePayment(ctx context.Context, id, method, number string, amount int) (*bookings.Booking, error) {
	var booking bookings.Booking
	req := updatePaymentRequest{PaymentMethod: method, PaymentNumber: number, PaymentAmount: amount}
	if err := c.do(ctx, http.MethodPut, "/api/bookings/"+id+"/payment-status", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Receipt renders the plain-text receipt for a booking the client already
// holds. No network call is involved; the reference falls back to the
// booking id when no payment ref was assigned.
func Receipt(b *bookings.Booking) (filename string, body []byte) {
	r := payments.Receipt{
		Ref:    b.ReceiptRef(),
		Amount: b.PaymentAmount,
		Method: b.PaymentMethod,
		Number: b.PaymentNumber,
	}
	return r.Filename(), []byte(r.Render())
}

// DownloadReceipt fetches the server-rendered receipt and returns its
// suggested filename together with the body. Most callers should prefer
// Receipt, which needs no round trip.
func (c *Client) DownloadReceipt(ctx context.Context, id string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/bookings/"+id+"/receipt", nil)
	if err != nil {
		return "", nil, fmt.Errorf("client: build request: %w", err)
	}
	if c.tokens != nil {
		if token, err := c.tokens.Token(ctx); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Network, "could not reach the booking service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var we wireError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&we)
		return "", nil, apperr.FromStatus(resp.StatusCode, we.Message)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Network, "receipt download interrupted", err)
	}
	return receiptFilename(resp.Header.Get("Content-Disposition"), id), body, nil
}

func receiptFilename(disposition, id string) string {
	const marker = `filename="`
	if i := strings.Index(disposition, marker); i >= 0 {
		rest := disposition[i+len(marker):]
		if j := strings.Index(rest, `"`); j > 0 {
			return rest[:j]
		}
	}
	return "receipt-" + id + ".txt"
}
