// Package bookingapi is a typed HTTP client for the remote booking service
// consumed by the scheduling widget: day slots, month availability summaries
// and booking submission.
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zintasclinic/booking-widget/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Client talks to the booking service over same-origin style REST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a booking service client. A zero timeout falls back to
// the default; timeouts surface as NetworkError.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetSlots returns the open slot labels for a date (YYYY-MM-DD). An empty
// list is a successful result, not an error.
func (c *Client) GetSlots(ctx context.Context, date string) ([]string, error) {
	q := url.Values{"date": {date}}
	var out slotsResponse
	if err := c.get(ctx, "slots", "/api/slots?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.AvailableSlots, nil
}

// GetMonthSummary returns one DaySummary per day the service has a record
// for in the given month. month is 1-indexed (January = 1). Days with no
// record are simply absent.
func (c *Client) GetMonthSummary(ctx context.Context, year, month int) ([]DaySummary, error) {
	q := url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(month)},
	}
	var out monthSummaryResponse
	if err := c.get(ctx, "month summary", "/api/month-summary?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Days, nil
}

// CreateBooking submits a booking. A success:false response from the service
// is returned as a ServiceError carrying the service's message.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &NetworkError{Op: "book", Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/book", bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Op: "book", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out BookingResult
	if err := c.do(httpReq, "book", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "booking rejected"
		}
		return nil, &ServiceError{Op: "book", Message: msg}
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("booking service request failed", "op", op, "error", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return &NetworkError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &ServiceError{Op: op, Message: fmt.Sprintf("malformed payload: %v", err)}
	}

	c.logger.Debug("booking service request completed",
		"op", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
