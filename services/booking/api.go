package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"powerme/models"
)

// API is the typed client for the booking endpoints. Its HTTP client is
// expected to carry the gateway transport, so bookings are always created
// under the current credential.
type API struct {
	baseURL string
	http    *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	return &API{baseURL: baseURL, http: httpClient}
}

// CreateBooking asks the backend to record a reservation for the given
// station, date and contiguous slot run.
func (a *API) CreateBooking(ctx context.Context, req models.BookingCreateRequest) (*models.Booking, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/bookings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("booking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("booking rejected with status %d", resp.StatusCode)
	}

	var booking models.Booking
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to decode booking response: %w", err)
	}
	return &booking, nil
}

// ListMyBookings fetches the current user's past and upcoming charges for
// the dashboard.
func (a *API) ListMyBookings(ctx context.Context) ([]models.Booking, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/bookings/me", nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bookings listing failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bookings listing rejected with status %d", resp.StatusCode)
	}

	var bookings []models.Booking
	if err := json.NewDecoder(resp.Body).Decode(&bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings listing: %w", err)
	}
	return bookings, nil
}
