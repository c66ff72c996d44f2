package station

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"powerme/models"
)

// API is the typed client for the charging station endpoints. Its HTTP
// client is expected to carry the gateway transport.
type API struct {
	baseURL string
	http    *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	return &API{baseURL: baseURL, http: httpClient}
}

// GetStation fetches the station detail shown in the booking modal.
func (a *API) GetStation(ctx context.Context, id int64) (*models.ChargingStation, error) {
	u := fmt.Sprintf("%s/charging-stations/%d", a.baseURL, id)
	var station models.ChargingStation
	if err := a.getJSON(ctx, u, &station); err != nil {
		return nil, fmt.Errorf("failed to fetch station %d: %w", id, err)
	}
	return &station, nil
}

// GetAvailability fetches the slot sequence of a station for one day.
func (a *API) GetAvailability(ctx context.Context, stationID int64, date string) (*models.StationAvailability, error) {
	u := fmt.Sprintf("%s/charging-stations/%d/availability?date=%s",
		a.baseURL, stationID, url.QueryEscape(date))
	var availability models.StationAvailability
	if err := a.getJSON(ctx, u, &availability); err != nil {
		return nil, fmt.Errorf("failed to fetch availability for station %d on %s: %w", stationID, date, err)
	}
	return &availability, nil
}

func (a *API) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
