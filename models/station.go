package models

// ChargingStation is the station detail shown in the booking modal.
type ChargingStation struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourlyRate"`
	Power      float64 `json:"power,omitempty"`
	SocketType string  `json:"socketType,omitempty"`
	Status     string  `json:"status,omitempty"`
}
