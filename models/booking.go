package models

import "time"

// BookingSummary is the reviewed order before payment. It is always derived
// from the pricing calculator, never assembled by hand.
type BookingSummary struct {
	StationID     int64   `json:"stationId"`
	StationName   string  `json:"stationName"`
	Date          string  `json:"date"`
	Slots         []int   `json:"slots"`
	HourlyRate    float64 `json:"hourlyRate"`
	DurationHours float64 `json:"durationHours"`
	ServiceFee    float64 `json:"serviceFee"`
	Total         float64 `json:"total"`
}

// BookingCreateRequest is the payload sent to create a reservation.
type BookingCreateRequest struct {
	StationID int64  `json:"stationId"`
	Date      string `json:"date"`
	Slots     []int  `json:"slots"`
}

// Booking is the server-confirmed reservation record. Its existence is the
// proof that the flow succeeded.
type Booking struct {
	ID          int64     `json:"id"`
	StationID   int64     `json:"stationId"`
	StationName string    `json:"stationName,omitempty"`
	Date        string    `json:"date"`
	Slots       []int     `json:"slots"`
	Total       float64   `json:"total"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
