package models

// PaymentResult is the outcome of the opaque payment capability.
// Only Status "succeeded" authorizes creating the reservation.
type PaymentResult struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

// PaymentSucceeded is the only payment status that lets a booking proceed.
const PaymentSucceeded = "succeeded"
