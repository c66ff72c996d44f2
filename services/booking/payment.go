package booking

import (
	"context"
	"time"

	"powerme/models"

	"github.com/google/uuid"
)

// PaymentService is the opaque payment capability. Whatever sits behind it,
// only a "succeeded" status authorizes creating the reservation.
type PaymentService interface {
	Pay(ctx context.Context) (*models.PaymentResult, error)
}

// SimulatedPaymentService stands in for the real payment provider: it waits
// the configured delay and reports success with a generated payment id.
type SimulatedPaymentService struct {
	Delay time.Duration
}

func (s *SimulatedPaymentService) Pay(ctx context.Context) (*models.PaymentResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.Delay):
	}

	return &models.PaymentResult{
		PaymentID: uuid.New().String(),
		Status:    models.PaymentSucceeded,
	}, nil
}
