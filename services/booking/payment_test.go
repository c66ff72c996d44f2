package booking

import (
	"context"
	"testing"
	"time"

	"powerme/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedPaymentSucceeds(t *testing.T) {
	svc := &SimulatedPaymentService{Delay: time.Millisecond}

	result, err := svc.Pay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSucceeded, result.Status)
	assert.NotEmpty(t, result.PaymentID)
}

func TestSimulatedPaymentIDsAreUnique(t *testing.T) {
	svc := &SimulatedPaymentService{}

	first, err := svc.Pay(context.Background())
	require.NoError(t, err)
	second, err := svc.Pay(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.PaymentID, second.PaymentID)
}

func TestSimulatedPaymentHonorsCancellation(t *testing.T) {
	svc := &SimulatedPaymentService{Delay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Pay(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
