package booking

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"powerme/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFlowSession struct {
	authed bool
}

func (s *fakeFlowSession) IsAuthenticated() bool { return s.authed }

type fakePayment struct {
	result *models.PaymentResult
	err    error
	gate   chan struct{}
	calls  atomic.Int32
}

func (p *fakePayment) Pay(ctx context.Context) (*models.PaymentResult, error) {
	p.calls.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	return p.result, p.err
}

type fakeReservations struct {
	mu      sync.Mutex
	booking *models.Booking
	err     error
	calls   int
	lastReq models.BookingCreateRequest
}

func (r *fakeReservations) CreateBooking(ctx context.Context, req models.BookingCreateRequest) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.lastReq = req
	return r.booking, r.err
}

func (r *fakeReservations) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNavigator) NavigateTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func succeededPayment() *models.PaymentResult {
	return &models.PaymentResult{PaymentID: "pay-1", Status: models.PaymentSucceeded}
}

func testConfirmation() StationConfirmation {
	return StationConfirmation{
		StationID:   3,
		StationName: "Dock 3",
		HourlyRate:  2.00,
		Date:        "2026-09-01",
		Slots:       []int{18, 19, 20},
	}
}

func newTestFlow(session Session, payments PaymentService, reservations ReservationAPI, nav Navigator) *Flow {
	f := NewFlow(session, payments, reservations, NewIntentStore(), nav, zap.NewNop())
	// Keep the succeeded screen up long enough for assertions.
	f.CloseDelay = time.Minute
	return f
}

func TestConfirmStationBuildsSummary(t *testing.T) {
	flow := newTestFlow(&fakeFlowSession{authed: true}, &fakePayment{}, &fakeReservations{}, &fakeNavigator{})

	flow.ConfirmStation(testConfirmation())

	assert.Equal(t, StepReviewing, flow.Step.Get())
	summary := flow.Summary.Get()
	require.NotNil(t, summary)
	assert.Equal(t, int64(3), summary.StationID)
	assert.Equal(t, 1.5, summary.DurationHours)
	assert.Equal(t, 0.5, summary.ServiceFee)
	assert.Equal(t, 3.5, summary.Total)
}

func TestBackToStationDiscardsSummary(t *testing.T) {
	flow := newTestFlow(&fakeFlowSession{authed: true}, &fakePayment{}, &fakeReservations{}, &fakeNavigator{})
	flow.ConfirmStation(testConfirmation())

	flow.BackToStation()

	assert.Equal(t, StepSelecting, flow.Step.Get())
	assert.Nil(t, flow.Summary.Get())
}

func TestUnauthenticatedPaymentDetoursToLogin(t *testing.T) {
	payments := &fakePayment{result: succeededPayment()}
	nav := &fakeNavigator{}
	flow := newTestFlow(&fakeFlowSession{authed: false}, payments, &fakeReservations{}, nav)
	flow.LocationID = 42
	flow.ConfirmStation(testConfirmation())

	flow.ConfirmPayment(context.Background())

	assert.Equal(t, []string{"/login"}, nav.paths)
	assert.Equal(t, int32(0), payments.calls.Load())

	// The resume target is recorded once and consumed once.
	loc, ok := flow.intents.Consume()
	require.True(t, ok)
	assert.Equal(t, int64(42), loc)
	_, ok = flow.intents.Consume()
	assert.False(t, ok)
}

func TestSuccessfulPaymentCreatesReservation(t *testing.T) {
	reservations := &fakeReservations{booking: &models.Booking{ID: 9, Status: "CONFIRMED"}}
	flow := newTestFlow(&fakeFlowSession{authed: true}, &fakePayment{result: succeededPayment()}, reservations, &fakeNavigator{})
	flow.ConfirmStation(testConfirmation())

	flow.ConfirmPayment(context.Background())

	require.Eventually(t, func() bool {
		return flow.Step.Get() == StepSucceeded
	}, time.Second, 5*time.Millisecond)
	assert.True(t, flow.PaymentSuccess.Get())
	assert.False(t, flow.PaymentLoading.Get())
	assert.Empty(t, flow.ErrorMessage.Get())

	require.Equal(t, 1, reservations.callCount())
	reservations.mu.Lock()
	req := reservations.lastReq
	reservations.mu.Unlock()
	assert.Equal(t, models.BookingCreateRequest{StationID: 3, Date: "2026-09-01", Slots: []int{18, 19, 20}}, req)
}

func TestSucceededFlowAutoCloses(t *testing.T) {
	flow := newTestFlow(&fakeFlowSession{authed: true}, &fakePayment{result: succeededPayment()}, &fakeReservations{}, &fakeNavigator{})
	flow.CloseDelay = 10 * time.Millisecond
	closed := make(chan struct{})
	flow.OnClosed = func() { close(closed) }
	flow.ConfirmStation(testConfirmation())

	flow.ConfirmPayment(context.Background())

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("flow did not auto-close")
	}
	assert.Equal(t, StepSelecting, flow.Step.Get())
	assert.Nil(t, flow.Summary.Get())
	assert.False(t, flow.PaymentSuccess.Get())
}

func TestFailedPaymentNeverReserves(t *testing.T) {
	reservations := &fakeReservations{}
	flow := newTestFlow(&fakeFlowSession{authed: true}, &fakePayment{err: assert.AnError}, reservations, &fakeNavigator{})
	flow.ConfirmStation(testConfirmation())

	flow.ConfirmPayment(context.Background())

	require.Eventually(t, func() bool {
		return flow.Step.Get() == StepFailed
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, reservations.callCount())
	assert.False(t, flow.PaymentLoading.Get())
	assert.False(t, flow.PaymentSuccess.Get())
	assert.Equal(t, "payment failed, please try again", flow.ErrorMessage.Get())
}

func TestNonSucceededStatusNeverReserves(t *testing.T) {
	reservations := &fakeReservations{}
	payments := &fakePayment{result: &models.PaymentResult{PaymentID: "pay-1", Status: "declined"}}
	flow := newTestFlow(&fakeFlowSession{authed: true}, payments, reservations, &fakeNavigator{})
	flow.ConfirmStation(testConfirmation())

	flow.ConfirmPayment(context.Background())

	require.Eventually(t, func() bool {
		return flow.Step.Get() == StepFailed
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, reservations.callCount())
}

func TestReservationFailureAfterCapturedPayment(t *testing.T) {
	reservations := &fakeReservations{err: assert.AnError}
	flow := newTestFlow(&fakeFlowSession{authed: true}, &fakePayment{result: succeededPayment()}, reservations, &fakeNavigator{})
	flow.ConfirmStation(testConfirmation())

	flow.ConfirmPayment(context.Background())

	require.Eventually(t, func() bool {
		return flow.Step.Get() == StepFailed
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, reservations.callCount())
	assert.False(t, flow.PaymentSuccess.Get())
	assert.Contains(t, flow.ErrorMessage.Get(), "captured but booking not recorded")
	assert.Contains(t, flow.ErrorMessage.Get(), "pay-1")
}

func TestCloseFlowIgnoredWhilePaying(t *testing.T) {
	gate := make(chan struct{})
	payments := &fakePayment{result: succeededPayment(), gate: gate}
	flow := newTestFlow(&fakeFlowSession{authed: true}, payments, &fakeReservations{}, &fakeNavigator{})
	flow.ConfirmStation(testConfirmation())

	flow.ConfirmPayment(context.Background())
	require.Equal(t, StepPaying, flow.Step.Get())

	flow.CloseFlow()
	assert.Equal(t, StepPaying, flow.Step.Get())

	// A second ConfirmPayment while in flight must not double-charge.
	flow.ConfirmPayment(context.Background())
	assert.Equal(t, int32(1), payments.calls.Load())

	close(gate)
	require.Eventually(t, func() bool {
		return flow.Step.Get() == StepSucceeded
	}, time.Second, 5*time.Millisecond)
}

func TestCloseFlowBeforePaying(t *testing.T) {
	flow := newTestFlow(&fakeFlowSession{authed: true}, &fakePayment{}, &fakeReservations{}, &fakeNavigator{})
	closedCount := 0
	flow.OnClosed = func() { closedCount++ }
	flow.ConfirmStation(testConfirmation())

	flow.CloseFlow()

	assert.Equal(t, StepSelecting, flow.Step.Get())
	assert.Nil(t, flow.Summary.Get())
	assert.Equal(t, 1, closedCount)
}
