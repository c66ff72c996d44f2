package booking

import (
	"context"
	"time"

	"powerme/models"
	"powerme/signal"

	"go.uber.org/zap"
)

// Step is the booking flow's current state.
type Step string

const (
	StepSelecting Step = "selecting"
	StepReviewing Step = "reviewing"
	StepPaying    Step = "paying"
	StepSucceeded Step = "succeeded"
	StepFailed    Step = "failed"
)

// Session is the slice of the session manager the flow needs.
type Session interface {
	IsAuthenticated() bool
}

// ReservationAPI creates the server-side reservation once payment succeeded.
type ReservationAPI interface {
	CreateBooking(ctx context.Context, req models.BookingCreateRequest) (*models.Booking, error)
}

// Navigator abstracts the login detour for unauthenticated users.
type Navigator interface {
	NavigateTo(path string)
}

// StationConfirmation is the slot-confirmation event emitted by the station
// modal when the user validates a contiguous run.
type StationConfirmation struct {
	StationID   int64
	StationName string
	HourlyRate  float64
	Date        string
	Slots       []int
}

// Flow sequences slot confirmation, payment, reservation creation and
// completion. Payment and reservation are strictly ordered: the reservation
// call is never issued before a succeeded payment is observed.
type Flow struct {
	session      Session
	payments     PaymentService
	reservations ReservationAPI
	intents      *IntentStore
	nav          Navigator
	logger       *zap.Logger

	// LocationID is the map location the flow was opened from; it is the
	// resume target recorded when an unauthenticated user is sent to login.
	LocationID int64

	// CloseDelay is how long a succeeded flow stays on screen before
	// auto-closing.
	CloseDelay time.Duration

	// OnClosed, when set, is invoked every time the flow closes.
	OnClosed func()

	Step           *signal.Signal[Step]
	Summary        *signal.Signal[*models.BookingSummary]
	PaymentLoading *signal.Signal[bool]
	PaymentSuccess *signal.Signal[bool]
	ErrorMessage   *signal.Signal[string]
}

func NewFlow(session Session, payments PaymentService, reservations ReservationAPI, intents *IntentStore, nav Navigator, logger *zap.Logger) *Flow {
	return &Flow{
		session:        session,
		payments:       payments,
		reservations:   reservations,
		intents:        intents,
		nav:            nav,
		logger:         logger,
		CloseDelay:     1500 * time.Millisecond,
		Step:           signal.New(StepSelecting),
		Summary:        signal.New[*models.BookingSummary](nil),
		PaymentLoading: signal.New(false),
		PaymentSuccess: signal.New(false),
		ErrorMessage:   signal.New(""),
	}
}

// ConfirmStation receives the confirmed slot run, derives the booking
// summary through the pricing calculator and moves to review.
func (f *Flow) ConfirmStation(c StationConfirmation) {
	pricing := ComputePricing(PricingInput{HourlyRate: c.HourlyRate, Slots: len(c.Slots)})

	f.Summary.Set(&models.BookingSummary{
		StationID:     c.StationID,
		StationName:   c.StationName,
		Date:          c.Date,
		Slots:         c.Slots,
		HourlyRate:    c.HourlyRate,
		DurationHours: pricing.DurationHours,
		ServiceFee:    pricing.ServiceFee,
		Total:         pricing.Total,
	})
	f.Step.Set(StepReviewing)
}

// BackToStation returns to slot selection. The summary is discarded; the
// underlying selection in the station store is untouched.
func (f *Flow) BackToStation() {
	f.Summary.Set(nil)
	f.Step.Set(StepSelecting)
}

// ConfirmPayment starts the payment leg. An unauthenticated caller is sent
// to login with the resume target recorded; nothing is charged.
func (f *Flow) ConfirmPayment(ctx context.Context) {
	if f.Step.Get() == StepPaying {
		return
	}

	if !f.session.IsAuthenticated() {
		f.intents.Set(f.LocationID)
		f.nav.NavigateTo("/login")
		return
	}

	summary := f.Summary.Get()
	if summary == nil {
		return
	}

	f.ErrorMessage.Set("")
	f.PaymentSuccess.Set(false)
	f.PaymentLoading.Set(true)
	f.Step.Set(StepPaying)

	go f.runPayment(ctx, summary)
}

// runPayment drives pay then reserve. Every exit clears the loading flag so
// no failure leaves the caller stuck behind a spinner.
func (f *Flow) runPayment(ctx context.Context, summary *models.BookingSummary) {
	defer f.PaymentLoading.Set(false)

	result, err := f.payments.Pay(ctx)
	if err != nil {
		f.logger.Warn("payment failed", zap.Error(err))
		f.fail("payment failed, please try again")
		return
	}
	if result.Status != models.PaymentSucceeded {
		f.logger.Warn("payment not completed", zap.Error(PaymentFailedError{Status: result.Status}))
		f.fail("payment failed, please try again")
		return
	}

	_, err = f.reservations.CreateBooking(ctx, models.BookingCreateRequest{
		StationID: summary.StationID,
		Date:      summary.Date,
		Slots:     summary.Slots,
	})
	if err != nil {
		// The asymmetric failure: the charge exists, the reservation does
		// not. Surfaced as-is; retrying the reservation here could
		// double-book.
		recErr := ReservationNotRecordedError{PaymentID: result.PaymentID, Err: err}
		f.logger.Error("payment captured but booking not recorded",
			zap.String("paymentID", result.PaymentID), zap.Error(err))
		f.fail(recErr.Error())
		return
	}

	f.PaymentSuccess.Set(true)
	f.Step.Set(StepSucceeded)
	f.logger.Info("booking confirmed",
		zap.Int64("stationID", summary.StationID), zap.String("date", summary.Date))

	time.AfterFunc(f.CloseDelay, f.CloseFlow)
}

func (f *Flow) fail(message string) {
	f.ErrorMessage.Set(message)
	f.Step.Set(StepFailed)
}

// CloseFlow resets the flow and signals closure. It is always safe before
// payment starts; once inside the paying step there is no mid-flight cancel
// and the call is ignored.
func (f *Flow) CloseFlow() {
	if f.Step.Get() == StepPaying {
		return
	}

	f.Step.Set(StepSelecting)
	f.Summary.Set(nil)
	f.PaymentSuccess.Set(false)
	f.ErrorMessage.Set("")

	if f.OnClosed != nil {
		f.OnClosed()
	}
}
