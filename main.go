// File: powerme/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"powerme/config"
	"powerme/services/booking"
	"powerme/services/gateway"
	"powerme/services/session"
	"powerme/services/station"
	"powerme/signal"
	"powerme/utils"

	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	email := flag.String("email", "", "account email (omit to reuse a stored session)")
	password := flag.String("password", "", "account password")
	remember := flag.Bool("remember", false, "persist the session across restarts")
	stationID := flag.Int64("station", 0, "charging station id to book")
	date := flag.String("date", time.Now().Format("2006-01-02"), "booking date (YYYY-MM-DD)")
	slotCount := flag.Int("slots", 1, "number of contiguous half-hour slots")
	logoutFlag := flag.Bool("logout", false, "clear the stored session and exit")
	flag.Parse()

	cfg := config.AppConfig
	ctx := context.Background()

	// Session layer.
	store := session.NewCredentialStore(cfg.CredentialFile)
	nav := session.NavigatorFunc(func(path string) {
		logger.Info("navigation requested", zap.String("path", path))
	})
	sess := session.NewManager(store, cfg.APIBaseURL, nil, nav, logger)
	sess.Restore()

	if *logoutFlag {
		sess.Logout(ctx)
		logger.Info("session cleared")
		return
	}

	// All API calls below go through the authenticated gateway.
	transport, err := gateway.New(nil, sess, cfg.APIBaseURL, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to build gateway transport: %v", err)
	}
	apiClient := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
	}

	if !sess.IsAuthenticated() {
		if *email == "" || *password == "" {
			logger.Sugar().Fatal("main: no stored session; provide -email and -password")
		}
		cred, err := sess.Login(ctx, *email, *password)
		if err != nil {
			var notActivated session.AccountNotActivatedError
			switch {
			case errors.As(err, &notActivated):
				logger.Sugar().Fatalf("main: account not activated, check your email: %v", err)
			case errors.As(err, &session.InvalidCredentialsError{}):
				logger.Sugar().Fatal("main: invalid email or password")
			default:
				logger.Sugar().Fatalf("main: login failed: %v", err)
			}
		}
		if err := sess.CommitSession(cred.Token, cred.User, *remember); err != nil {
			logger.Sugar().Fatalf("main: failed to commit session: %v", err)
		}
	}

	if *stationID == 0 {
		logger.Info("logged in, no station requested", zap.Bool("remember", *remember))
		return
	}

	// Station and booking layers.
	stationStore := station.NewStore(station.NewAPI(cfg.APIBaseURL, apiClient), logger)
	payments := &booking.SimulatedPaymentService{
		Delay: time.Duration(cfg.PaymentDelayMS) * time.Millisecond,
	}
	flow := booking.NewFlow(sess, payments, booking.NewAPI(cfg.APIBaseURL, apiClient), booking.NewIntentStore(), nav, logger)
	flow.CloseDelay = time.Duration(cfg.FlowCloseDelayMS) * time.Millisecond

	stationStore.OpenStation(ctx, *stationID)
	if !await(stationStore.Loading, func(loading bool) bool { return !loading }, 30*time.Second) {
		logger.Sugar().Fatal("main: timed out loading station")
	}
	current := stationStore.Station.Get()
	if current == nil {
		logger.Sugar().Fatalf("main: station %d not found", *stationID)
	}

	stationStore.LoadAvailability(ctx, *date)
	if !await(stationStore.AvailabilityLoading, func(loading bool) bool { return !loading }, 30*time.Second) {
		logger.Sugar().Fatal("main: timed out loading availability")
	}

	// Pick the first contiguous run of the requested length.
	for _, slot := range stationStore.VisibleSlots() {
		if len(stationStore.SelectedSlots.Get()) == *slotCount {
			break
		}
		stationStore.SelectSlot(slot)
	}
	if !stationStore.CanBook() || len(stationStore.SelectedSlots.Get()) < *slotCount {
		logger.Sugar().Fatalf("main: no contiguous run of %d free slots on %s", *slotCount, *date)
	}

	selected := stationStore.SelectedSlots.Get()
	indexes := make([]int, len(selected))
	for i, slot := range selected {
		indexes[i] = slot.Index
	}

	flow.ConfirmStation(booking.StationConfirmation{
		StationID:   current.ID,
		StationName: current.Name,
		HourlyRate:  current.HourlyRate,
		Date:        *date,
		Slots:       indexes,
	})

	summary := flow.Summary.Get()
	logger.Info("booking summary",
		zap.String("station", summary.StationName),
		zap.String("date", summary.Date),
		zap.Float64("durationHours", summary.DurationHours),
		zap.Float64("total", summary.Total))

	closed := make(chan struct{})
	flow.OnClosed = func() { close(closed) }
	flow.ConfirmPayment(ctx)

	select {
	case <-closed:
		logger.Info("booking confirmed", zap.Float64("total", summary.Total))
	case <-time.After(2 * time.Minute):
		logger.Sugar().Fatalf("main: booking flow did not complete: step=%s error=%q",
			flow.Step.Get(), flow.ErrorMessage.Get())
	}
}

// await blocks until the signal satisfies done, or the timeout elapses.
func await[T any](sig *signal.Signal[T], done func(T) bool, timeout time.Duration) bool {
	ch := make(chan struct{}, 1)
	unsub := sig.Subscribe(func(v T) {
		if done(v) {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	})
	defer unsub()

	if done(sig.Get()) {
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}
