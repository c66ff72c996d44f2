package station

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"powerme/models"
	"powerme/signal"

	"go.uber.org/zap"
)

// AvailabilityAPI is the slice of the station client the store consumes.
type AvailabilityAPI interface {
	GetStation(ctx context.Context, id int64) (*models.ChargingStation, error)
	GetAvailability(ctx context.Context, stationID int64, date string) (*models.StationAvailability, error)
}

// loadKey identifies one availability request. A completed fetch is applied
// only if its key still matches the current one, which makes late responses
// for a superseded station/date pair a no-op.
type loadKey struct {
	stationID int64
	date      string
}

// Store owns the currently open station, its per-day availability and the
// slot selection built on it. It holds at most one (station, date) sequence
// at a time; loading a new pair discards the previous one together with the
// selection.
type Store struct {
	api    AvailabilityAPI
	logger *zap.Logger
	now    func() time.Time

	Station             *signal.Signal[*models.ChargingStation]
	Loading             *signal.Signal[bool]
	Date                *signal.Signal[string]
	Availability        *signal.Signal[*models.StationAvailability]
	AvailabilityLoading *signal.Signal[bool]
	SelectedSlots       *signal.Signal[[]models.TimeSlot]

	mu     sync.Mutex
	reqKey loadKey
}

func NewStore(api AvailabilityAPI, logger *zap.Logger) *Store {
	return &Store{
		api:                 api,
		logger:              logger,
		now:                 time.Now,
		Station:             signal.New[*models.ChargingStation](nil),
		Loading:             signal.New(false),
		Date:                signal.New(""),
		Availability:        signal.New[*models.StationAvailability](nil),
		AvailabilityLoading: signal.New(false),
		SelectedSlots:       signal.New[[]models.TimeSlot](nil),
	}
}

// OpenStation loads the station detail asynchronously. A failed fetch leaves
// the modal empty; the error itself is a presentation concern.
func (s *Store) OpenStation(ctx context.Context, id int64) {
	s.Loading.Set(true)
	go func() {
		station, err := s.api.GetStation(ctx, id)
		if err != nil {
			s.logger.Warn("failed to load station", zap.Int64("stationID", id), zap.Error(err))
			station = nil
		}
		s.Station.Set(station)
		s.Loading.Set(false)
	}()
}

// CloseStation discards the station and everything selected under it.
func (s *Store) CloseStation() {
	s.Station.Set(nil)
	s.ResetSelection()
}

// LoadAvailability fetches the slot sequence for the open station on the
// given date. Any previous selection is cleared immediately; the response is
// applied through the stale-response guard.
func (s *Store) LoadAvailability(ctx context.Context, date string) {
	station := s.Station.Get()
	if station == nil {
		return
	}

	key := loadKey{stationID: station.ID, date: date}
	s.mu.Lock()
	s.reqKey = key
	s.mu.Unlock()

	s.Date.Set(date)
	s.AvailabilityLoading.Set(true)
	s.SelectedSlots.Set(nil)

	go func() {
		availability, err := s.api.GetAvailability(ctx, key.stationID, key.date)
		s.applyAvailability(key, availability, err)
	}()
}

// applyAvailability installs a completed fetch unless the store has moved on
// to a different (station, date) pair. An empty result and a failed fetch
// land identically: no slots, nothing bookable.
func (s *Store) applyAvailability(key loadKey, availability *models.StationAvailability, err error) {
	s.mu.Lock()
	current := s.reqKey
	s.mu.Unlock()
	if current != key {
		s.logger.Debug("dropping stale availability response",
			zap.Int64("stationID", key.stationID), zap.String("date", key.date))
		return
	}

	if err != nil {
		s.logger.Warn("failed to load availability",
			zap.Int64("stationID", key.stationID), zap.String("date", key.date), zap.Error(err))
		availability = nil
	}
	s.Availability.Set(availability)
	s.AvailabilityLoading.Set(false)
}

// VisibleSlots is the time-filtered view of the loaded availability: on the
// current calendar date, slots whose start has already passed are hidden.
// A slot spanning midnight is judged by its start alone.
func (s *Store) VisibleSlots() []models.TimeSlot {
	availability := s.Availability.Get()
	date := s.Date.Get()
	if availability == nil || date == "" {
		return nil
	}

	now := s.now()
	if date != now.Format("2006-01-02") {
		return availability.Slots
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	visible := make([]models.TimeSlot, 0, len(availability.Slots))
	for _, slot := range availability.Slots {
		start, err := minutesOfDay(slot.Start)
		if err != nil {
			continue
		}
		if start >= nowMinutes {
			visible = append(visible, slot)
		}
	}
	return visible
}

// SelectSlot applies the contiguity rule: an unavailable slot is ignored, a
// slot adjacent to the end of the current run is appended, and any other
// pick starts a fresh run rather than erroring.
func (s *Store) SelectSlot(slot models.TimeSlot) {
	if !slot.Available {
		return
	}

	s.SelectedSlots.Update(func(current []models.TimeSlot) []models.TimeSlot {
		if len(current) == 0 || current[len(current)-1].End != slot.Start {
			return []models.TimeSlot{slot}
		}
		next := make([]models.TimeSlot, len(current), len(current)+1)
		copy(next, current)
		return append(next, slot)
	})
}

// CanBook reports whether a reservation can start: a station is open, a date
// is chosen and at least one slot is selected.
func (s *Store) CanBook() bool {
	return s.Station.Get() != nil && s.Date.Get() != "" && len(s.SelectedSlots.Get()) > 0
}

// ResetSelection clears date, availability and selection as one step.
// A partial reset leaving a selection that references a stale date would be
// a correctness hazard. In-flight loads are invalidated through the request
// key so they cannot resurrect the cleared state.
func (s *Store) ResetSelection() {
	s.mu.Lock()
	s.reqKey = loadKey{}
	s.mu.Unlock()

	s.Date.Set("")
	s.Availability.Set(nil)
	s.SelectedSlots.Set(nil)
	s.AvailabilityLoading.Set(false)
}

func minutesOfDay(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, strconv.ErrSyntax
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}
