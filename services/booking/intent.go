package booking

import "sync"

// IntentStore remembers where to resume a booking after a login detour.
// The pending target is consumed exactly once on return.
type IntentStore struct {
	mu       sync.Mutex
	location int64
	pending  bool
}

func NewIntentStore() *IntentStore {
	return &IntentStore{}
}

// Set records the location to come back to after authentication.
func (s *IntentStore) Set(locationID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = locationID
	s.pending = true
}

// Consume returns the pending location and clears it.
func (s *IntentStore) Consume() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return 0, false
	}
	s.pending = false
	return s.location, true
}
