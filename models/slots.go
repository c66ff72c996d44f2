package models

// TimeSlot is one bookable half-hour unit of a station's day.
// Slots for a station+date form a fixed ordered sequence sorted by start
// time; the end of slot i equals the start of slot i+1 except at the day
// boundary.
type TimeSlot struct {
	Index     int    `json:"index"`
	Start     string `json:"start"` // HH:mm
	End       string `json:"end"`   // HH:mm
	Available bool   `json:"available"`
}

// StationAvailability is a station's slot sequence for a single day.
type StationAvailability struct {
	Date  string     `json:"date"` // YYYY-MM-DD
	Slots []TimeSlot `json:"slots"`
}
