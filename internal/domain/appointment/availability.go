package appointment

import (
	"time"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

// WorkingHours is the daily bookable window, [StartHour, EndHour) in salon
// local time, cut into SlotMinutes pieces.
type WorkingHours struct {
	StartHour   int
	EndHour     int
	SlotMinutes int
}

func DefaultWorkingHours() WorkingHours {
	return WorkingHours{StartHour: 8, EndHour: 18, SlotMinutes: 60}
}

func (wh WorkingHours) Validate() error {
	if wh.StartHour < 0 || wh.EndHour > 24 || wh.StartHour >= wh.EndHour {
		return httperr.Validation("invalid_working_hours", "Horaires d'ouverture invalides.")
	}
	if wh.SlotMinutes <= 0 || ((wh.EndHour-wh.StartHour)*60)%wh.SlotMinutes != 0 {
		return httperr.Validation("invalid_granularity", "Durée de créneau invalide.")
	}
	return nil
}

// Bounds returns the opening and closing instants of day in loc.
func (wh WorkingHours) Bounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, wh.StartHour, 0, 0, 0, loc),
		time.Date(y, m, d, wh.EndHour, 0, 0, 0, loc)
}

// Contains reports whether [start, end) fits inside the day's window.
func (wh WorkingHours) Contains(start, end time.Time, loc *time.Location) bool {
	opening, closing := wh.Bounds(start, loc)
	return !start.Before(opening) && !end.After(closing)
}

type Slot struct {
	Start time.Time
	End   time.Time
}

// Interval is a half-open [Start, End) span.
type Interval struct {
	Start time.Time
	End   time.Time
}

type AvailabilitySlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// GenerateSlots cuts the working window of date's calendar day (in loc) into
// contiguous slots, ascending.
func GenerateSlots(date time.Time, loc *time.Location, wh WorkingHours) ([]Slot, error) {
	if date.IsZero() {
		return nil, httperr.Validation("invalid_date", "Date invalide.")
	}
	if loc == nil {
		loc = time.UTC
	}
	if err := wh.Validate(); err != nil {
		return nil, err
	}

	y, m, d := date.In(loc).Date()
	count := (wh.EndHour - wh.StartHour) * 60 / wh.SlotMinutes

	slots := make([]Slot, 0, count)
	for i := 0; i < count; i++ {
		offset := i * wh.SlotMinutes
		slots = append(slots, Slot{
			Start: time.Date(y, m, d, wh.StartHour, offset, 0, 0, loc),
			End:   time.Date(y, m, d, wh.StartHour, offset+wh.SlotMinutes, 0, 0, loc),
		})
	}

	return slots, nil
}

// Overlaps is the half-open overlap rule: touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// MarkAvailability flags each slot as unavailable when at least one booked
// interval overlaps it.
func MarkAvailability(slots []Slot, booked []Interval) []AvailabilitySlot {
	out := make([]AvailabilitySlot, len(slots))
	for i, s := range slots {
		available := true
		for _, b := range booked {
			if Overlaps(s.Start, s.End, b.Start, b.End) {
				available = false
				break
			}
		}
		out[i] = AvailabilitySlot{Start: s.Start, End: s.End, Available: available}
	}
	return out
}

// BookedIntervals keeps only the appointments that hold capacity.
func BookedIntervals(apps []models.Appointment) []Interval {
	out := make([]Interval, 0, len(apps))
	for _, ap := range apps {
		if !Status(ap.Status).Blocking() {
			continue
		}
		out = append(out, Interval{Start: ap.Date, End: ap.EndTime})
	}
	return out
}
