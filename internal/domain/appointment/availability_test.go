package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

var wat = time.FixedZone("WAT", 3600)

func at(hour, minute int) time.Time {
	return time.Date(2026, 5, 12, hour, minute, 0, 0, wat)
}

func TestGenerateSlots_DefaultDay(t *testing.T) {
	slots, err := GenerateSlots(at(0, 0), wat, DefaultWorkingHours())
	require.NoError(t, err)
	require.Len(t, slots, 10)

	assert.Equal(t, at(8, 0), slots[0].Start)
	assert.Equal(t, at(18, 0), slots[9].End)

	for i := 1; i < len(slots); i++ {
		assert.Equal(t, slots[i-1].End, slots[i].Start, "slots must be contiguous")
		assert.True(t, slots[i-1].Start.Before(slots[i].Start), "slots must be ascending")
	}
}

func TestGenerateSlots_Count(t *testing.T) {
	tests := []WorkingHours{
		{StartHour: 8, EndHour: 18, SlotMinutes: 60},
		{StartHour: 8, EndHour: 18, SlotMinutes: 30},
		{StartHour: 9, EndHour: 12, SlotMinutes: 15},
		{StartHour: 0, EndHour: 24, SlotMinutes: 120},
	}

	for _, wh := range tests {
		slots, err := GenerateSlots(at(12, 0), wat, wh)
		require.NoError(t, err)
		assert.Len(t, slots, (wh.EndHour-wh.StartHour)*60/wh.SlotMinutes)
	}
}

func TestGenerateSlots_UsesSalonCalendarDay(t *testing.T) {
	// 23:30 UTC on the 11th is already the 12th in WAT.
	date := time.Date(2026, 5, 11, 23, 30, 0, 0, time.UTC)

	slots, err := GenerateSlots(date, wat, DefaultWorkingHours())
	require.NoError(t, err)
	assert.Equal(t, at(8, 0), slots[0].Start)
}

func TestGenerateSlots_Invalid(t *testing.T) {
	_, err := GenerateSlots(time.Time{}, wat, DefaultWorkingHours())
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	for _, wh := range []WorkingHours{
		{StartHour: 18, EndHour: 8, SlotMinutes: 60},
		{StartHour: 8, EndHour: 18, SlotMinutes: 0},
		{StartHour: 8, EndHour: 18, SlotMinutes: 45},
		{StartHour: -1, EndHour: 18, SlotMinutes: 60},
		{StartHour: 8, EndHour: 25, SlotMinutes: 60},
	} {
		_, err := GenerateSlots(at(0, 0), wat, wh)
		assert.Equal(t, httperr.KindValidation, httperr.KindOf(err), "%+v", wh)
	}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	tests := []struct {
		name   string
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{"identical", at(10, 0), at(11, 0), true},
		{"inside", at(10, 15), at(10, 45), true},
		{"covers", at(9, 0), at(12, 0), true},
		{"straddles start", at(9, 30), at(10, 30), true},
		{"straddles end", at(10, 30), at(11, 30), true},
		{"touches before", at(9, 0), at(10, 0), false},
		{"touches after", at(11, 0), at(12, 0), false},
		{"disjoint", at(14, 0), at(15, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(at(10, 0), at(11, 0), tt.bStart, tt.bEnd))
		})
	}
}

func TestMarkAvailability_OneConfirmedAppointment(t *testing.T) {
	slots, err := GenerateSlots(at(0, 0), wat, DefaultWorkingHours())
	require.NoError(t, err)

	apps := []models.Appointment{
		{Date: at(10, 0), EndTime: at(11, 0), Status: string(StatusConfirmed)},
	}

	marked := MarkAvailability(slots, BookedIntervals(apps))
	require.Len(t, marked, 10)

	for _, s := range marked {
		if s.Start.Equal(at(10, 0)) {
			assert.False(t, s.Available)
			continue
		}
		assert.True(t, s.Available, "slot %s", s.Start.Format("15:04"))
	}
}

func TestMarkAvailability_NoBookings(t *testing.T) {
	slots, _ := GenerateSlots(at(0, 0), wat, DefaultWorkingHours())

	for _, s := range MarkAvailability(slots, nil) {
		assert.True(t, s.Available)
	}
}

func TestMarkAvailability_OnlyBlockingStatusesCount(t *testing.T) {
	slots, _ := GenerateSlots(at(0, 0), wat, DefaultWorkingHours())

	apps := []models.Appointment{
		{Date: at(8, 0), EndTime: at(9, 0), Status: string(StatusPending)},
		{Date: at(9, 0), EndTime: at(10, 0), Status: string(StatusCancelled)},
		{Date: at(10, 0), EndTime: at(11, 0), Status: string(StatusCompleted)},
		{Date: at(11, 0), EndTime: at(12, 0), Status: string(StatusInProgress)},
		{Date: at(12, 0), EndTime: at(13, 0), Status: string(StatusConfirmed)},
	}

	marked := MarkAvailability(slots, BookedIntervals(apps))

	want := map[int]bool{8: true, 9: true, 10: true, 11: false, 12: false, 13: true}
	for _, s := range marked {
		if exp, ok := want[s.Start.Hour()]; ok {
			assert.Equal(t, exp, s.Available, "slot %02d:00", s.Start.Hour())
		}
	}
}

func TestMarkAvailability_OverlappingBookingsAndPartialOverlap(t *testing.T) {
	slots, _ := GenerateSlots(at(0, 0), wat, DefaultWorkingHours())

	booked := []Interval{
		{Start: at(13, 30), End: at(14, 30)},
		{Start: at(13, 45), End: at(14, 15)},
	}

	marked := MarkAvailability(slots, booked)
	unavailable := 0
	for _, s := range marked {
		if !s.Available {
			unavailable++
		}
	}
	assert.Equal(t, 2, unavailable)
}

func TestMarkAvailability_Idempotent(t *testing.T) {
	slots, _ := GenerateSlots(at(0, 0), wat, DefaultWorkingHours())
	booked := []Interval{{Start: at(15, 0), End: at(16, 30)}}

	assert.Equal(t, MarkAvailability(slots, booked), MarkAvailability(slots, booked))
}

func TestWorkingHours_Contains(t *testing.T) {
	wh := DefaultWorkingHours()

	assert.True(t, wh.Contains(at(8, 0), at(9, 0), wat))
	assert.True(t, wh.Contains(at(17, 0), at(18, 0), wat))
	assert.False(t, wh.Contains(at(7, 30), at(8, 30), wat))
	assert.False(t, wh.Contains(at(17, 30), at(18, 30), wat))
}

func TestFilter_Where(t *testing.T) {
	user := uuid.New()
	from := at(0, 0)
	to := at(0, 0).AddDate(0, 0, 1)

	sql, args, err := Filter{UserID: &user, Status: "CONFIRMED", From: &from, To: &to}.Where()
	require.NoError(t, err)

	assert.Equal(t, "(user_id = ? AND status = ? AND date >= ? AND date < ?)", sql)
	assert.Equal(t, []any{user.String(), "CONFIRMED", from, to}, args)
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, Filter{}.Validate())
	assert.Error(t, Filter{Status: "DONE"}.Validate())

	from := at(12, 0)
	to := at(8, 0)
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(Filter{From: &from, To: &to}.Validate()))
}
