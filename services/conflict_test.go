package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tablebook/restaurant-app/models"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"19:45", 1185, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"19:60", 0, true},
		{"1900", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := TimeToMinutes(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
		} else {
			assert.NoError(t, err, "input %q", tt.in)
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestSameCalendarDay(t *testing.T) {
	a := time.Date(2024, 6, 1, 23, 59, 0, 0, time.Local)
	b := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
	c := time.Date(2024, 6, 2, 0, 0, 0, 0, time.Local)

	assert.True(t, SameCalendarDay(a, b))
	assert.False(t, SameCalendarDay(a, c))
}

func TestIsConflicting(t *testing.T) {
	date := day(2024, 6, 1)
	booking := func(status models.BookingStatus, timeStr string) models.Booking {
		return models.Booking{Status: status, Date: date, Time: timeStr}
	}

	// Within the buffer on the same day.
	assert.True(t, IsConflicting(booking(models.BookingConfirmed, "19:00"), date, "19:40", 45))
	// Exactly at the buffer boundary still conflicts.
	assert.True(t, IsConflicting(booking(models.BookingConfirmed, "19:00"), date, "19:45", 45))
	// One minute past the buffer is clear.
	assert.False(t, IsConflicting(booking(models.BookingConfirmed, "19:00"), date, "19:46", 45))
	// Clearly outside the buffer.
	assert.False(t, IsConflicting(booking(models.BookingConfirmed, "19:00"), date, "20:10", 45))
	// Pending bookings hold their slot too.
	assert.True(t, IsConflicting(booking(models.BookingPending, "19:00"), date, "19:10", 45))
	// Same time on a different day never conflicts.
	assert.False(t, IsConflicting(booking(models.BookingConfirmed, "19:00"), day(2024, 6, 2), "19:00", 45))
	// Terminal statuses never conflict.
	for _, status := range []models.BookingStatus{
		models.BookingCancelled,
		models.BookingCancelledByCustomer,
		models.BookingCompleted,
		models.BookingNoShow,
	} {
		assert.False(t, IsConflicting(booking(status, "19:00"), date, "19:00", 45), "status %s", status)
	}
}

func TestTimeDifferenceMinutes(t *testing.T) {
	assert.Equal(t, 40, TimeDifferenceMinutes("19:00", "19:40"))
	assert.Equal(t, 40, TimeDifferenceMinutes("19:40", "19:00"))
	assert.Equal(t, 0, TimeDifferenceMinutes("19:00", "19:00"))
	assert.Equal(t, -1, TimeDifferenceMinutes("bad", "19:00"))
}

func TestFindConflictingBookingExcludesSelf(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "T1", 4, models.TableReserved)
	existing := seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingConfirmed)

	// The booking must not conflict with itself when re-validated.
	conflict, _, err := FindConflictingBooking(db, table.ID, existing.Date, existing.Time, 45, existing.ID)
	assert.NoError(t, err)
	assert.Nil(t, conflict)

	// Another booking on the same slot does conflict.
	conflict, diff, err := FindConflictingBooking(db, table.ID, existing.Date, "19:30", 45, 0)
	assert.NoError(t, err)
	if assert.NotNil(t, conflict) {
		assert.Equal(t, existing.ID, conflict.ID)
		assert.Equal(t, 30, diff)
	}
}
