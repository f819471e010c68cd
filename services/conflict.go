package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tablebook/restaurant-app/models"
	"gorm.io/gorm"
)

// TimeToMinutes converts an "HH:MM" slot to minutes since midnight.
func TimeToMinutes(t string) (int, error) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", t)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", t)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", t)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", t)
	}
	return hour*60 + minute, nil
}

// SameCalendarDay compares two timestamps by calendar day only. Times are
// restaurant-local and assumed consistent, so no zone conversion happens.
func SameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// TimeDifferenceMinutes returns the absolute minute distance between two
// HH:MM slots, or -1 when either is malformed.
func TimeDifferenceMinutes(a, b string) int {
	am, err := TimeToMinutes(a)
	if err != nil {
		return -1
	}
	bm, err := TimeToMinutes(b)
	if err != nil {
		return -1
	}
	diff := am - bm
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// IsConflicting reports whether an existing booking blocks the candidate
// slot. Only pending/confirmed bookings hold their slot; a conflict needs
// the same calendar day and a time distance within the buffer. The buffer
// boundary itself conflicts, so back-to-back slots exactly bufferMinutes
// apart are not permitted.
func IsConflicting(existing models.Booking, date time.Time, timeStr string, bufferMinutes int) bool {
	if !models.IsActiveBookingStatus(existing.Status) {
		return false
	}
	if !SameCalendarDay(existing.Date, date) {
		return false
	}
	diff := TimeDifferenceMinutes(existing.Time, timeStr)
	if diff < 0 {
		return false
	}
	return diff <= bufferMinutes
}

// FindConflictingBooking looks for the first active booking on the table
// that collides with the candidate slot. excludeID drops one booking from
// consideration (a booking never conflicts with itself on update). Returns
// the conflicting booking and the minute delta, or nil when the slot is
// clear.
func FindConflictingBooking(db *gorm.DB, tableID uint, date time.Time, timeStr string, bufferMinutes int, excludeID uint) (*models.Booking, int, error) {
	var bookings []models.Booking
	query := db.Where("table_id = ? AND status IN ?", tableID,
		[]models.BookingStatus{models.BookingPending, models.BookingConfirmed})
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Order("id ASC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	for i := range bookings {
		if IsConflicting(bookings[i], date, timeStr, bufferMinutes) {
			return &bookings[i], TimeDifferenceMinutes(bookings[i].Time, timeStr), nil
		}
	}
	return nil, 0, nil
}
