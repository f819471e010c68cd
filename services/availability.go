package services

import (
	"time"

	"github.com/tablebook/restaurant-app/models"
	"gorm.io/gorm"
)

// AvailabilityService answers "which tables fit N guests at time T",
// annotating the ones that do not with the booking in the way. Both the
// customer booking form and the staff table board read from it.
type AvailabilityService struct {
	DB            *gorm.DB
	BufferMinutes int
}

func NewAvailabilityService(db *gorm.DB, bufferMinutes int) *AvailabilityService {
	return &AvailabilityService{DB: db, BufferMinutes: bufferMinutes}
}

// UnavailableTable explains why a sufficient-capacity table cannot take the
// requested slot.
type UnavailableTable struct {
	Table                 models.Table    `json:"table"`
	ConflictingBooking    *models.Booking `json:"conflicting_booking,omitempty"`
	TimeDifferenceMinutes int             `json:"time_difference_minutes"`
}

type AvailabilityResult struct {
	Available   []models.Table     `json:"tables"`
	Unavailable []UnavailableTable `json:"unavailable_tables"`
}

// GetAvailableTables partitions every sufficient-capacity, non-unavailable
// table into available or unavailable for the slot. Each table lands in
// exactly one list and capacity ordering is preserved in both.
func (s *AvailabilityService) GetAvailableTables(date time.Time, timeStr string, partySize int) (*AvailabilityResult, error) {
	var tables []models.Table
	query := s.DB.Where("status <> ?", models.TableUnavailable)
	if partySize > 0 {
		query = query.Where("capacity >= ?", partySize)
	}
	if err := query.Order("capacity ASC, id ASC").Find(&tables).Error; err != nil {
		return nil, err
	}

	result := &AvailabilityResult{
		Available:   []models.Table{},
		Unavailable: []UnavailableTable{},
	}
	for _, table := range tables {
		conflict, diff, err := FindConflictingBooking(s.DB, table.ID, date, timeStr, s.BufferMinutes, 0)
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			result.Available = append(result.Available, table)
		} else {
			result.Unavailable = append(result.Unavailable, UnavailableTable{
				Table:                 table,
				ConflictingBooking:    conflict,
				TimeDifferenceMinutes: diff,
			})
		}
	}
	return result, nil
}

// CheckTable reports whether one table can take the slot, with the
// conflicting booking when it cannot.
func (s *AvailabilityService) CheckTable(tableID uint, date time.Time, timeStr string) (*models.Booking, int, error) {
	return FindConflictingBooking(s.DB, tableID, date, timeStr, s.BufferMinutes, 0)
}

// UpcomingReservation is a booking on a table within the lookahead window.
type UpcomingReservation struct {
	models.Booking
	MinutesUntil int `json:"minutes_until"`
}

// UpcomingReservations lists the table's active bookings starting within
// the next 24 hours, soonest first.
func (s *AvailabilityService) UpcomingReservations(tableID uint, now time.Time) ([]UpcomingReservation, error) {
	var bookings []models.Booking
	err := s.DB.
		Where("table_id = ? AND status IN ? AND date >= ?", tableID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
			StripTimeOfDay(now)).
		Order("date ASC, time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	upcoming := []UpcomingReservation{}
	for _, booking := range bookings {
		slot, err := CombineDateTime(booking.Date, booking.Time)
		if err != nil {
			continue
		}
		until := slot.Sub(now)
		if until > 0 && until <= 24*time.Hour {
			upcoming = append(upcoming, UpcomingReservation{
				Booking:      booking,
				MinutesUntil: int(until.Minutes()),
			})
		}
	}
	return upcoming, nil
}
