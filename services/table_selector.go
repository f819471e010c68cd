package services

import (
	"time"

	"github.com/tablebook/restaurant-app/models"
	"gorm.io/gorm"
)

// TableSelector finds the best table for a party at a given slot.
type TableSelector struct {
	DB            *gorm.DB
	BufferMinutes int
}

func NewTableSelector(db *gorm.DB, bufferMinutes int) *TableSelector {
	return &TableSelector{DB: db, BufferMinutes: bufferMinutes}
}

// SelectTable returns the smallest sufficient table for the party, or nil
// when nothing fits.
//
// Pass 1: tables already available, smallest capacity first. Availability
// status guarantees no conflict, so the first hit wins.
// Pass 2: reserved tables with sufficient capacity; one is usable when none
// of its active bookings collide with the candidate slot, so time-disjoint
// bookings can share a table. Ties on capacity break by id for
// deterministic results.
func (s *TableSelector) SelectTable(partySize int, date time.Time, timeStr string) (*models.Table, error) {
	var available []models.Table
	err := s.DB.
		Where("status = ? AND capacity >= ?", models.TableAvailable, partySize).
		Order("capacity ASC, id ASC").
		Find(&available).Error
	if err != nil {
		return nil, err
	}
	if len(available) > 0 {
		return &available[0], nil
	}

	var reserved []models.Table
	err = s.DB.
		Where("status = ? AND capacity >= ?", models.TableReserved, partySize).
		Order("capacity ASC, id ASC").
		Find(&reserved).Error
	if err != nil {
		return nil, err
	}

	for i := range reserved {
		conflict, _, err := FindConflictingBooking(s.DB, reserved[i].ID, date, timeStr, s.BufferMinutes, 0)
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			return &reserved[i], nil
		}
	}

	return nil, nil
}
