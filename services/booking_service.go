package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tablebook/restaurant-app/config"
	"github.com/tablebook/restaurant-app/events"
	"github.com/tablebook/restaurant-app/models"
	"github.com/tablebook/restaurant-app/utils"
	"gorm.io/gorm"
)

// BookingService drives the booking lifecycle and keeps booking and table
// status in sync. Table release is not part of cancellation: clearing a
// table is an operational action owned by staff and the order flow.
type BookingService struct {
	DB       *gorm.DB
	Selector *TableSelector
	Notifier events.Notifier
	Config   config.BookingConfig

	// Now is swappable for lead-time tests.
	Now func() time.Time
}

func NewBookingService(db *gorm.DB, cfg config.BookingConfig, notifier events.Notifier) *BookingService {
	return &BookingService{
		DB:       db,
		Selector: NewTableSelector(db, cfg.BufferMinutes),
		Notifier: notifier,
		Config:   cfg,
		Now:      time.Now,
	}
}

type PreOrderInput struct {
	MenuID   uint   `json:"menu_id" binding:"required"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

type CreateBookingInput struct {
	CustomerID      *uint
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	Date            time.Time
	Time            string
	NumberOfGuests  int
	Notes           string
	PreOrderedItems []PreOrderInput
}

// CreateBooking validates the request, tries to reserve a table and stores
// the booking. With a table the booking is confirmed immediately; without
// one it stays pending and staff are asked to follow up. Staff are notified
// in both cases, best-effort.
func (s *BookingService) CreateBooking(in CreateBookingInput) (*models.Booking, error) {
	if in.CustomerName == "" || in.CustomerPhone == "" || in.Date.IsZero() || in.Time == "" {
		return nil, utils.NewValidationError("customer name, phone, date and time are required")
	}
	if in.NumberOfGuests < 1 || in.NumberOfGuests > 20 {
		return nil, utils.NewValidationError("number of guests must be between 1 and 20")
	}
	minutes, err := TimeToMinutes(in.Time)
	if err != nil {
		return nil, utils.NewValidationError("%v", err)
	}
	if s.Config.EnforceOpeningHours {
		hour := minutes / 60
		if hour < s.Config.OpeningHour || hour >= s.Config.ClosingHour {
			return nil, utils.NewValidationError("the restaurant is closed at %s (open %02d:00-%02d:00)",
				in.Time, s.Config.OpeningHour, s.Config.ClosingHour)
		}
	}

	booking := models.Booking{
		Code:           uuid.New().String(),
		CustomerID:     in.CustomerID,
		CustomerName:   in.CustomerName,
		CustomerPhone:  in.CustomerPhone,
		CustomerEmail:  in.CustomerEmail,
		Date:           StripTimeOfDay(in.Date),
		Time:           in.Time,
		NumberOfGuests: in.NumberOfGuests,
		Status:         models.BookingPending,
		Notes:          in.Notes,
	}
	for _, item := range in.PreOrderedItems {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		booking.PreOrderedItems = append(booking.PreOrderedItems, models.PreOrderedItem{
			MenuID:   item.MenuID,
			Quantity: qty,
			Notes:    item.Notes,
		})
	}

	table, err := s.selectAndReserve(in.NumberOfGuests, booking.Date, booking.Time)
	if err != nil {
		return nil, err
	}
	if table != nil {
		booking.TableID = &table.ID
		booking.Status = models.BookingConfirmed
	}

	if err := s.DB.Create(&booking).Error; err != nil {
		return nil, err
	}

	if table != nil {
		utils.InfoLogger.Printf("Booking %s confirmed on table %s for %d guests at %s %s",
			booking.Code, table.Name, booking.NumberOfGuests, booking.Date.Format("2006-01-02"), booking.Time)
		s.notifyStaff("manager", events.EventBookingCreated,
			"New booking from "+booking.CustomerName+" at "+booking.Time, booking)
	} else {
		utils.InfoLogger.Printf("Booking %s left pending, no suitable table for %d guests at %s %s",
			booking.Code, booking.NumberOfGuests, booking.Date.Format("2006-01-02"), booking.Time)
		s.notifyStaff("manager", events.EventBookingUnassigned,
			"Booking from "+booking.CustomerName+" at "+booking.Time+" needs manual table assignment", booking)
	}

	return &booking, nil
}

// ConfirmBooking moves a booking to confirmed. Without an explicit table it
// re-runs the selector for unassigned bookings; with one, staff override the
// capacity-first search but the slot is still conflict-checked. Confirming
// an already-confirmed booking with the same table is a no-op.
func (s *BookingService) ConfirmBooking(bookingID uint, explicitTableID *uint) (*models.Booking, error) {
	booking, err := s.loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalBookingStatus(booking.Status) {
		return nil, utils.NewStateError("booking is already %s and cannot be confirmed", booking.Status)
	}
	if booking.Status == models.BookingConfirmed && booking.TableID != nil &&
		(explicitTableID == nil || *explicitTableID == *booking.TableID) {
		return booking, nil
	}

	if explicitTableID != nil {
		return s.confirmOnTable(booking, *explicitTableID)
	}

	if booking.TableID == nil {
		table, err := s.selectAndReserve(booking.NumberOfGuests, booking.Date, booking.Time)
		if err != nil {
			return nil, err
		}
		if table == nil {
			s.notifyStaff("manager", events.EventBookingUnassigned,
				"Could not auto-assign a table for booking "+booking.Code, booking)
			return booking, nil
		}
		booking.TableID = &table.ID
	}

	booking.Status = models.BookingConfirmed
	if err := s.DB.Save(booking).Error; err != nil {
		return nil, err
	}
	s.ensureTableReserved(*booking.TableID)
	s.notifyStaff("waiter", events.EventBookingUpdated,
		"Booking "+booking.Code+" confirmed", booking)
	return booking, nil
}

// confirmOnTable applies a manual staff assignment after re-validating the
// slot against the table's active bookings.
func (s *BookingService) confirmOnTable(booking *models.Booking, tableID uint) (*models.Booking, error) {
	var table models.Table
	if err := s.DB.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("table %d not found", tableID)
		}
		return nil, err
	}
	if table.Status == models.TableOccupied {
		return nil, utils.NewStateError("table %s is currently occupied", table.Name)
	}

	conflict, diff, err := FindConflictingBooking(s.DB, table.ID, booking.Date, booking.Time, s.Config.BufferMinutes, booking.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, utils.NewConflictError(conflict.Time, diff)
	}

	if table.Status == models.TableAvailable {
		if !s.casReserve(table.ID) {
			// Lost a race for this table; re-check against the state the
			// winner left behind.
			conflict, diff, err = FindConflictingBooking(s.DB, table.ID, booking.Date, booking.Time, s.Config.BufferMinutes, booking.ID)
			if err != nil {
				return nil, err
			}
			if conflict != nil {
				return nil, utils.NewConflictError(conflict.Time, diff)
			}
		}
	}

	booking.TableID = &table.ID
	booking.Status = models.BookingConfirmed
	if err := s.DB.Save(booking).Error; err != nil {
		return nil, err
	}
	s.notifyStaff("waiter", events.EventBookingUpdated,
		"Booking "+booking.Code+" confirmed on table "+table.Name, booking)
	return booking, nil
}

type UpdateBookingInput struct {
	CustomerName   *string
	CustomerPhone  *string
	CustomerEmail  *string
	Date           *time.Time
	Time           *string
	NumberOfGuests *int
	Notes          *string
	TableID        *uint
	Status         *models.BookingStatus
	StaffID        *uint
}

// UpdateBooking edits a booking. Any change to table, date or time is
// re-validated for conflicts against the target table's other active
// bookings; a conflict rejects the whole update and leaves the booking
// untouched.
func (s *BookingService) UpdateBooking(bookingID uint, in UpdateBookingInput) (*models.Booking, error) {
	booking, err := s.loadBooking(bookingID)
	if err != nil {
		return nil, err
	}

	scheduleChange := in.Date != nil || in.Time != nil || in.TableID != nil
	if scheduleChange && models.IsTerminalBookingStatus(booking.Status) {
		return nil, utils.NewStateError("booking is %s; its table and schedule can no longer change", booking.Status)
	}
	if in.NumberOfGuests != nil && (*in.NumberOfGuests < 1 || *in.NumberOfGuests > 20) {
		return nil, utils.NewValidationError("number of guests must be between 1 and 20")
	}

	targetDate := booking.Date
	if in.Date != nil {
		targetDate = StripTimeOfDay(*in.Date)
	}
	targetTime := booking.Time
	if in.Time != nil {
		if _, err := TimeToMinutes(*in.Time); err != nil {
			return nil, utils.NewValidationError("%v", err)
		}
		targetTime = *in.Time
	}
	targetTableID := booking.TableID
	if in.TableID != nil {
		targetTableID = in.TableID
	}

	if scheduleChange && targetTableID != nil {
		var table models.Table
		if err := s.DB.First(&table, *targetTableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.NewNotFoundError("table %d not found", *targetTableID)
			}
			return nil, err
		}
		conflict, diff, err := FindConflictingBooking(s.DB, table.ID, targetDate, targetTime, s.Config.BufferMinutes, booking.ID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, utils.NewConflictError(conflict.Time, diff)
		}
	}

	if in.Status != nil {
		if !models.IsValidBookingStatus(*in.Status) {
			return nil, utils.NewValidationError("unknown booking status %q", *in.Status)
		}
		if !models.CanTransitionBooking(booking.Status, *in.Status) {
			return nil, utils.NewStateError("cannot move booking from %s to %s", booking.Status, *in.Status)
		}
		booking.Status = *in.Status
	}

	if in.CustomerName != nil {
		booking.CustomerName = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		booking.CustomerPhone = *in.CustomerPhone
	}
	if in.CustomerEmail != nil {
		booking.CustomerEmail = *in.CustomerEmail
	}
	if in.Notes != nil {
		booking.Notes = *in.Notes
	}
	if in.StaffID != nil {
		booking.StaffID = in.StaffID
	}
	booking.Date = targetDate
	booking.Time = targetTime
	booking.TableID = targetTableID

	if err := s.DB.Save(booking).Error; err != nil {
		return nil, err
	}

	if booking.Status == models.BookingConfirmed && booking.TableID != nil {
		s.ensureTableReserved(*booking.TableID)
	}
	s.notifyStaff("manager", events.EventBookingUpdated,
		"Booking "+booking.Code+" updated", booking)
	return booking, nil
}

// UpdateBookingStatus is the staff status-transition entry point.
func (s *BookingService) UpdateBookingStatus(bookingID uint, status models.BookingStatus, tableID, staffID *uint) (*models.Booking, error) {
	return s.UpdateBooking(bookingID, UpdateBookingInput{
		Status:  &status,
		TableID: tableID,
		StaffID: staffID,
	})
}

// CancelByCustomer cancels the requester's own booking, honoring the
// cancellation lead time. The table is deliberately not released here;
// freeing tables is a staff workflow.
func (s *BookingService) CancelByCustomer(bookingID uint, requesterID uint) (*models.Booking, error) {
	booking, err := s.loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID == nil || *booking.CustomerID != requesterID {
		return nil, utils.NewForbiddenError("you are not allowed to cancel this booking")
	}
	if !models.IsActiveBookingStatus(booking.Status) {
		return nil, utils.NewStateError("booking is already %s and cannot be cancelled", booking.Status)
	}

	slot, err := CombineDateTime(booking.Date, booking.Time)
	if err != nil {
		return nil, utils.NewValidationError("%v", err)
	}
	// Exactly at the boundary cancellation is still allowed.
	if slot.Sub(s.Now()) < s.Config.CancellationLead {
		return nil, utils.NewForbiddenError("bookings can only be cancelled at least %v before the booked time",
			s.Config.CancellationLead)
	}

	booking.Status = models.BookingCancelledByCustomer
	if err := s.DB.Save(booking).Error; err != nil {
		return nil, err
	}
	s.notifyStaff("manager", events.EventBookingCancelled,
		"Booking "+booking.Code+" cancelled by customer", booking)
	return booking, nil
}

// selectAndReserve runs the selector and flips the chosen available table to
// reserved with a conditional write. Losing the compare-and-swap means a
// concurrent request took the table first; one retry against refreshed
// state is enough under low contention, after which "no table" is the
// correct answer rather than a double assignment.
func (s *BookingService) selectAndReserve(partySize int, date time.Time, timeStr string) (*models.Table, error) {
	for attempt := 0; attempt < 2; attempt++ {
		table, err := s.Selector.SelectTable(partySize, date, timeStr)
		if err != nil {
			return nil, err
		}
		if table == nil {
			return nil, nil
		}
		if table.Status == models.TableReserved {
			// Shared with a time-disjoint booking; nothing to flip.
			return table, nil
		}
		if s.casReserve(table.ID) {
			table.Status = models.TableReserved
			return table, nil
		}
	}
	return nil, nil
}

// casReserve flips available -> reserved only if the row is still
// available. RowsAffected tells us whether we won the race.
func (s *BookingService) casReserve(tableID uint) bool {
	res := s.DB.Model(&models.Table{}).
		Where("id = ? AND status = ?", tableID, models.TableAvailable).
		Update("status", models.TableReserved)
	if res.Error != nil {
		utils.ErrorLogger.Printf("Failed to reserve table %d: %v", tableID, res.Error)
		return false
	}
	return res.RowsAffected == 1
}

// ensureTableReserved marks an available table reserved; a table that is
// already reserved or occupied is left alone.
func (s *BookingService) ensureTableReserved(tableID uint) {
	s.casReserve(tableID)
}

func (s *BookingService) loadBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("booking %d not found", id)
		}
		return nil, err
	}
	return &booking, nil
}

// notifyStaff persists a notification row and pushes it over the hub.
// Both are best-effort: a failed write or send is logged and never fails
// the booking operation.
func (s *BookingService) notifyStaff(role, event, message string, payload interface{}) {
	notif := models.Notification{
		Role:    role,
		Event:   event,
		Message: message,
	}
	if err := s.DB.Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to persist %s notification: %v", event, err)
	}
	if s.Notifier != nil {
		s.Notifier.Notify(role, event, payload)
	}
}

// StripTimeOfDay normalizes a timestamp to midnight, keeping only the
// calendar day.
func StripTimeOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CombineDateTime builds the full timestamp of a booking slot from its
// stored day and HH:MM time.
func CombineDateTime(date time.Time, timeStr string) (time.Time, error) {
	minutes, err := TimeToMinutes(timeStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location()), nil
}
