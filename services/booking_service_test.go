package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablebook/restaurant-app/events"
	"github.com/tablebook/restaurant-app/models"
	"github.com/tablebook/restaurant-app/utils"
)

func validInput() CreateBookingInput {
	return CreateBookingInput{
		CustomerName:   "Dina",
		CustomerPhone:  "0812345678",
		CustomerEmail:  "dina@example.com",
		Date:           day(2024, 6, 1),
		Time:           "19:00",
		NumberOfGuests: 3,
	}
}

func assertAppErrorKind(t *testing.T, err error, kind utils.ErrorKind) *utils.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind)
	return appErr
}

func TestCreateBookingAssignsAndConfirms(t *testing.T) {
	db := setupTestDB(t)
	seedTable(t, db, "A", 2, models.TableAvailable)
	b := seedTable(t, db, "B", 4, models.TableAvailable)
	svc := newTestBookingService(db)

	booking, err := svc.CreateBooking(validInput())
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, booking.Status)
	require.NotNil(t, booking.TableID)
	assert.Equal(t, b.ID, *booking.TableID)
	assert.NotEmpty(t, booking.Code)

	var table models.Table
	require.NoError(t, db.First(&table, b.ID).Error)
	assert.Equal(t, models.TableReserved, table.Status)

	var notifCount int64
	db.Model(&models.Notification{}).Where("event = ?", events.EventBookingCreated).Count(&notifCount)
	assert.EqualValues(t, 1, notifCount)
}

func TestCreateBookingStaysPendingWithoutTable(t *testing.T) {
	db := setupTestDB(t)
	seedTable(t, db, "A", 2, models.TableAvailable)
	svc := newTestBookingService(db)

	in := validInput()
	in.NumberOfGuests = 6
	booking, err := svc.CreateBooking(in)
	require.NoError(t, err)

	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Nil(t, booking.TableID)

	var notifCount int64
	db.Model(&models.Notification{}).Where("event = ?", events.EventBookingUnassigned).Count(&notifCount)
	assert.EqualValues(t, 1, notifCount)
}

func TestCreateBookingValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBookingService(db)

	in := validInput()
	in.CustomerPhone = ""
	_, err := svc.CreateBooking(in)
	assertAppErrorKind(t, err, utils.KindValidation)

	in = validInput()
	in.NumberOfGuests = 25
	_, err = svc.CreateBooking(in)
	assertAppErrorKind(t, err, utils.KindValidation)

	in = validInput()
	in.Time = "25:99"
	_, err = svc.CreateBooking(in)
	assertAppErrorKind(t, err, utils.KindValidation)
}

func TestCreateBookingOpeningHours(t *testing.T) {
	db := setupTestDB(t)
	seedTable(t, db, "A", 4, models.TableAvailable)
	svc := newTestBookingService(db)
	svc.Config.EnforceOpeningHours = true

	in := validInput()
	in.Time = "08:30"
	_, err := svc.CreateBooking(in)
	assertAppErrorKind(t, err, utils.KindValidation)

	in.Time = "10:00"
	booking, err := svc.CreateBooking(in)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
}

func TestCreateBookingStoresPreOrders(t *testing.T) {
	db := setupTestDB(t)
	seedTable(t, db, "A", 4, models.TableAvailable)
	menu := models.Menu{Name: "Nasi Goreng", Price: 25000}
	require.NoError(t, db.Create(&menu).Error)
	svc := newTestBookingService(db)

	in := validInput()
	in.PreOrderedItems = []PreOrderInput{{MenuID: menu.ID, Quantity: 0, Notes: "less spicy"}}
	booking, err := svc.CreateBooking(in)
	require.NoError(t, err)

	var items []models.PreOrderedItem
	require.NoError(t, db.Where("booking_id = ?", booking.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, menu.ID, items[0].MenuID)
	// Zero quantity is bumped to one.
	assert.Equal(t, 1, items[0].Quantity)
}

func TestConfirmBookingIdempotent(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	booking := seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingConfirmed)
	svc := newTestBookingService(db)

	got, err := svc.ConfirmBooking(booking.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	require.NotNil(t, got.TableID)
	assert.Equal(t, table.ID, *got.TableID)

	// Same table explicitly is also a no-op.
	got, err = svc.ConfirmBooking(booking.ID, &table.ID)
	require.NoError(t, err)
	assert.Equal(t, table.ID, *got.TableID)
}

func TestConfirmBookingAssignsPending(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableAvailable)
	svc := newTestBookingService(db)

	booking := models.Booking{
		Code: "pending-1", CustomerName: "Bayu", CustomerPhone: "0811",
		Date: day(2024, 6, 1), Time: "19:00", NumberOfGuests: 4,
		Status: models.BookingPending,
	}
	require.NoError(t, db.Create(&booking).Error)

	got, err := svc.ConfirmBooking(booking.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	require.NotNil(t, got.TableID)
	assert.Equal(t, table.ID, *got.TableID)

	var fresh models.Table
	require.NoError(t, db.First(&fresh, table.ID).Error)
	assert.Equal(t, models.TableReserved, fresh.Status)
}

func TestConfirmBookingNoTableStaysPending(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBookingService(db)

	booking := models.Booking{
		Code: "pending-2", CustomerName: "Bayu", CustomerPhone: "0811",
		Date: day(2024, 6, 1), Time: "19:00", NumberOfGuests: 4,
		Status: models.BookingPending,
	}
	require.NoError(t, db.Create(&booking).Error)

	got, err := svc.ConfirmBooking(booking.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)
	assert.Nil(t, got.TableID)
}

func TestConfirmBookingExplicitTableConflict(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingConfirmed)
	svc := newTestBookingService(db)

	booking := models.Booking{
		Code: "pending-3", CustomerName: "Citra", CustomerPhone: "0812",
		Date: day(2024, 6, 1), Time: "19:40", NumberOfGuests: 2,
		Status: models.BookingPending,
	}
	require.NoError(t, db.Create(&booking).Error)

	_, err := svc.ConfirmBooking(booking.ID, &table.ID)
	appErr := assertAppErrorKind(t, err, utils.KindConflict)
	assert.Equal(t, "19:00", appErr.ConflictTime)
	assert.Equal(t, 40, appErr.TimeDifferenceMinutes)
}

func TestConfirmBookingOccupiedTableRejected(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableOccupied)
	svc := newTestBookingService(db)

	booking := models.Booking{
		Code: "pending-4", CustomerName: "Citra", CustomerPhone: "0812",
		Date: day(2024, 6, 1), Time: "19:40", NumberOfGuests: 2,
		Status: models.BookingPending,
	}
	require.NoError(t, db.Create(&booking).Error)

	_, err := svc.ConfirmBooking(booking.ID, &table.ID)
	assertAppErrorKind(t, err, utils.KindState)
}

func TestConfirmBookingTerminalRejected(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	booking := seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingCancelled)
	svc := newTestBookingService(db)

	_, err := svc.ConfirmBooking(booking.ID, nil)
	assertAppErrorKind(t, err, utils.KindState)
}

func TestUpdateBookingConflictRejected(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingConfirmed)
	second := seedBooking(t, db, table.ID, day(2024, 6, 1), "21:00", models.BookingConfirmed)
	svc := newTestBookingService(db)

	newTime := "19:30"
	_, err := svc.UpdateBooking(second.ID, UpdateBookingInput{Time: &newTime})
	appErr := assertAppErrorKind(t, err, utils.KindConflict)
	assert.Equal(t, 30, appErr.TimeDifferenceMinutes)

	// The rejected update must leave the booking untouched.
	var fresh models.Booking
	require.NoError(t, db.First(&fresh, second.ID).Error)
	assert.Equal(t, "21:00", fresh.Time)
}

func TestUpdateBookingMoveToFreeSlot(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingConfirmed)
	second := seedBooking(t, db, table.ID, day(2024, 6, 1), "21:00", models.BookingConfirmed)
	svc := newTestBookingService(db)

	newTime := "20:00"
	got, err := svc.UpdateBooking(second.ID, UpdateBookingInput{Time: &newTime})
	require.NoError(t, err)
	assert.Equal(t, "20:00", got.Time)
}

func TestUpdateBookingIllegalTransition(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	booking := seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingCompleted)
	svc := newTestBookingService(db)

	status := models.BookingConfirmed
	_, err := svc.UpdateBooking(booking.ID, UpdateBookingInput{Status: &status})
	assertAppErrorKind(t, err, utils.KindState)
}

func TestUpdateBookingScheduleFrozenWhenTerminal(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	booking := seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingCancelled)
	svc := newTestBookingService(db)

	newTime := "20:00"
	_, err := svc.UpdateBooking(booking.ID, UpdateBookingInput{Time: &newTime})
	assertAppErrorKind(t, err, utils.KindState)

	// Contact details may still be corrected.
	name := "Corrected Name"
	got, err := svc.UpdateBooking(booking.ID, UpdateBookingInput{CustomerName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Corrected Name", got.CustomerName)
}

func TestUpdateBookingStatusNoShow(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	booking := seedBooking(t, db, table.ID, day(2024, 6, 1), "19:00", models.BookingConfirmed)
	svc := newTestBookingService(db)

	got, err := svc.UpdateBookingStatus(booking.ID, models.BookingNoShow, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.BookingNoShow, got.Status)
}

func TestCancelByCustomerLeadTime(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	customer := models.User{Name: "Dina", Email: "dina@example.com", Password: "x", Role: "customer"}
	require.NoError(t, db.Create(&customer).Error)

	svc := newTestBookingService(db)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	svc.Now = func() time.Time { return now }

	mkBooking := func(timeStr string) models.Booking {
		booking := seedBooking(t, db, table.ID, day(2024, 6, 1), timeStr, models.BookingConfirmed)
		booking.CustomerID = &customer.ID
		require.NoError(t, db.Save(&booking).Error)
		return booking
	}

	// 1h59m ahead: too late to cancel.
	late := mkBooking("11:59")
	_, err := svc.CancelByCustomer(late.ID, customer.ID)
	assertAppErrorKind(t, err, utils.KindForbidden)

	// Exactly 2h ahead: still allowed.
	boundary := mkBooking("12:00")
	got, err := svc.CancelByCustomer(boundary.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelledByCustomer, got.Status)

	// Well ahead: allowed, and the table stays reserved.
	early := mkBooking("14:00")
	_, err = svc.CancelByCustomer(early.ID, customer.ID)
	require.NoError(t, err)

	var fresh models.Table
	require.NoError(t, db.First(&fresh, table.ID).Error)
	assert.Equal(t, models.TableReserved, fresh.Status)
}

func TestCancelByCustomerOwnership(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	customer := models.User{Name: "Dina", Email: "dina@example.com", Password: "x", Role: "customer"}
	require.NoError(t, db.Create(&customer).Error)
	other := models.User{Name: "Eko", Email: "eko@example.com", Password: "x", Role: "customer"}
	require.NoError(t, db.Create(&other).Error)

	booking := seedBooking(t, db, table.ID, day(2030, 6, 1), "19:00", models.BookingConfirmed)
	booking.CustomerID = &customer.ID
	require.NoError(t, db.Save(&booking).Error)

	svc := newTestBookingService(db)
	_, err := svc.CancelByCustomer(booking.ID, other.ID)
	assertAppErrorKind(t, err, utils.KindForbidden)

	// Guest bookings carry no owner and cannot be cancelled this way.
	guest := seedBooking(t, db, table.ID, day(2030, 6, 2), "19:00", models.BookingConfirmed)
	_, err = svc.CancelByCustomer(guest.ID, customer.ID)
	assertAppErrorKind(t, err, utils.KindForbidden)
}

func TestCancelByCustomerAlreadyCancelled(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableReserved)
	customer := models.User{Name: "Dina", Email: "dina2@example.com", Password: "x", Role: "customer"}
	require.NoError(t, db.Create(&customer).Error)

	booking := seedBooking(t, db, table.ID, day(2030, 6, 1), "19:00", models.BookingCancelled)
	booking.CustomerID = &customer.ID
	require.NoError(t, db.Save(&booking).Error)

	svc := newTestBookingService(db)
	_, err := svc.CancelByCustomer(booking.ID, customer.ID)
	assertAppErrorKind(t, err, utils.KindState)
}

func TestCasReserveLosesWhenNotAvailable(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "A", 4, models.TableAvailable)
	svc := newTestBookingService(db)

	assert.True(t, svc.casReserve(table.ID))
	// Second attempt finds the row already reserved.
	assert.False(t, svc.casReserve(table.ID))
}

func TestBookingNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBookingService(db)

	_, err := svc.ConfirmBooking(999, nil)
	assertAppErrorKind(t, err, utils.KindNotFound)
}
