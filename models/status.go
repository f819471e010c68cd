package models

// BookingStatus is the closed set of booking states.
type BookingStatus string

const (
	BookingPending             BookingStatus = "pending"
	BookingConfirmed           BookingStatus = "confirmed"
	BookingCancelled           BookingStatus = "cancelled"
	BookingCancelledByCustomer BookingStatus = "cancelled_by_customer"
	BookingCompleted           BookingStatus = "completed"
	BookingNoShow              BookingStatus = "no-show"
)

// TableStatus is the closed set of table states.
type TableStatus string

const (
	TableAvailable     TableStatus = "available"
	TableOccupied      TableStatus = "occupied"
	TableReserved      TableStatus = "reserved"
	TableUnavailable   TableStatus = "unavailable"
	TableNeedsCleaning TableStatus = "needs_cleaning"
)

// bookingTransitions lists the legal status moves. Terminal states have no
// outgoing edges, so any mutation against them fails the check.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled, BookingCancelledByCustomer},
	BookingConfirmed: {BookingCompleted, BookingCancelled, BookingNoShow, BookingCancelledByCustomer},
}

var tableTransitions = map[TableStatus][]TableStatus{
	TableAvailable:     {TableOccupied, TableReserved, TableUnavailable},
	TableReserved:      {TableOccupied, TableAvailable, TableUnavailable},
	TableOccupied:      {TableNeedsCleaning, TableAvailable},
	TableNeedsCleaning: {TableAvailable, TableUnavailable},
	TableUnavailable:   {TableAvailable},
}

func IsValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled,
		BookingCancelledByCustomer, BookingCompleted, BookingNoShow:
		return true
	}
	return false
}

func IsValidTableStatus(s TableStatus) bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableUnavailable, TableNeedsCleaning:
		return true
	}
	return false
}

// CanTransitionBooking reports whether a booking may move from -> to.
func CanTransitionBooking(from, to BookingStatus) bool {
	if from == to {
		return true
	}
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionTable reports whether a table may move from -> to.
func CanTransitionTable(from, to TableStatus) bool {
	if from == to {
		return true
	}
	for _, next := range tableTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalBookingStatus reports whether the status freezes further
// table-related mutation of the booking.
func IsTerminalBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingCancelled, BookingCancelledByCustomer, BookingCompleted, BookingNoShow:
		return true
	}
	return false
}

// IsActiveBookingStatus reports whether the booking still holds its slot and
// therefore participates in conflict checks.
func IsActiveBookingStatus(s BookingStatus) bool {
	return s == BookingPending || s == BookingConfirmed
}
