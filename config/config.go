package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database from environment settings. DB_DRIVER selects
// mysql (production) or sqlite (local development, the default).
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")
	if driver == "mysql" {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			envOr("DB_HOST", "127.0.0.1"),
			envOr("DB_PORT", "3306"),
			envOr("DB_NAME", "restaurant"),
		)
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}

	return gorm.Open(sqlite.Open(envOr("DB_PATH", "restaurant.db")), &gorm.Config{})
}

// BookingConfig carries the tunable policy values of the booking engine.
// The buffer between successive bookings on one table and the customer
// cancellation lead time are deployment policy, not code.
type BookingConfig struct {
	// BufferMinutes is the minimum gap between two bookings on the same
	// table on the same day; a delta equal to the buffer still conflicts.
	BufferMinutes int
	// CancellationLead is how long before the booked slot a customer may
	// still cancel. Exactly at the boundary cancellation is allowed.
	CancellationLead time.Duration
	// Opening hours, enforced only when EnforceOpeningHours is set.
	OpeningHour         int
	ClosingHour         int
	EnforceOpeningHours bool
}

func LoadBookingConfig() BookingConfig {
	return BookingConfig{
		BufferMinutes:       envIntOr("BOOKING_BUFFER_MINUTES", 45),
		CancellationLead:    time.Duration(envIntOr("CANCELLATION_LEAD_HOURS", 2)) * time.Hour,
		OpeningHour:         envIntOr("OPENING_HOUR", 10),
		ClosingHour:         envIntOr("CLOSING_HOUR", 22),
		EnforceOpeningHours: os.Getenv("ENFORCE_OPENING_HOURS") == "true",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
