package models

import "time"

// Booking holds a reservation request. Date carries the calendar day only
// (time of day stripped); Time is the restaurant-local slot as "HH:MM".
type Booking struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Code            string           `gorm:"type:varchar(36);uniqueIndex;not null" json:"code"`
	CustomerID      *uint            `gorm:"index" json:"customer_id,omitempty"`
	Customer        *User            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName    string           `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerPhone   string           `gorm:"type:varchar(20);not null" json:"customer_phone"`
	CustomerEmail   string           `gorm:"type:varchar(100)" json:"customer_email,omitempty"`
	Date            time.Time        `gorm:"not null;index" json:"date"`
	Time            string           `gorm:"type:varchar(5);not null" json:"time"`
	NumberOfGuests  int              `gorm:"not null" json:"number_of_guests"`
	Status          BookingStatus    `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`
	TableID         *uint            `gorm:"index" json:"table_id,omitempty"`
	Table           *Table           `gorm:"foreignKey:TableID" json:"table,omitempty"`
	StaffID         *uint            `json:"staff_id,omitempty"`
	Staff           *User            `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	Notes           string           `gorm:"type:text" json:"notes,omitempty"`
	PreOrderedItems []PreOrderedItem `gorm:"foreignKey:BookingID" json:"pre_ordered_items,omitempty"`
	CreatedAt       time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null" json:"updated_at"`
}

type PreOrderedItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	BookingID uint   `gorm:"not null;index" json:"booking_id"`
	MenuID    uint   `gorm:"not null" json:"menu_id"`
	Menu      Menu   `gorm:"foreignKey:MenuID" json:"menu"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`
	Notes     string `gorm:"type:text" json:"notes,omitempty"`
}
