package models

import "time"

// Table is a physical table. CurrentOrderID is non-nil only while the table
// is occupied; every transition away from occupied must clear it.
type Table struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Name           string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Capacity       int         `gorm:"not null" json:"capacity"`
	Status         TableStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	Location       string      `gorm:"type:varchar(50)" json:"location"`
	CurrentOrderID *uint       `gorm:"index" json:"current_order_id,omitempty"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}
