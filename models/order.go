package models

import "time"

// Order is the dine-in order attached to an occupied table. Only the parts
// the table lifecycle needs live here; pricing and receipts belong to the
// payment system.
type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableID     uint      `gorm:"not null;index" json:"table_id"`
	Table       Table     `gorm:"foreignKey:TableID" json:"table"`
	StaffID     *uint     `gorm:"index" json:"staff_id,omitempty"`
	Staff       *User     `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	Status      string    `gorm:"type:varchar(20);not null;default:'open'" json:"status"` // open, completed
	TotalAmount float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
