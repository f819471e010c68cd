package models

import "time"

// Notification is the persisted copy of an event pushed over the websocket
// hub. UserID targets one user; Role targets everyone holding the role.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    *uint      `json:"user_id,omitempty"`
	User      *User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"user,omitempty"`
	Role      string     `gorm:"type:varchar(50)" json:"role,omitempty"`
	Event     string     `gorm:"type:varchar(50);not null" json:"event"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}
