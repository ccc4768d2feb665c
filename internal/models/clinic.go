package models

import "time"

type Clinic struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Address   string    `gorm:"not null" json:"address"`
	Phone     string    `gorm:"not null" json:"phone"`
	Email     string    `gorm:"not null" json:"email"`
	Latitude  float64   `gorm:"type:numeric(9,6);not null" json:"latitude"`
	Longitude float64   `gorm:"type:numeric(9,6);not null" json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Clinic) TableName() string { return "clinics" }

// OwnerID is zero: clinics are shared directory entries.
func (Clinic) OwnerID() uint { return 0 }
