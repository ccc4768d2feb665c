package models

import "time"

type Professional struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex" json:"user"`
	Specialization string    `gorm:"not null" json:"specialization"`
	Bio            string    `gorm:"not null" json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Professional) TableName() string { return "professionals" }

func (professional Professional) OwnerID() uint { return professional.UserID }

type Appointment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user"`
	ProfessionalID uint      `gorm:"not null;index" json:"professional"`
	StartTime      time.Time `gorm:"not null" json:"start_time"`
	EndTime        time.Time `gorm:"not null" json:"end_time"`
	Status         string    `gorm:"not null" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

func (appointment Appointment) OwnerID() uint { return appointment.UserID }
