package models

import "time"

type Assessment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user"`
	Type      string    `gorm:"not null" json:"type"`
	Result    string    `gorm:"not null" json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

func (Assessment) TableName() string { return "assessments" }

func (assessment Assessment) OwnerID() uint { return assessment.UserID }

type HealthData struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user"`
	Mood      string    `gorm:"not null" json:"mood"`
	Symptoms  string    `gorm:"not null" json:"symptoms"`
	CreatedAt time.Time `json:"created_at"`
}

func (HealthData) TableName() string { return "health_data" }

func (entry HealthData) OwnerID() uint { return entry.UserID }

type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user"`
	Message   string    `gorm:"not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (Feedback) TableName() string { return "feedback" }

func (feedback Feedback) OwnerID() uint { return feedback.UserID }
