package models

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"not null" json:"email"`
	Name         string     `gorm:"not null" json:"name"`
	PasswordHash string     `gorm:"not null" json:"-"`
	LastLoginAt  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

func (User) TableName() string { return "users" }

// OwnerID reports the account itself as the owner of a user record.
func (user User) OwnerID() uint { return user.ID }

type Profile struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex" json:"user"`
	Bio             string    `gorm:"not null" json:"bio"`
	Location        string    `gorm:"not null" json:"location"`
	ProfilePicture  string    `gorm:"not null;default:''" json:"profile_picture"`
	PrivacySettings string    `gorm:"not null" json:"privacy_settings"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func (profile Profile) OwnerID() uint { return profile.UserID }
