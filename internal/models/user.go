package models

import "time"

// User represents a community member.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	Username     string `gorm:"size:50;uniqueIndex;not null"`
	Region       string `gorm:"size:100"`
	PasswordHash string `gorm:"size:255;not null"`
	IsVerified   bool   `gorm:"default:false"`
	IsAdmin      bool   `gorm:"default:false;index"`

	// set while an email verification is pending, cleared on success
	VerificationToken *string `gorm:"size:512"`

	// Google subject id; users created through Google are pre-verified
	// and keep a random placeholder password
	GoogleID *string `gorm:"size:100;uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
