package models

import "time"

// Trick is a skateboarding trick post with a video link.
type Trick struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:100;not null"`
	Description string `gorm:"type:text;not null"`
	VideoURL    string `gorm:"size:255;not null"`
	Difficulty  string `gorm:"size:50;not null;default:beginner"`
	UserID      uint   `gorm:"index;not null"`
	CreatedAt   time.Time

	User User
}
