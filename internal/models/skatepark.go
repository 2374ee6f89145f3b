package models

import "time"

// Skatepark is a spot on the map. CreatedBy is nullable, parks can be
// submitted anonymously.
type Skatepark struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:100;not null"`
	Address     string  `gorm:"size:200;not null"`
	Description string  `gorm:"type:text;not null"`
	Lat         float64 `gorm:"not null"`
	Lng         float64 `gorm:"not null"`
	CreatedBy   *uint   `gorm:"index"`
	CreatedAt   time.Time
}
