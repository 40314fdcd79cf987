package models

import "time"

// Candidate represents a student registered with the placement cell.
type Candidate struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	RollNumber string     `gorm:"size:64;uniqueIndex;not null" json:"roll_number"`
	Department string     `gorm:"size:128" json:"department"`
	Email      string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	IsPlaced   bool       `gorm:"not null;default:false" json:"is_placed"`
	PlacedAt   *time.Time `json:"placed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
