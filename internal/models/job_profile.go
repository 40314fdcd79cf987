package models

import "time"

// JobProfile carries the offer defaults for a drive's job opening.
type JobProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	// CTC is the advertised package as shown to candidates, e.g. "12 LPA".
	CTC       string    `gorm:"size:64" json:"ctc"`
	Location  string    `gorm:"size:255" json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
