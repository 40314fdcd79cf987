package models

import (
	"time"

	"gorm.io/datatypes"
)

// TimelineEntry captures one auditable event in a drive's history, such as a
// round declaration or an offer response.
type TimelineEntry struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	DriveID   uint              `gorm:"not null;index" json:"drive_id"`
	Action    string            `gorm:"size:64;not null" json:"action"`
	Summary   string            `gorm:"size:512;not null" json:"summary"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}
