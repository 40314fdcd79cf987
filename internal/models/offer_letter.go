package models

import "time"

// OfferStatus enumerates the states of an issued offer letter.
type OfferStatus string

const (
	// OfferStatusPending indicates the candidate has not responded yet.
	OfferStatusPending OfferStatus = "pending"
	// OfferStatusAccepted indicates the candidate accepted the offer.
	OfferStatusAccepted OfferStatus = "accepted"
	// OfferStatusRejected indicates the candidate declined the offer.
	OfferStatusRejected OfferStatus = "rejected"
	// OfferStatusExpired indicates the expiry date passed without a response.
	OfferStatusExpired OfferStatus = "expired"
)

// OfferLetter is the per-(drive, candidate) offer document. Re-issuing to the
// same candidate updates the existing row; the composite unique index keeps
// duplicates out at the storage layer as well.
type OfferLetter struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	DriveID      uint        `gorm:"not null;uniqueIndex:idx_offer_drive_candidate" json:"drive_id"`
	CandidateID  uint        `gorm:"not null;uniqueIndex:idx_offer_drive_candidate" json:"candidate_id"`
	Content      string      `gorm:"type:text;not null" json:"content"`
	SentDate     time.Time   `gorm:"not null" json:"sent_date"`
	ExpiryDate   time.Time   `gorm:"not null" json:"expiry_date"`
	Status       OfferStatus `gorm:"size:32;not null;default:pending" json:"status"`
	ResponseDate *time.Time  `json:"response_date"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsExpiredAt reports whether a pending letter has outlived its expiry date.
func (o OfferLetter) IsExpiredAt(now time.Time) bool {
	return o.Status == OfferStatusPending && now.After(o.ExpiryDate)
}

// IsTerminal reports whether the letter already carries a candidate response.
func (o OfferLetter) IsTerminal() bool {
	return o.Status == OfferStatusAccepted || o.Status == OfferStatusRejected
}
