package dto

import (
	"time"

	"github.com/placement-cell/drive-api/internal/models"
)

// OfferIssueRequest describes the payload for issuing offer letters.
type OfferIssueRequest struct {
	CandidateIDs []uint  `json:"candidate_ids" validate:"required,min=1"`
	Content      string  `json:"content" validate:"required,min=10"`
	ExpiryDate   *string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// OfferRespondRequest carries a candidate's response to an offer letter.
type OfferRespondRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

// OfferLetterResponse is the serialized representation of an offer letter.
type OfferLetterResponse struct {
	ID           uint               `json:"id"`
	DriveID      uint               `json:"drive_id"`
	CandidateID  uint               `json:"candidate_id"`
	Content      string             `json:"content"`
	SentDate     time.Time          `json:"sent_date"`
	ExpiryDate   time.Time          `json:"expiry_date"`
	Status       models.OfferStatus `json:"status"`
	ResponseDate *time.Time         `json:"response_date,omitempty"`
}

// OfferIssueResponse wraps the issued letters and per-candidate warnings.
type OfferIssueResponse struct {
	Offers   []OfferLetterResponse `json:"offers"`
	Warnings []string              `json:"warnings,omitempty"`
}

// OfferRespondResponse wraps the updated letter and reconciliation warnings.
type OfferRespondResponse struct {
	Offer    OfferLetterResponse `json:"offer"`
	Warnings []string            `json:"warnings,omitempty"`
}

// NewOfferLetterResponse converts an offer letter model into its DTO.
func NewOfferLetterResponse(offer models.OfferLetter) OfferLetterResponse {
	return OfferLetterResponse{
		ID:           offer.ID,
		DriveID:      offer.DriveID,
		CandidateID:  offer.CandidateID,
		Content:      offer.Content,
		SentDate:     offer.SentDate,
		ExpiryDate:   offer.ExpiryDate,
		Status:       offer.Status,
		ResponseDate: offer.ResponseDate,
	}
}

// NewOfferLetterResponseSlice converts a slice of offer letters into DTOs.
func NewOfferLetterResponseSlice(offers []models.OfferLetter) []OfferLetterResponse {
	responses := make([]OfferLetterResponse, 0, len(offers))
	for _, offer := range offers {
		responses = append(responses, NewOfferLetterResponse(offer))
	}

	return responses
}
