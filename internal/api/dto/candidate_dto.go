package dto

import (
	"time"

	"github.com/spec-kit/talent-service/internal/domain"
)

// CandidateRequest payload for creating a candidate.
type CandidateRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// CandidateResponse is the public view of a candidate.
type CandidateResponse struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewCandidateResponse maps a candidate.
func NewCandidateResponse(c *domain.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		FullName:       c.FullName,
		Email:          c.Email,
		CreatedBy:      c.CreatedBy,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// NewCandidateList maps a page of candidates. Never nil, so it encodes as [].
func NewCandidateList(items []domain.Candidate) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(items))
	for i := range items {
		out = append(out, NewCandidateResponse(&items[i]))
	}
	return out
}
