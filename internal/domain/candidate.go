package domain

import "time"

// Candidate is a tenant-owned applicant record.
type Candidate struct {
	ID             int64
	OrganizationID int64
	FullName       string
	Email          string
	CreatedBy      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
