// AngelaMos | 2026
// dto.go

package contact

import (
	"time"
)

type CreateContactRequest struct {
	CaseID       *string `json:"case_id,omitempty" validate:"omitempty,uuid"`
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Role         string  `json:"role" validate:"required,oneof=client witness opposing_counsel expert court_staff other"`
	Email        string  `json:"email" validate:"omitempty,email,max=255"`
	Phone        string  `json:"phone" validate:"max=50"`
	Organization string  `json:"organization" validate:"max=200"`
	Notes        string  `json:"notes" validate:"max=10000"`
}

type UpdateContactRequest struct {
	CaseID       *string `json:"case_id,omitempty" validate:"omitempty,uuid"`
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Role         *string `json:"role,omitempty" validate:"omitempty,oneof=client witness opposing_counsel expert court_staff other"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Organization *string `json:"organization,omitempty" validate:"omitempty,max=200"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=10000"`
}

type ContactResponse struct {
	ID           string    `json:"id"`
	CaseID       *string   `json:"case_id,omitempty"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Organization string    `json:"organization"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListContactsParams struct {
	Page       int
	PageSize   int
	CaseID     string
	Unattached bool
	Role       string
	Search     string
}

func (p *ListContactsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListContactsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToContactResponse(c *Contact) ContactResponse {
	return ContactResponse{
		ID:           c.ID,
		CaseID:       c.CaseID,
		Name:         c.Name,
		Role:         c.Role,
		Email:        c.Email,
		Phone:        c.Phone,
		Organization: c.Organization,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func ToContactResponseList(items []Contact) []ContactResponse {
	responses := make([]ContactResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToContactResponse(&items[i]))
	}
	return responses
}
