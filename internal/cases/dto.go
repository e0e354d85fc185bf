// AngelaMos | 2026
// dto.go

package cases

import (
	"time"
)

type CreateCaseRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	CaseNumber  string     `json:"case_number" validate:"max=100"`
	Court       string     `json:"court" validate:"max=200"`
	Description string     `json:"description" validate:"max=10000"`
	OpenedOn    *time.Time `json:"opened_on,omitempty"`
}

type UpdateCaseRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	CaseNumber  *string    `json:"case_number,omitempty" validate:"omitempty,max=100"`
	Court       *string    `json:"court,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=10000"`
	OpenedOn    *time.Time `json:"opened_on,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open stayed settled closed"`
}

type CaseResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	CaseNumber  string     `json:"case_number"`
	Court       string     `json:"court"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	OpenedOn    *time.Time `json:"opened_on,omitempty"`
	ClosedOn    *time.Time `json:"closed_on,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListCasesParams struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

func (p *ListCasesParams) Normalize() {
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

func (p *ListCasesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToCaseResponse(c *Case) CaseResponse {
	return CaseResponse{
		ID:          c.ID,
		Title:       c.Title,
		CaseNumber:  c.CaseNumber,
		Court:       c.Court,
		Status:      c.Status,
		Description: c.Description,
		OpenedOn:    c.OpenedOn,
		ClosedOn:    c.ClosedOn,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToCaseResponseList(items []Case) []CaseResponse {
	responses := make([]CaseResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToCaseResponse(&items[i]))
	}
	return responses
}
