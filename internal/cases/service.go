// AngelaMos | 2026
// service.go

package cases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/casefile/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Actor identifies the caller for ownership checks. Admins may read
// and modify any case.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (a Actor) mayAccess(c *Case) bool {
	return a.IsAdmin || c.UserID == a.UserID
}

func (s *Service) Create(
	ctx context.Context,
	actor Actor,
	req CreateCaseRequest,
) (*CaseResponse, error) {
	c := &Case{
		ID:          uuid.NewString(),
		UserID:      actor.UserID,
		Title:       req.Title,
		CaseNumber:  req.CaseNumber,
		Court:       req.Court,
		Status:      StatusOpen,
		Description: req.Description,
		OpenedOn:    req.OpenedOn,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	resp := ToCaseResponse(c)
	return &resp, nil
}

func (s *Service) Get(
	ctx context.Context,
	actor Actor,
	id string,
) (*CaseResponse, error) {
	c, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	resp := ToCaseResponse(c)
	return &resp, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor Actor,
	id string,
	req UpdateCaseRequest,
) (*CaseResponse, error) {
	c, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.CaseNumber != nil {
		c.CaseNumber = *req.CaseNumber
	}
	if req.Court != nil {
		c.Court = *req.Court
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.OpenedOn != nil {
		c.OpenedOn = req.OpenedOn
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	resp := ToCaseResponse(c)
	return &resp, nil
}

// UpdateStatus transitions the case. Closing stamps closed_on; moving a
// closed case back to any other status clears it.
func (s *Service) UpdateStatus(
	ctx context.Context,
	actor Actor,
	id, status string,
) (*CaseResponse, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("update status: %w", core.ErrInvalidInput)
	}

	c, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	c.Status = status
	if status == StatusClosed {
		if c.ClosedOn == nil {
			now := time.Now().UTC()
			c.ClosedOn = &now
		}
	} else {
		c.ClosedOn = nil
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	resp := ToCaseResponse(c)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.fetchOwned(ctx, actor, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	actor Actor,
	params ListCasesParams,
) ([]CaseResponse, int, error) {
	if params.Status != "" && !ValidStatus(params.Status) {
		return nil, 0, fmt.Errorf("list cases: %w", core.ErrInvalidInput)
	}

	items, total, err := s.repo.List(ctx, actor.UserID, params)
	if err != nil {
		return nil, 0, err
	}

	return ToCaseResponseList(items), total, nil
}

// Resolve returns the case when the actor may access it. Other modules
// (contacts, documents) use it to validate case references.
func (s *Service) Resolve(
	ctx context.Context,
	actor Actor,
	id string,
) (*Case, error) {
	return s.fetchOwned(ctx, actor, id)
}

func (s *Service) fetchOwned(
	ctx context.Context,
	actor Actor,
	id string,
) (*Case, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.mayAccess(c) {
		return nil, fmt.Errorf("case access: %w", core.ErrForbidden)
	}

	return c, nil
}
