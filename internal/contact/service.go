// AngelaMos | 2026
// service.go

package contact

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/casefile/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Actor struct {
	UserID  string
	IsAdmin bool
}

func (a Actor) mayAccess(c *Contact) bool {
	return a.IsAdmin || c.UserID == a.UserID
}

func (s *Service) Create(
	ctx context.Context,
	actor Actor,
	req CreateContactRequest,
) (*ContactResponse, error) {
	if err := s.checkCaseRef(ctx, actor, req.CaseID); err != nil {
		return nil, err
	}

	c := &Contact{
		ID:           uuid.NewString(),
		UserID:       actor.UserID,
		CaseID:       req.CaseID,
		Name:         req.Name,
		Role:         req.Role,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Notes:        req.Notes,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	resp := ToContactResponse(c)
	return &resp, nil
}

func (s *Service) Get(
	ctx context.Context,
	actor Actor,
	id string,
) (*ContactResponse, error) {
	c, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	resp := ToContactResponse(c)
	return &resp, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor Actor,
	id string,
	req UpdateContactRequest,
) (*ContactResponse, error) {
	c, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.CaseID != nil {
		if err := s.checkCaseRef(ctx, actor, req.CaseID); err != nil {
			return nil, err
		}
		c.CaseID = req.CaseID
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Role != nil {
		if !ValidRole(*req.Role) {
			return nil, fmt.Errorf("update contact: %w", core.ErrInvalidInput)
		}
		c.Role = *req.Role
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Organization != nil {
		c.Organization = *req.Organization
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	resp := ToContactResponse(c)
	return &resp, nil
}

// Detach clears the case reference, leaving the contact unattached.
func (s *Service) Detach(
	ctx context.Context,
	actor Actor,
	id string,
) (*ContactResponse, error) {
	c, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	c.CaseID = nil

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	resp := ToContactResponse(c)
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
	params ListContactsParams,
) ([]ContactResponse, int, error) {
	if params.Role != "" && !ValidRole(params.Role) {
		return nil, 0, fmt.Errorf("list contacts: %w", core.ErrInvalidInput)
	}

	items, total, err := s.repo.List(ctx, actor.UserID, params)
	if err != nil {
		return nil, 0, err
	}

	return ToContactResponseList(items), total, nil
}

func (s *Service) fetchOwned(
	ctx context.Context,
	actor Actor,
	id string,
) (*Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.mayAccess(c) {
		return nil, fmt.Errorf("contact access: %w", core.ErrForbidden)
	}

	return c, nil
}

func (s *Service) checkCaseRef(
	ctx context.Context,
	actor Actor,
	caseID *string,
) error {
	if caseID == nil {
		return nil
	}

	owned, err := s.repo.CaseOwnedBy(ctx, *caseID, actor.UserID)
	if err != nil {
		return err
	}
	if !owned {
		return fmt.Errorf("case reference: %w", core.ErrNotFound)
	}

	return nil
}
