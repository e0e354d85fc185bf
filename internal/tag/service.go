// AngelaMos | 2026
// service.go

package tag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelamos/casefile/internal/core"
)

type Service struct {
	repo      Repository
	taggables map[string]Taggable
}

// NewService takes the taggable entity repositories keyed by their URL
// segment ("cases", "contacts", "documents").
func NewService(repo Repository, taggables map[string]Taggable) *Service {
	return &Service{repo: repo, taggables: taggables}
}

func (s *Service) Create(
	ctx context.Context,
	userID, name string,
) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create tag: %w", core.ErrInvalidInput)
	}

	t := &Tag{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Rename(
	ctx context.Context,
	userID, id, name string,
) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("rename tag: %w", core.ErrInvalidInput)
	}

	t, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	t.Name = name
	if err := s.repo.Rename(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.fetchOwned(ctx, userID, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]Tag, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Attach(
	ctx context.Context,
	userID, entityKind, entityID, tagID string,
) error {
	taggable, err := s.taggableFor(entityKind)
	if err != nil {
		return err
	}

	return taggable.AttachTag(ctx, userID, entityID, tagID)
}

func (s *Service) Detach(
	ctx context.Context,
	userID, entityKind, entityID, tagID string,
) error {
	taggable, err := s.taggableFor(entityKind)
	if err != nil {
		return err
	}

	return taggable.DetachTag(ctx, userID, entityID, tagID)
}

func (s *Service) TagsFor(
	ctx context.Context,
	userID, entityKind, entityID string,
) ([]Tag, error) {
	taggable, err := s.taggableFor(entityKind)
	if err != nil {
		return nil, err
	}

	return taggable.ListTags(ctx, userID, entityID)
}

func (s *Service) taggableFor(entityKind string) (Taggable, error) {
	taggable, ok := s.taggables[entityKind]
	if !ok {
		return nil, fmt.Errorf(
			"unknown taggable entity %q: %w", entityKind, core.ErrInvalidInput)
	}
	return taggable, nil
}

func (s *Service) fetchOwned(
	ctx context.Context,
	userID, id string,
) (*Tag, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if t.UserID != userID {
		return nil, fmt.Errorf("tag access: %w", core.ErrForbidden)
	}

	return t, nil
}
