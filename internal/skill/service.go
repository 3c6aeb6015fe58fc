package skill

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/apperr"
	"github.com/elevohq/elevo-backend/internal/config"
)

var ErrSkillNotFound = errors.New("skill not found")

// CacheInvalidator is satisfied by the catalog accessor. Skill mutations
// must drop the org's cached taxonomy so readers never see stale entries.
type CacheInvalidator interface {
	InvalidateSkills(ctx context.Context, orgID uuid.UUID)
}

type Service interface {
	Create(ctx context.Context, orgID uuid.UUID, dto CreateSkillDTO) (*Skill, error)
	List(ctx context.Context, orgID uuid.UUID) ([]Skill, error)
	Update(ctx context.Context, id, orgID uuid.UUID, dto UpdateSkillDTO) (*Skill, error)
	Delete(ctx context.Context, id, orgID uuid.UUID) error
}

type service struct {
	repo  Repository
	cache CacheInvalidator
}

func NewService(repo Repository, cache CacheInvalidator) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) Create(ctx context.Context, orgID uuid.UUID, dto CreateSkillDTO) (*Skill, error) {
	log := config.WithContext(ctx)

	if dto.Name == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "required"}
	}

	sk := &Skill{
		ID:          uuid.New(),
		OrgID:       orgID,
		Name:        dto.Name,
		Category:    dto.Category,
		Description: dto.Description,
	}

	if err := s.repo.Create(sk); err != nil {
		log.WithError(err).Error("Failed to create skill")
		return nil, err
	}

	s.cache.InvalidateSkills(ctx, orgID)
	log.WithField("skill_id", sk.ID).Info("Skill created successfully")
	return sk, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]Skill, error) {
	return s.repo.ListByOrg(orgID)
}

func (s *service) Update(ctx context.Context, id, orgID uuid.UUID, dto UpdateSkillDTO) (*Skill, error) {
	log := config.WithContext(ctx)

	sk, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if sk == nil || sk.OrgID != orgID {
		return nil, ErrSkillNotFound
	}

	// Identity is immutable; only descriptive fields change.
	if dto.Name != nil {
		sk.Name = *dto.Name
	}
	if dto.Category != nil {
		sk.Category = *dto.Category
	}
	if dto.Description != nil {
		sk.Description = *dto.Description
	}

	if err := s.repo.Update(sk); err != nil {
		log.WithError(err).Error("Failed to update skill")
		return nil, err
	}

	s.cache.InvalidateSkills(ctx, orgID)
	return sk, nil
}

func (s *service) Delete(ctx context.Context, id, orgID uuid.UUID) error {
	log := config.WithContext(ctx)

	sk, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if sk == nil || sk.OrgID != orgID {
		return ErrSkillNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		log.WithError(err).Error("Failed to delete skill")
		return err
	}

	s.cache.InvalidateSkills(ctx, orgID)
	log.WithField("skill_id", id).Info("Skill deleted successfully")
	return nil
}
