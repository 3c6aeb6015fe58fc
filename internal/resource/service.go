package resource

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/apperr"
	"github.com/elevohq/elevo-backend/internal/config"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrNotOwner         = errors.New("resource does not belong to the user")
)

type CacheInvalidator interface {
	InvalidateResources(ctx context.Context, orgID uuid.UUID)
}

type Service interface {
	Create(ctx context.Context, orgID, createdBy uuid.UUID, dto CreateResourceDTO) (*Resource, error)
	List(ctx context.Context, orgID uuid.UUID) ([]Resource, error)
	Update(ctx context.Context, id, orgID, actorID uuid.UUID, isAdmin bool, dto UpdateResourceDTO) (*Resource, error)
	Delete(ctx context.Context, id, orgID, actorID uuid.UUID, isAdmin bool) error
}

type service struct {
	repo  Repository
	cache CacheInvalidator
}

func NewService(repo Repository, cache CacheInvalidator) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) Create(ctx context.Context, orgID, createdBy uuid.UUID, dto CreateResourceDTO) (*Resource, error) {
	log := config.WithContext(ctx)

	if dto.Title == "" {
		return nil, &apperr.ValidationError{Field: "title", Reason: "required"}
	}
	skillID, err := uuid.Parse(dto.SkillID)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "skill_id", Reason: "invalid uuid"}
	}
	if dto.TargetLevel < 0 || dto.TargetLevel > 10 {
		return nil, &apperr.ValidationError{Field: "target_level", Reason: "must be between 0 and 10"}
	}
	visibility := Visibility(dto.Visibility)
	if dto.Visibility == "" {
		visibility = VisibilityOrg
	}
	if !visibility.IsValid() {
		return nil, &apperr.ValidationError{Field: "visibility", Reason: "unknown visibility"}
	}

	res := &Resource{
		ID:              uuid.New(),
		OrgID:           orgID,
		SkillID:         skillID,
		CreatedBy:       createdBy,
		Title:           dto.Title,
		Type:            dto.Type,
		Provider:        dto.Provider,
		URL:             dto.URL,
		Difficulty:      dto.Difficulty,
		TargetLevel:     dto.TargetLevel,
		Visibility:      visibility,
		DurationMinutes: dto.DurationMinutes,
	}

	if err := s.repo.Create(res); err != nil {
		log.WithError(err).Error("Failed to create resource")
		return nil, err
	}

	s.cache.InvalidateResources(ctx, orgID)
	log.WithField("resource_id", res.ID).Info("Resource created successfully")
	return res, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]Resource, error) {
	return s.repo.ListByOrg(orgID)
}

func (s *service) Update(ctx context.Context, id, orgID, actorID uuid.UUID, isAdmin bool, dto UpdateResourceDTO) (*Resource, error) {
	log := config.WithContext(ctx)

	res, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if res == nil || res.OrgID != orgID {
		return nil, ErrResourceNotFound
	}
	if res.CreatedBy != actorID && !isAdmin {
		return nil, ErrNotOwner
	}

	if dto.Title != nil {
		res.Title = *dto.Title
	}
	if dto.Type != nil {
		res.Type = *dto.Type
	}
	if dto.Provider != nil {
		res.Provider = *dto.Provider
	}
	if dto.URL != nil {
		res.URL = *dto.URL
	}
	if dto.Difficulty != nil {
		res.Difficulty = *dto.Difficulty
	}
	if dto.TargetLevel != nil {
		if *dto.TargetLevel < 0 || *dto.TargetLevel > 10 {
			return nil, &apperr.ValidationError{Field: "target_level", Reason: "must be between 0 and 10"}
		}
		res.TargetLevel = *dto.TargetLevel
	}
	if dto.Visibility != nil {
		visibility := Visibility(*dto.Visibility)
		if !visibility.IsValid() {
			return nil, &apperr.ValidationError{Field: "visibility", Reason: "unknown visibility"}
		}
		res.Visibility = visibility
	}
	if dto.DurationMinutes != nil {
		res.DurationMinutes = *dto.DurationMinutes
	}

	if err := s.repo.Update(res); err != nil {
		log.WithError(err).Error("Failed to update resource")
		return nil, err
	}

	s.cache.InvalidateResources(ctx, orgID)
	return res, nil
}

func (s *service) Delete(ctx context.Context, id, orgID, actorID uuid.UUID, isAdmin bool) error {
	log := config.WithContext(ctx)

	res, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if res == nil || res.OrgID != orgID {
		return ErrResourceNotFound
	}
	if res.CreatedBy != actorID && !isAdmin {
		return ErrNotOwner
	}

	if err := s.repo.Delete(id); err != nil {
		log.WithError(err).Error("Failed to delete resource")
		return err
	}

	s.cache.InvalidateResources(ctx, orgID)
	log.WithField("resource_id", id).Info("Resource deleted successfully")
	return nil
}
