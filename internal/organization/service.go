package organization

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/apperr"
	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/recommendation"
)

var ErrOrgNotFound = errors.New("organization not found")

type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*Organization, error)
	Weights(ctx context.Context, id uuid.UUID) (recommendation.Weights, error)
	UpdateWeights(ctx context.Context, id uuid.UUID, overrides map[string]float64) (*Organization, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	org, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrgNotFound
	}
	return org, nil
}

// Weights never fails open into zero weights: an unknown org gets defaults.
func (s *service) Weights(ctx context.Context, id uuid.UUID) (recommendation.Weights, error) {
	org, err := s.repo.FindByID(id)
	if err != nil {
		return recommendation.DefaultWeights(), err
	}
	if org == nil {
		return recommendation.DefaultWeights(), nil
	}
	return org.Weights(), nil
}

func (s *service) UpdateWeights(ctx context.Context, id uuid.UUID, overrides map[string]float64) (*Organization, error) {
	log := config.WithContext(ctx)

	recognized := map[string]bool{
		"skill_gap": true, "skill_relevance": true, "difficulty_match": true,
		"collaborative": true, "resource_type": true, "skill_similarity": true,
	}
	for key, value := range overrides {
		if !recognized[key] {
			return nil, &apperr.ValidationError{Field: key, Reason: "unrecognized weight"}
		}
		if value < 0 || value > 1 {
			return nil, &apperr.ValidationError{Field: key, Reason: "must be between 0 and 1"}
		}
	}

	org, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrgNotFound
	}

	raw, err := json.Marshal(overrides)
	if err != nil {
		return nil, err
	}
	org.RecommendationWeights = raw

	if err := s.repo.Update(org); err != nil {
		log.WithError(err).Error("Failed to update organization weights")
		return nil, err
	}

	log.WithField("org_id", id).Info("Organization weights updated")
	return org, nil
}
