package plan

import (
	"context"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/resource"
)

// CollectSkillTargets folds the two promotion sources into one target level
// per skill: completed resources contribute their own targetLevel, the
// plan's skillsToImprove contribute the plan targetLevel. Both fold with a
// maximum, so ordering between the two passes cannot change the result.
func CollectSkillTargets(p *Plan, resources map[uuid.UUID]resource.Resource) map[uuid.UUID]int {
	targets := make(map[uuid.UUID]int)
	raise := func(skillID uuid.UUID, level int) {
		if skillID == uuid.Nil || level < 1 || level > 10 {
			return
		}
		if level > targets[skillID] {
			targets[skillID] = level
		}
	}

	for _, pr := range p.Resources {
		if pr.Status != ResourceCompleted {
			continue
		}
		res, ok := resources[pr.ResourceID]
		if !ok {
			continue
		}
		raise(res.SkillID, res.TargetLevel)
	}

	for _, ps := range p.Skills {
		raise(ps.SkillID, ps.TargetLevel)
	}

	return targets
}

// applyProgression runs the raise-only merge for one plan. The underlying
// skill write is a single GREATEST upsert, so re-running against an
// already-processed plan is a no-op and concurrent approvals cannot lose
// promotions.
func (s *planService) applyProgression(ctx context.Context, p *Plan) error {
	log := config.WithContext(ctx)

	found, err := s.resourceRepo.FindByIDs(p.ResourceIDs())
	if err != nil {
		log.WithError(err).Error("Failed to load plan resources for progression")
		return err
	}
	byID := make(map[uuid.UUID]resource.Resource, len(found))
	for _, res := range found {
		byID[res.ID] = res
	}

	targets := CollectSkillTargets(p, byID)
	if len(targets) == 0 {
		log.WithField("plan_id", p.ID).Info("Plan completion produced no skill promotions")
		return nil
	}

	if err := s.userRepo.RaiseSkillLevels(p.UserID, targets); err != nil {
		log.WithError(err).Error("Failed to raise employee skill levels")
		return err
	}

	log.WithField("plan_id", p.ID).Infof("Raised %d skill level(s) for employee %s", len(targets), p.UserID)
	return nil
}
