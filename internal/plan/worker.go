package plan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/queue"
	"github.com/elevohq/elevo-backend/internal/recommendation"
)

const maxPerformanceReports = 5

// HandleRecommendationJob is the queue consumer side of plan creation.
// Delivery is at-least-once; the PROCESSING guard both here and inside
// ReplaceSelections makes re-processing an already-populated plan a safe
// no-op.
func (s *planService) HandleRecommendationJob(ctx context.Context, job queue.RecommendationJob) error {
	log := config.WithContext(ctx).WithField("plan_id", job.PlanID)

	p, err := s.repo.FindByID(job.PlanID)
	if err != nil {
		return err
	}
	if p == nil {
		log.Warn("Recommendation job references a deleted plan, dropping")
		return nil
	}
	if p.Status != StatusProcessing {
		log.WithField("status", p.Status).Info("Plan already populated, skipping job")
		return nil
	}

	u, err := s.userRepo.FindByID(job.EmployeeID)
	if err != nil {
		return err
	}
	if u == nil {
		log.Warn("Recommendation job references a deleted employee, dropping")
		return nil
	}

	visible, err := s.catalog.ListVisibleResources(ctx, u)
	if err != nil {
		return err
	}
	skills, err := s.catalog.ListSkills(ctx, u.OrgID)
	if err != nil {
		return err
	}

	weights, err := s.weightsProvider.Weights(ctx, u.OrgID)
	if err != nil {
		log.WithError(err).Warn("Failed to load org weights, using defaults")
		weights = recommendation.DefaultWeights()
	}

	peers, err := s.repo.ListPeerProfiles(u.OrgID, u.ID)
	if err != nil {
		log.WithError(err).Warn("Failed to load peer usage data, continuing without it")
		peers = nil
	}

	skillNames := make(map[uuid.UUID]string, len(skills))
	for _, sk := range skills {
		skillNames[sk.ID] = sk.Name
	}

	input := recommendation.Input{
		PerformanceReports: s.recentFeedback(u.ID, p.ID),
		Resources:          visible,
		Skills:             skills,
		Peers:              peers,
		Persona:            string(u.Role),
		Weights:            weights,
	}
	for _, us := range u.Skills {
		input.UserSkills = append(input.UserSkills, recommendation.SkillLevel{
			SkillID: us.SkillID,
			Name:    skillNames[us.SkillID],
			Level:   us.Level,
		})
	}
	for _, ps := range p.Skills {
		input.SkillsToImprove = append(input.SkillsToImprove, recommendation.TargetSkill{
			SkillID:     ps.SkillID,
			Name:        skillNames[ps.SkillID],
			TargetLevel: ps.TargetLevel,
		})
	}

	result := s.recommender.Recommend(ctx, input)

	resourceIDs := make([]uuid.UUID, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		resourceIDs = append(resourceIDs, rec.ResourceID)
	}

	// Employee-chosen targets stay first; AI-suggested targets extend the
	// set and the constructor drops duplicates.
	selections := make([]SkillSelection, 0, len(p.Skills)+len(result.SkillsToImprove))
	for _, ps := range p.Skills {
		selections = append(selections, SkillSelection{SkillID: ps.SkillID, TargetLevel: ps.TargetLevel})
	}
	for _, target := range result.SkillsToImprove {
		selections = append(selections, SkillSelection{SkillID: target.SkillID, TargetLevel: target.TargetLevel})
	}

	populated, err := s.repo.ReplaceSelections(
		p.ID,
		StatusProcessing,
		StatusDraft,
		result.Source,
		NewPlanSkills(selections),
		NewPlanResources(resourceIDs),
	)
	if err != nil {
		log.WithError(err).Error("Failed to write recommendations back to plan")
		return err
	}
	if !populated {
		log.Info("Plan left PROCESSING while the job ran, write-back skipped")
		return nil
	}

	log.WithField("source", result.Source).
		Infof("Populated plan with %d recommendations", len(resourceIDs))
	return nil
}

func (s *planService) recentFeedback(userID, currentPlanID uuid.UUID) []string {
	plans, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil
	}
	reports := make([]string, 0, maxPerformanceReports)
	for _, prev := range plans {
		if prev.ID == currentPlanID || prev.ManagerFeedback == "" {
			continue
		}
		reports = append(reports, prev.ManagerFeedback)
		if len(reports) == maxPerformanceReports {
			break
		}
	}
	return reports
}

// RequeueStaleProcessing re-enqueues plans stuck in PROCESSING, typically
// because the original enqueue failed or a worker died mid-job.
func (s *planService) RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) (int, error) {
	log := config.WithContext(ctx)

	stale, err := s.repo.ListStaleProcessing(time.Now().Add(-olderThan))
	if err != nil {
		log.WithError(err).Error("Failed to list stale PROCESSING plans")
		return 0, err
	}

	requeued := 0
	for _, p := range stale {
		job := queue.RecommendationJob{EmployeeID: p.UserID, PlanID: p.ID}
		if err := s.publisher.Enqueue(ctx, job); err != nil {
			log.WithError(err).WithField("plan_id", p.ID).Error("Failed to re-enqueue stale plan")
			continue
		}
		requeued++
	}

	if requeued > 0 {
		log.Infof("Re-enqueued %d stale plan(s) for recommendations", requeued)
	}
	return requeued, nil
}
