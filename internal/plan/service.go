package plan

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/apperr"
	"github.com/elevohq/elevo-backend/internal/auth"
	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/queue"
	"github.com/elevohq/elevo-backend/internal/recommendation"
	"github.com/elevohq/elevo-backend/internal/resource"
	"github.com/elevohq/elevo-backend/internal/skill"
	"github.com/elevohq/elevo-backend/internal/user"
	"github.com/sirupsen/logrus"
)

var (
	ErrPlanNotFound          = errors.New("plan not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidID             = errors.New("invalid id format")
	ErrResourceEntryNotFound = errors.New("resource is not part of the plan")
	ErrResourcesLocked       = errors.New("plan resources cannot be updated in its current status")
	ErrPlanLocked            = errors.New("plan is awaiting or has produced skill promotions and cannot be deleted")
)

// CatalogAccessor is the read-only view of the org catalogs the plan
// engine needs. Satisfied by catalog.Accessor.
type CatalogAccessor interface {
	ListSkills(ctx context.Context, orgID uuid.UUID) ([]skill.Skill, error)
	ListVisibleResources(ctx context.Context, u *user.User) ([]resource.Resource, error)
}

// WeightsProvider loads the org scoring weights. Satisfied by
// organization.Service.
type WeightsProvider interface {
	Weights(ctx context.Context, orgID uuid.UUID) (recommendation.Weights, error)
}

type PlanService interface {
	CreatePlan(ctx context.Context, dto CreatePlanDTO) (*Plan, error)
	FindAllByUser(ctx context.Context) ([]*Plan, error)
	ListForReview(ctx context.Context) ([]*Plan, error)
	FindByID(ctx context.Context, id string) (*Plan, error)
	DeleteByID(ctx context.Context, id string) error
	Submit(ctx context.Context, id string) (*Plan, error)
	Review(ctx context.Context, id string, dto ReviewDTO) (*Plan, error)
	FinalReview(ctx context.Context, id string, dto ReviewDTO) (*Plan, error)
	UpdateResourceStatus(ctx context.Context, planID, resourceID string, dto UpdateResourceStatusDTO) (*Plan, error)

	HandleRecommendationJob(ctx context.Context, job queue.RecommendationJob) error
	RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) (int, error)
}

type planService struct {
	repo            PlanRepository
	userRepo        user.UserRepository
	resourceRepo    resource.Repository
	catalog         CatalogAccessor
	weightsProvider WeightsProvider
	recommender     recommendation.Client
	publisher       queue.Publisher
}

func NewService(
	repo PlanRepository,
	userRepo user.UserRepository,
	resourceRepo resource.Repository,
	catalogAccessor CatalogAccessor,
	weightsProvider WeightsProvider,
	recommender recommendation.Client,
	publisher queue.Publisher,
) PlanService {
	return &planService{
		repo:            repo,
		userRepo:        userRepo,
		resourceRepo:    resourceRepo,
		catalog:         catalogAccessor,
		weightsProvider: weightsProvider,
		recommender:     recommender,
		publisher:       publisher,
	}
}

func getClaimsFromContext(ctx context.Context, log logrus.FieldLogger, action string) (*auth.UserClaims, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		log.WithError(err).Warnf("Attempt to %s without authentication", action)
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func parseUUID(log logrus.FieldLogger, id string, entityName string) (uuid.UUID, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		log.WithError(err).Warnf("Invalid %s ID", entityName)
		return uuid.Nil, ErrInvalidID
	}
	return parsedID, nil
}

// CreatePlan is the single entry point for both creation paths. Resources
// supplied up front put the plan in DRAFT; otherwise it enters PROCESSING
// and a recommendation job is enqueued. An enqueue failure never fails the
// creation: the plan stays in PROCESSING for the stale sweep.
func (s *planService) CreatePlan(ctx context.Context, dto CreatePlanDTO) (*Plan, error) {
	log := config.WithContext(ctx)
	claims, err := getClaimsFromContext(ctx, log, "create plan")
	if err != nil {
		return nil, err
	}
	userID := uuid.MustParse(claims.UserID)
	orgID := uuid.MustParse(claims.OrgID)

	selections := make([]SkillSelection, 0, len(dto.Skills))
	for _, sel := range dto.Skills {
		skillID, err := uuid.Parse(sel.SkillID)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "skills.skill_id", Reason: "invalid uuid"}
		}
		if sel.TargetLevel < 1 || sel.TargetLevel > 10 {
			return nil, &apperr.ValidationError{Field: "skills.target_level", Reason: "must be between 1 and 10"}
		}
		selections = append(selections, SkillSelection{SkillID: skillID, TargetLevel: sel.TargetLevel})
	}

	resourceIDs := make([]uuid.UUID, 0, len(dto.ResourceIDs))
	for _, raw := range dto.ResourceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "resource_ids", Reason: "invalid uuid"}
		}
		resourceIDs = append(resourceIDs, id)
	}

	p := &Plan{
		ID:        uuid.New(),
		OrgID:     orgID,
		UserID:    userID,
		Goals:     dto.Goals,
		Skills:    NewPlanSkills(selections),
		Resources: NewPlanResources(resourceIDs),
	}

	if len(p.Resources) > 0 {
		p.Status = StatusDraft
		p.RecommendationSource = "manual"
	} else {
		p.Status = StatusProcessing
	}

	if err := s.repo.Create(p); err != nil {
		log.WithError(err).Error("Failed to create plan")
		return nil, err
	}

	if p.Status == StatusProcessing {
		job := queue.RecommendationJob{EmployeeID: userID, PlanID: p.ID}
		if err := s.publisher.Enqueue(ctx, job); err != nil {
			log.WithError(err).WithField("plan_id", p.ID).
				Error("Failed to enqueue recommendation job, plan left in PROCESSING for the stale sweep")
		}
	}

	log.WithFields(logrus.Fields{
		"plan_id": p.ID,
		"status":  p.Status,
	}).Info("Plan created successfully")
	return p, nil
}

func (s *planService) FindAllByUser(ctx context.Context) ([]*Plan, error) {
	log := config.WithContext(ctx)
	claims, err := getClaimsFromContext(ctx, log, "list plans")
	if err != nil {
		return nil, err
	}

	plans, err := s.repo.ListByUser(uuid.MustParse(claims.UserID))
	if err != nil {
		log.WithError(err).Error("Failed to list plans by user")
		return nil, err
	}
	return plans, nil
}

func (s *planService) ListForReview(ctx context.Context) ([]*Plan, error) {
	log := config.WithContext(ctx)
	claims, err := getClaimsFromContext(ctx, log, "list plans for review")
	if err != nil {
		return nil, err
	}
	if !user.Role(claims.Role).CanReview() {
		return nil, ErrUnauthorized
	}

	plans, err := s.repo.ListForReview(uuid.MustParse(claims.OrgID))
	if err != nil {
		log.WithError(err).Error("Failed to list plans for review")
		return nil, err
	}
	return plans, nil
}

func (s *planService) FindByID(ctx context.Context, id string) (*Plan, error) {
	log := config.WithContext(ctx)
	claims, err := getClaimsFromContext(ctx, log, "find plan")
	if err != nil {
		return nil, err
	}

	planID, err := parseUUID(log, id, "plan")
	if err != nil {
		return nil, err
	}

	p, err := s.loadPlan(log, planID)
	if err != nil {
		return nil, err
	}

	isOwner := p.UserID.String() == claims.UserID
	isReviewer := user.Role(claims.Role).CanReview() && p.OrgID.String() == claims.OrgID
	if !isOwner && !isReviewer {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// DeleteByID removes an employee's own plan. Plans that are awaiting final
// approval or already completed cannot be deleted: skill promotions are
// permanent and deletion never reverses them.
func (s *planService) DeleteByID(ctx context.Context, id string) error {
	log := config.WithContext(ctx)
	claims, err := getClaimsFromContext(ctx, log, "delete plan")
	if err != nil {
		return err
	}

	planID, err := parseUUID(log, id, "plan")
	if err != nil {
		return err
	}

	p, err := s.loadPlan(log, planID)
	if err != nil {
		return err
	}
	if p.UserID.String() != claims.UserID {
		return ErrPlanNotFound
	}
	if p.Status == StatusPendingCompletion || p.Status == StatusCompleted {
		return ErrPlanLocked
	}

	if err := s.repo.Delete(planID); err != nil {
		log.WithError(err).Error("Failed to delete plan")
		return err
	}

	log.WithField("plan_id", id).Info("Plan deleted successfully")
	return nil
}

func (s *planService) Submit(ctx context.Context, id string) (*Plan, error) {
	log := config.WithContext(ctx)
	claims, err := getClaimsFromContext(ctx, log, "submit plan")
	if err != nil {
		return nil, err
	}

	planID, err := parseUUID(log, id, "plan")
	if err != nil {
		return nil, err
	}

	p, err := s.loadPlan(log, planID)
	if err != nil {
		return nil, err
	}
	if p.UserID.String() != claims.UserID {
		return nil, ErrPlanNotFound
	}

	return s.applyTransition(ctx, p, StatusPending, nil)
}

// Review records the manager decision on a PENDING plan.
func (s *planService) Review(ctx context.Context, id string, dto ReviewDTO) (*Plan, error) {
	log := config.WithContext(ctx)

	p, err := s.loadForReview(ctx, log, id)
	if err != nil {
		return nil, err
	}

	var to Status
	switch dto.Decision {
	case DecisionApprove:
		to = StatusApproved
	case DecisionReject:
		to = StatusRejected
	case DecisionNeedsRevision:
		to = StatusNeedsRevision
	default:
		return nil, &apperr.ValidationError{Field: "decision", Reason: "must be approve, reject or needs_revision"}
	}

	return s.applyTransition(ctx, p, to, &dto.Feedback)
}

// FinalReview is the manager decision on a PENDING_COMPLETION plan.
// Approval runs the skill progression engine before the plan is marked
// COMPLETED; if the status write is lost the plan stays in
// PENDING_COMPLETION and re-approval is a safe re-run, because the
// progression merge is a monotonic maximum. Re-approving an already
// COMPLETED plan is an idempotent no-op.
func (s *planService) FinalReview(ctx context.Context, id string, dto ReviewDTO) (*Plan, error) {
	log := config.WithContext(ctx)

	p, err := s.loadForReview(ctx, log, id)
	if err != nil {
		return nil, err
	}

	if p.Status == StatusCompleted && dto.Decision == DecisionApprove {
		log.WithField("plan_id", p.ID).Info("Plan already completed, approval is a no-op")
		return p, nil
	}

	switch dto.Decision {
	case DecisionApprove:
		if err := Transition(p.Status, StatusCompleted); err != nil {
			return nil, err
		}

		if err := s.applyProgression(ctx, p); err != nil {
			log.WithError(err).WithField("plan_id", p.ID).
				Error("Failed to persist skill promotions, plan stays in PENDING_COMPLETION")
			return nil, err
		}

		return s.applyTransition(ctx, p, StatusCompleted, &dto.Feedback)
	case DecisionReject, DecisionNeedsRevision:
		return s.applyTransition(ctx, p, StatusNeedsRevision, &dto.Feedback)
	default:
		return nil, &apperr.ValidationError{Field: "decision", Reason: "must be approve, reject or needs_revision"}
	}
}

// UpdateResourceStatus mutates one completion entry and then re-evaluates
// the plan. Resource interaction is only allowed once the plan is APPROVED
// (and still possible in PENDING_COMPLETION for evidence fixes); PROCESSING
// in particular blocks everything.
func (s *planService) UpdateResourceStatus(ctx context.Context, planID, resourceID string, dto UpdateResourceStatusDTO) (*Plan, error) {
	log := config.WithContext(ctx)
	claims, err := getClaimsFromContext(ctx, log, "update plan resource")
	if err != nil {
		return nil, err
	}

	pid, err := parseUUID(log, planID, "plan")
	if err != nil {
		return nil, err
	}
	rid, err := parseUUID(log, resourceID, "resource")
	if err != nil {
		return nil, err
	}

	p, err := s.loadPlan(log, pid)
	if err != nil {
		return nil, err
	}
	if p.UserID.String() != claims.UserID {
		return nil, ErrPlanNotFound
	}
	if p.Status != StatusApproved && p.Status != StatusPendingCompletion {
		return nil, ErrResourcesLocked
	}

	status := ResourceStatus(dto.Status)
	if !status.IsValid() {
		return nil, &apperr.ValidationError{Field: "status", Reason: "must be PENDING, IN_PROGRESS or COMPLETED"}
	}
	method := VerificationMethod(dto.VerificationMethod)
	if dto.VerificationMethod == "" {
		method = VerificationNone
	}
	if !method.IsValid() {
		return nil, &apperr.ValidationError{Field: "verification_method", Reason: "unknown verification method"}
	}
	if dto.Evidence != "" {
		parsed, err := url.Parse(dto.Evidence)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return nil, &apperr.ValidationError{Field: "evidence", Reason: "must be an http(s) URL"}
		}
	}

	entry := p.ResourceEntry(rid)
	if entry == nil {
		return nil, ErrResourceEntryNotFound
	}

	if status == ResourceCompleted {
		if entry.CompletedAt == nil {
			now := time.Now()
			entry.CompletedAt = &now
		}
	} else {
		entry.CompletedAt = nil
	}
	entry.Status = status
	entry.Evidence = dto.Evidence
	entry.VerificationMethod = method

	if err := s.repo.SaveResourceEntry(entry); err != nil {
		log.WithError(err).Error("Failed to save plan resource entry")
		return nil, err
	}

	if _, err := s.evaluateCompletion(ctx, pid); err != nil {
		return nil, err
	}

	return s.loadPlan(log, pid)
}

// evaluateCompletion is the explicit post-condition check run after every
// resource mutation. The conditional APPROVED -> PENDING_COMPLETION update
// fires at most once even when two completions race or a save is retried.
func (s *planService) evaluateCompletion(ctx context.Context, planID uuid.UUID) (bool, error) {
	log := config.WithContext(ctx)

	p, err := s.repo.FindByID(planID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, ErrPlanNotFound
	}

	if p.Status != StatusApproved || !p.AllResourcesCompleted() {
		return false, nil
	}

	fired, err := s.repo.UpdateStatus(planID, StatusApproved, StatusPendingCompletion, nil)
	if err != nil {
		log.WithError(err).Error("Failed to advance plan to PENDING_COMPLETION")
		return false, err
	}
	if fired {
		log.WithField("plan_id", planID).Info("All plan resources completed, plan awaits final approval")
	}
	return fired, nil
}

func (s *planService) loadPlan(log logrus.FieldLogger, planID uuid.UUID) (*Plan, error) {
	p, err := s.repo.FindByID(planID)
	if err != nil {
		log.WithError(err).Error("Failed to load plan")
		return nil, err
	}
	if p == nil {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

func (s *planService) loadForReview(ctx context.Context, log logrus.FieldLogger, id string) (*Plan, error) {
	claims, err := getClaimsFromContext(ctx, log, "review plan")
	if err != nil {
		return nil, err
	}
	if !user.Role(claims.Role).CanReview() {
		return nil, ErrUnauthorized
	}

	planID, err := parseUUID(log, id, "plan")
	if err != nil {
		return nil, err
	}

	p, err := s.loadPlan(log, planID)
	if err != nil {
		return nil, err
	}
	if p.OrgID.String() != claims.OrgID {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// applyTransition validates the edge and applies it as a conditional
// update, so a stale in-memory status can never clobber a newer one.
func (s *planService) applyTransition(ctx context.Context, p *Plan, to Status, feedback *string) (*Plan, error) {
	log := config.WithContext(ctx)

	if err := Transition(p.Status, to); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(p.ID, p.Status, to, feedback)
	if err != nil {
		log.WithError(err).Error("Failed to update plan status")
		return nil, err
	}
	if !updated {
		// Lost the race against a concurrent transition; report against
		// the fresh state.
		fresh, ferr := s.loadPlan(log, p.ID)
		if ferr != nil {
			return nil, ferr
		}
		if fresh.Status == to {
			return fresh, nil
		}
		return nil, &apperr.InvalidTransitionError{From: string(fresh.Status), To: string(to)}
	}

	log.WithFields(logrus.Fields{
		"plan_id": p.ID,
		"from":    p.Status,
		"to":      to,
	}).Info("Plan status updated")
	return s.loadPlan(log, p.ID)
}
