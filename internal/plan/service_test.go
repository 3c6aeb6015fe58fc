package plan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/apperr"
	"github.com/elevohq/elevo-backend/internal/auth"
	"github.com/elevohq/elevo-backend/internal/plan"
	"github.com/elevohq/elevo-backend/internal/queue"
	"github.com/elevohq/elevo-backend/internal/recommendation"
	"github.com/elevohq/elevo-backend/internal/resource"
	"github.com/elevohq/elevo-backend/internal/skill"
	"github.com/elevohq/elevo-backend/internal/user"
)

// fakePlanRepo is an in-memory PlanRepository with the same conditional
// update semantics as the SQL implementation.
type fakePlanRepo struct {
	plans map[uuid.UUID]*plan.Plan
	peers []recommendation.PeerProfile
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uuid.UUID]*plan.Plan)}
}

func clonePlan(p *plan.Plan) *plan.Plan {
	cp := *p
	cp.Skills = append([]plan.PlanSkill(nil), p.Skills...)
	cp.Resources = append([]plan.PlanResource(nil), p.Resources...)
	return &cp
}

func (r *fakePlanRepo) Create(p *plan.Plan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Skills {
		p.Skills[i].PlanID = p.ID
	}
	for i := range p.Resources {
		p.Resources[i].PlanID = p.ID
	}
	r.plans[p.ID] = clonePlan(p)
	return nil
}

func (r *fakePlanRepo) FindByID(id uuid.UUID) (*plan.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	return clonePlan(p), nil
}

func (r *fakePlanRepo) ListByUser(userID uuid.UUID) ([]*plan.Plan, error) {
	var out []*plan.Plan
	for _, p := range r.plans {
		if p.UserID == userID {
			out = append(out, clonePlan(p))
		}
	}
	return out, nil
}

func (r *fakePlanRepo) ListForReview(orgID uuid.UUID) ([]*plan.Plan, error) {
	var out []*plan.Plan
	for _, p := range r.plans {
		if p.OrgID == orgID && (p.Status == plan.StatusPending || p.Status == plan.StatusPendingCompletion) {
			out = append(out, clonePlan(p))
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Delete(id uuid.UUID) error {
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) UpdateStatus(planID uuid.UUID, from, to plan.Status, feedback *string) (bool, error) {
	p, ok := r.plans[planID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if feedback != nil {
		p.ManagerFeedback = *feedback
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakePlanRepo) SaveResourceEntry(entry *plan.PlanResource) error {
	p, ok := r.plans[entry.PlanID]
	if !ok {
		return errors.New("plan not found")
	}
	for i := range p.Resources {
		if p.Resources[i].ID == entry.ID {
			p.Resources[i] = *entry
			return nil
		}
	}
	return errors.New("resource entry not found")
}

func (r *fakePlanRepo) ReplaceSelections(planID uuid.UUID, from, to plan.Status, source string, skills []plan.PlanSkill, resources []plan.PlanResource) (bool, error) {
	p, ok := r.plans[planID]
	if !ok || p.Status != from {
		return false, nil
	}
	for i := range skills {
		skills[i].PlanID = planID
	}
	for i := range resources {
		resources[i].PlanID = planID
	}
	p.Status = to
	p.RecommendationSource = source
	p.Skills = skills
	p.Resources = resources
	return true, nil
}

func (r *fakePlanRepo) ListStaleProcessing(olderThan time.Time) ([]*plan.Plan, error) {
	var out []*plan.Plan
	for _, p := range r.plans {
		if p.Status == plan.StatusProcessing && p.UpdatedAt.Before(olderThan) {
			out = append(out, clonePlan(p))
		}
	}
	return out, nil
}

func (r *fakePlanRepo) ListPeerProfiles(orgID, excludeUserID uuid.UUID) ([]recommendation.PeerProfile, error) {
	return r.peers, nil
}

type fakeUserRepo struct {
	users      map[uuid.UUID]*user.User
	levels     map[uuid.UUID]map[uuid.UUID]int
	raiseCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[uuid.UUID]*user.User),
		levels: make(map[uuid.UUID]map[uuid.UUID]int),
	}
}

func (r *fakeUserRepo) Create(u *user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(id uuid.UUID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Skills = nil
	for skillID, level := range r.levels[id] {
		cp.Skills = append(cp.Skills, user.UserSkill{UserID: id, SkillID: skillID, Level: level})
	}
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListByOrg(orgID uuid.UUID) ([]*user.User, error) {
	var out []*user.User
	for _, u := range r.users {
		if u.OrgID == orgID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListSkills(userID uuid.UUID) ([]user.UserSkill, error) {
	var out []user.UserSkill
	for skillID, level := range r.levels[userID] {
		out = append(out, user.UserSkill{UserID: userID, SkillID: skillID, Level: level})
	}
	return out, nil
}

func (r *fakeUserRepo) RaiseSkillLevels(userID uuid.UUID, targets map[uuid.UUID]int) error {
	r.raiseCalls++
	current, ok := r.levels[userID]
	if !ok {
		current = make(map[uuid.UUID]int)
		r.levels[userID] = current
	}
	for skillID, level := range targets {
		if level > current[skillID] {
			current[skillID] = level
		}
	}
	return nil
}

type fakeResourceRepo struct {
	resources map[uuid.UUID]resource.Resource
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{resources: make(map[uuid.UUID]resource.Resource)}
}

func (r *fakeResourceRepo) Create(res *resource.Resource) error {
	r.resources[res.ID] = *res
	return nil
}

func (r *fakeResourceRepo) FindByID(id uuid.UUID) (*resource.Resource, error) {
	res, ok := r.resources[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r *fakeResourceRepo) FindByIDs(ids []uuid.UUID) ([]resource.Resource, error) {
	var out []resource.Resource
	for _, id := range ids {
		if res, ok := r.resources[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeResourceRepo) ListByOrg(orgID uuid.UUID) ([]resource.Resource, error) {
	var out []resource.Resource
	for _, res := range r.resources {
		if res.OrgID == orgID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeResourceRepo) ListVisible(orgID uuid.UUID, managerID *uuid.UUID) ([]resource.Resource, error) {
	return r.ListByOrg(orgID)
}

func (r *fakeResourceRepo) Update(res *resource.Resource) error {
	r.resources[res.ID] = *res
	return nil
}

func (r *fakeResourceRepo) Delete(id uuid.UUID) error {
	delete(r.resources, id)
	return nil
}

type fakeCatalog struct {
	skills    []skill.Skill
	resources []resource.Resource
}

func (c *fakeCatalog) ListSkills(ctx context.Context, orgID uuid.UUID) ([]skill.Skill, error) {
	return c.skills, nil
}

func (c *fakeCatalog) ListVisibleResources(ctx context.Context, u *user.User) ([]resource.Resource, error) {
	return c.resources, nil
}

type fakeWeightsProvider struct{}

func (fakeWeightsProvider) Weights(ctx context.Context, orgID uuid.UUID) (recommendation.Weights, error) {
	return recommendation.DefaultWeights(), nil
}

type fakeRecommender struct {
	result *recommendation.Result
	calls  int
	lastIn recommendation.Input
}

func (f *fakeRecommender) Recommend(ctx context.Context, in recommendation.Input) *recommendation.Result {
	f.calls++
	f.lastIn = in
	if f.result != nil {
		return f.result
	}
	return &recommendation.Result{Source: recommendation.SourceFallback}
}

type fakePublisher struct {
	jobs []queue.RecommendationJob
	err  error
}

func (p *fakePublisher) Enqueue(ctx context.Context, job queue.RecommendationJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

// testEnv wires the service against in-memory fakes with one seeded org,
// employee and manager.
type testEnv struct {
	svc          plan.PlanService
	repo         *fakePlanRepo
	userRepo     *fakeUserRepo
	resourceRepo *fakeResourceRepo
	catalog      *fakeCatalog
	recommender  *fakeRecommender
	publisher    *fakePublisher

	orgID    uuid.UUID
	employee *user.User
	manager  *user.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:         newFakePlanRepo(),
		userRepo:     newFakeUserRepo(),
		resourceRepo: newFakeResourceRepo(),
		catalog:      &fakeCatalog{},
		recommender:  &fakeRecommender{},
		publisher:    &fakePublisher{},
		orgID:        uuid.New(),
	}

	env.employee = &user.User{ID: uuid.New(), OrgID: env.orgID, Name: "Dana", Email: "dana@example.com", Role: user.RoleEmployee}
	env.manager = &user.User{ID: uuid.New(), OrgID: env.orgID, Name: "Morgan", Email: "morgan@example.com", Role: user.RoleManager}
	env.userRepo.Create(env.employee)
	env.userRepo.Create(env.manager)

	env.svc = plan.NewService(
		env.repo,
		env.userRepo,
		env.resourceRepo,
		env.catalog,
		fakeWeightsProvider{},
		env.recommender,
		env.publisher,
	)
	return env
}

func (env *testEnv) ctxFor(u *user.User) context.Context {
	return auth.WithClaims(context.Background(), &auth.UserClaims{
		UserID: u.ID.String(),
		OrgID:  u.OrgID.String(),
		Role:   string(u.Role),
	})
}

func (env *testEnv) addResource(t *testing.T, skillID uuid.UUID, targetLevel int) resource.Resource {
	t.Helper()
	res := resource.Resource{
		ID:          uuid.New(),
		OrgID:       env.orgID,
		SkillID:     skillID,
		CreatedBy:   env.manager.ID,
		Title:       "Resource " + uuid.NewString()[:8],
		TargetLevel: targetLevel,
		Visibility:  resource.VisibilityOrg,
	}
	if err := env.resourceRepo.Create(&res); err != nil {
		t.Fatalf("seed resource: %v", err)
	}
	env.catalog.resources = append(env.catalog.resources, res)
	return res
}

func (env *testEnv) seedPlan(t *testing.T, status plan.Status, skills []plan.SkillSelection, resourceIDs []uuid.UUID) *plan.Plan {
	t.Helper()
	p := &plan.Plan{
		ID:        uuid.New(),
		OrgID:     env.orgID,
		UserID:    env.employee.ID,
		Status:    status,
		Skills:    plan.NewPlanSkills(skills),
		Resources: plan.NewPlanResources(resourceIDs),
	}
	if err := env.repo.Create(p); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return p
}

func (env *testEnv) reload(t *testing.T, id uuid.UUID) *plan.Plan {
	t.Helper()
	p, err := env.repo.FindByID(id)
	if err != nil {
		t.Fatalf("reload plan: %v", err)
	}
	if p == nil {
		t.Fatalf("plan %s disappeared", id)
	}
	return p
}

func TestCreatePlan(t *testing.T) {
	t.Run("WithResourcesStartsDraft", func(t *testing.T) {
		env := newTestEnv(t)
		skillID := uuid.New()
		resA := env.addResource(t, skillID, 5)
		resB := env.addResource(t, skillID, 6)

		p, err := env.svc.CreatePlan(env.ctxFor(env.employee), plan.CreatePlanDTO{
			Goals:       "Get better at Go",
			Skills:      []plan.SkillSelectionDTO{{SkillID: skillID.String(), TargetLevel: 6}},
			ResourceIDs: []string{resA.ID.String(), resB.ID.String(), resA.ID.String()},
		})
		if err != nil {
			t.Fatalf("CreatePlan: %v", err)
		}
		if p.Status != plan.StatusDraft {
			t.Errorf("expected DRAFT, got %s", p.Status)
		}
		if p.RecommendationSource != "manual" {
			t.Errorf("expected manual source, got %q", p.RecommendationSource)
		}
		if len(p.Resources) != 2 {
			t.Errorf("duplicate resource should collapse, got %d entries", len(p.Resources))
		}
		if len(env.publisher.jobs) != 0 {
			t.Errorf("manual plan should not enqueue a job")
		}
	})

	t.Run("WithoutResourcesStartsProcessing", func(t *testing.T) {
		env := newTestEnv(t)

		p, err := env.svc.CreatePlan(env.ctxFor(env.employee), plan.CreatePlanDTO{Goals: "Grow"})
		if err != nil {
			t.Fatalf("CreatePlan: %v", err)
		}
		if p.Status != plan.StatusProcessing {
			t.Errorf("expected PROCESSING, got %s", p.Status)
		}
		if len(env.publisher.jobs) != 1 {
			t.Fatalf("expected 1 enqueued job, got %d", len(env.publisher.jobs))
		}
		if env.publisher.jobs[0].PlanID != p.ID || env.publisher.jobs[0].EmployeeID != env.employee.ID {
			t.Errorf("job payload mismatch: %+v", env.publisher.jobs[0])
		}
	})

	t.Run("EnqueueFailureStillCreatesPlan", func(t *testing.T) {
		env := newTestEnv(t)
		env.publisher.err = errors.New("redis down")

		p, err := env.svc.CreatePlan(env.ctxFor(env.employee), plan.CreatePlanDTO{Goals: "Grow"})
		if err != nil {
			t.Fatalf("CreatePlan should absorb the enqueue failure, got %v", err)
		}
		if env.reload(t, p.ID).Status != plan.StatusProcessing {
			t.Errorf("plan should stay PROCESSING for the stale sweep")
		}
	})

	t.Run("DuplicateSkillFirstOccurrenceWins", func(t *testing.T) {
		env := newTestEnv(t)
		skillID := uuid.New()
		res := env.addResource(t, skillID, 5)

		p, err := env.svc.CreatePlan(env.ctxFor(env.employee), plan.CreatePlanDTO{
			Skills: []plan.SkillSelectionDTO{
				{SkillID: skillID.String(), TargetLevel: 4},
				{SkillID: skillID.String(), TargetLevel: 9},
			},
			ResourceIDs: []string{res.ID.String()},
		})
		if err != nil {
			t.Fatalf("CreatePlan: %v", err)
		}
		if len(p.Skills) != 1 {
			t.Fatalf("expected 1 skill after dedup, got %d", len(p.Skills))
		}
		if p.Skills[0].TargetLevel != 4 {
			t.Errorf("first occurrence should win, got target %d", p.Skills[0].TargetLevel)
		}
	})

	t.Run("RejectsOutOfRangeTarget", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.CreatePlan(env.ctxFor(env.employee), plan.CreatePlanDTO{
			Skills: []plan.SkillSelectionDTO{{SkillID: uuid.NewString(), TargetLevel: 11}},
		})
		if !apperr.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("RequiresAuthentication", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.CreatePlan(context.Background(), plan.CreatePlanDTO{})
		if !errors.Is(err, plan.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestSubmitAndReview(t *testing.T) {
	t.Run("FullApprovalPath", func(t *testing.T) {
		env := newTestEnv(t)
		res := env.addResource(t, uuid.New(), 5)
		p := env.seedPlan(t, plan.StatusDraft, nil, []uuid.UUID{res.ID})

		submitted, err := env.svc.Submit(env.ctxFor(env.employee), p.ID.String())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if submitted.Status != plan.StatusPending {
			t.Fatalf("expected PENDING, got %s", submitted.Status)
		}

		approved, err := env.svc.Review(env.ctxFor(env.manager), p.ID.String(), plan.ReviewDTO{
			Decision: plan.DecisionApprove,
			Feedback: "looks good",
		})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if approved.Status != plan.StatusApproved {
			t.Errorf("expected APPROVED, got %s", approved.Status)
		}
		if approved.ManagerFeedback != "looks good" {
			t.Errorf("feedback not recorded: %q", approved.ManagerFeedback)
		}
	})

	t.Run("EmployeeCannotReview", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.seedPlan(t, plan.StatusPending, nil, nil)

		_, err := env.svc.Review(env.ctxFor(env.employee), p.ID.String(), plan.ReviewDTO{Decision: plan.DecisionApprove})
		if !errors.Is(err, plan.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("RejectIsTerminal", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.seedPlan(t, plan.StatusPending, nil, nil)

		rejected, err := env.svc.Review(env.ctxFor(env.manager), p.ID.String(), plan.ReviewDTO{Decision: plan.DecisionReject})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if rejected.Status != plan.StatusRejected {
			t.Fatalf("expected REJECTED, got %s", rejected.Status)
		}

		if _, err := env.svc.Submit(env.ctxFor(env.employee), p.ID.String()); !apperr.IsInvalidTransition(err) {
			t.Errorf("resubmitting a rejected plan should fail, got %v", err)
		}
	})

	t.Run("UnknownDecision", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.seedPlan(t, plan.StatusPending, nil, nil)

		_, err := env.svc.Review(env.ctxFor(env.manager), p.ID.String(), plan.ReviewDTO{Decision: "maybe"})
		if !apperr.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestUpdateResourceStatus(t *testing.T) {
	t.Run("LastCompletionAdvancesPlan", func(t *testing.T) {
		env := newTestEnv(t)
		skillID := uuid.New()
		resA := env.addResource(t, skillID, 5)
		resB := env.addResource(t, skillID, 6)
		p := env.seedPlan(t, plan.StatusApproved, nil, []uuid.UUID{resA.ID, resB.ID})

		after, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), resA.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted)})
		if err != nil {
			t.Fatalf("complete A: %v", err)
		}
		if after.Status != plan.StatusApproved {
			t.Fatalf("plan advanced with B still pending: %s", after.Status)
		}
		entryA := after.ResourceEntry(resA.ID)
		if entryA == nil || entryA.CompletedAt == nil {
			t.Fatalf("completion timestamp not stamped")
		}

		after, err = env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), resB.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted)})
		if err != nil {
			t.Fatalf("complete B: %v", err)
		}
		if after.Status != plan.StatusPendingCompletion {
			t.Errorf("expected PENDING_COMPLETION after last completion, got %s", after.Status)
		}
	})

	t.Run("RetryAfterAdvanceIsStable", func(t *testing.T) {
		env := newTestEnv(t)
		res := env.addResource(t, uuid.New(), 5)
		p := env.seedPlan(t, plan.StatusApproved, nil, []uuid.UUID{res.ID})

		first, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), res.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted)})
		if err != nil {
			t.Fatalf("first completion: %v", err)
		}
		if first.Status != plan.StatusPendingCompletion {
			t.Fatalf("expected PENDING_COMPLETION, got %s", first.Status)
		}
		stamped := first.ResourceEntry(res.ID).CompletedAt

		// Evidence fix-ups stay possible in PENDING_COMPLETION and must not
		// re-fire the transition or restamp the original completion time.
		second, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), res.ID.String(),
			plan.UpdateResourceStatusDTO{
				Status:             string(plan.ResourceCompleted),
				Evidence:           "https://example.com/cert",
				VerificationMethod: string(plan.VerificationCertificate),
			})
		if err != nil {
			t.Fatalf("retry: %v", err)
		}
		if second.Status != plan.StatusPendingCompletion {
			t.Errorf("status moved on retry: %s", second.Status)
		}
		entry := second.ResourceEntry(res.ID)
		if entry.Evidence != "https://example.com/cert" {
			t.Errorf("evidence not saved: %q", entry.Evidence)
		}
		if !entry.CompletedAt.Equal(*stamped) {
			t.Errorf("original completion timestamp lost")
		}
	})

	t.Run("UncompletingClearsTimestamp", func(t *testing.T) {
		env := newTestEnv(t)
		resA := env.addResource(t, uuid.New(), 5)
		resB := env.addResource(t, uuid.New(), 5)
		p := env.seedPlan(t, plan.StatusApproved, nil, []uuid.UUID{resA.ID, resB.ID})

		if _, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), resA.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted)}); err != nil {
			t.Fatalf("complete: %v", err)
		}
		after, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), resA.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceInProgress)})
		if err != nil {
			t.Fatalf("revert: %v", err)
		}
		entry := after.ResourceEntry(resA.ID)
		if entry.Status != plan.ResourceInProgress || entry.CompletedAt != nil {
			t.Errorf("revert should clear timestamp, got %+v", entry)
		}
	})

	t.Run("BlockedOutsideApprovedStatuses", func(t *testing.T) {
		env := newTestEnv(t)
		res := env.addResource(t, uuid.New(), 5)

		for _, status := range []plan.Status{plan.StatusDraft, plan.StatusProcessing, plan.StatusPending} {
			p := env.seedPlan(t, status, nil, []uuid.UUID{res.ID})
			_, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), res.ID.String(),
				plan.UpdateResourceStatusDTO{Status: string(plan.ResourceInProgress)})
			if !errors.Is(err, plan.ErrResourcesLocked) {
				t.Errorf("status %s: expected ErrResourcesLocked, got %v", status, err)
			}
		}
	})

	t.Run("RejectsNonHTTPEvidence", func(t *testing.T) {
		env := newTestEnv(t)
		res := env.addResource(t, uuid.New(), 5)
		p := env.seedPlan(t, plan.StatusApproved, nil, []uuid.UUID{res.ID})

		_, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), res.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted), Evidence: "ftp://host/file"})
		if !apperr.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("UnknownResource", func(t *testing.T) {
		env := newTestEnv(t)
		res := env.addResource(t, uuid.New(), 5)
		p := env.seedPlan(t, plan.StatusApproved, nil, []uuid.UUID{res.ID})

		_, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), uuid.NewString(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted)})
		if !errors.Is(err, plan.ErrResourceEntryNotFound) {
			t.Fatalf("expected ErrResourceEntryNotFound, got %v", err)
		}
	})
}

func TestFinalReview(t *testing.T) {
	t.Run("ApprovalRunsProgression", func(t *testing.T) {
		env := newTestEnv(t)
		goSkill := uuid.New()
		env.userRepo.levels[env.employee.ID] = map[uuid.UUID]int{goSkill: 3}
		res := env.addResource(t, goSkill, 6)
		p := env.seedPlan(t, plan.StatusApproved,
			[]plan.SkillSelection{{SkillID: goSkill, TargetLevel: 5}},
			[]uuid.UUID{res.ID})

		if _, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), res.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted)}); err != nil {
			t.Fatalf("complete resource: %v", err)
		}

		done, err := env.svc.FinalReview(env.ctxFor(env.manager), p.ID.String(), plan.ReviewDTO{
			Decision: plan.DecisionApprove,
			Feedback: "well done",
		})
		if err != nil {
			t.Fatalf("FinalReview: %v", err)
		}
		if done.Status != plan.StatusCompleted {
			t.Fatalf("expected COMPLETED, got %s", done.Status)
		}
		// Resource target 6 beats the plan target 5 and the prior level 3.
		if got := env.userRepo.levels[env.employee.ID][goSkill]; got != 6 {
			t.Errorf("expected skill level 6, got %d", got)
		}
	})

	t.Run("ReapprovalIsIdempotent", func(t *testing.T) {
		env := newTestEnv(t)
		goSkill := uuid.New()
		env.userRepo.levels[env.employee.ID] = map[uuid.UUID]int{goSkill: 3}
		res := env.addResource(t, goSkill, 6)
		p := env.seedPlan(t, plan.StatusApproved, nil, []uuid.UUID{res.ID})

		if _, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), res.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted)}); err != nil {
			t.Fatalf("complete resource: %v", err)
		}
		if _, err := env.svc.FinalReview(env.ctxFor(env.manager), p.ID.String(), plan.ReviewDTO{Decision: plan.DecisionApprove}); err != nil {
			t.Fatalf("first approval: %v", err)
		}
		raises := env.userRepo.raiseCalls

		again, err := env.svc.FinalReview(env.ctxFor(env.manager), p.ID.String(), plan.ReviewDTO{Decision: plan.DecisionApprove})
		if err != nil {
			t.Fatalf("second approval: %v", err)
		}
		if again.Status != plan.StatusCompleted {
			t.Errorf("expected COMPLETED, got %s", again.Status)
		}
		if env.userRepo.raiseCalls != raises {
			t.Errorf("re-approval must not run progression again")
		}
		if got := env.userRepo.levels[env.employee.ID][goSkill]; got != 6 {
			t.Errorf("level changed on re-approval: %d", got)
		}
	})

	t.Run("NeverLowersSkillLevels", func(t *testing.T) {
		env := newTestEnv(t)
		goSkill := uuid.New()
		env.userRepo.levels[env.employee.ID] = map[uuid.UUID]int{goSkill: 8}
		res := env.addResource(t, goSkill, 6)
		p := env.seedPlan(t, plan.StatusApproved, nil, []uuid.UUID{res.ID})

		if _, err := env.svc.UpdateResourceStatus(env.ctxFor(env.employee), p.ID.String(), res.ID.String(),
			plan.UpdateResourceStatusDTO{Status: string(plan.ResourceCompleted)}); err != nil {
			t.Fatalf("complete resource: %v", err)
		}
		if _, err := env.svc.FinalReview(env.ctxFor(env.manager), p.ID.String(), plan.ReviewDTO{Decision: plan.DecisionApprove}); err != nil {
			t.Fatalf("FinalReview: %v", err)
		}
		if got := env.userRepo.levels[env.employee.ID][goSkill]; got != 8 {
			t.Errorf("level must not drop below 8, got %d", got)
		}
	})

	t.Run("NeedsRevisionReopensPlan", func(t *testing.T) {
		env := newTestEnv(t)
		res := env.addResource(t, uuid.New(), 5)
		p := env.seedPlan(t, plan.StatusPendingCompletion, nil, []uuid.UUID{res.ID})

		reopened, err := env.svc.FinalReview(env.ctxFor(env.manager), p.ID.String(), plan.ReviewDTO{
			Decision: plan.DecisionNeedsRevision,
			Feedback: "missing evidence for the workshop",
		})
		if err != nil {
			t.Fatalf("FinalReview: %v", err)
		}
		if reopened.Status != plan.StatusNeedsRevision {
			t.Errorf("expected NEEDS_REVISION, got %s", reopened.Status)
		}
		if env.userRepo.raiseCalls != 0 {
			t.Errorf("rework decision must not touch skill levels")
		}
	})
}

func TestDeleteByID(t *testing.T) {
	t.Run("OwnerDeletesDraft", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.seedPlan(t, plan.StatusDraft, nil, nil)

		if err := env.svc.DeleteByID(env.ctxFor(env.employee), p.ID.String()); err != nil {
			t.Fatalf("DeleteByID: %v", err)
		}
		if got, _ := env.repo.FindByID(p.ID); got != nil {
			t.Errorf("plan still present after delete")
		}
	})

	t.Run("BlockedOncePromotionsAreInFlight", func(t *testing.T) {
		env := newTestEnv(t)
		for _, status := range []plan.Status{plan.StatusPendingCompletion, plan.StatusCompleted} {
			p := env.seedPlan(t, status, nil, nil)
			err := env.svc.DeleteByID(env.ctxFor(env.employee), p.ID.String())
			if !errors.Is(err, plan.ErrPlanLocked) {
				t.Errorf("status %s: expected ErrPlanLocked, got %v", status, err)
			}
		}
	})

	t.Run("OtherUsersPlanLooksMissing", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.seedPlan(t, plan.StatusDraft, nil, nil)

		err := env.svc.DeleteByID(env.ctxFor(env.manager), p.ID.String())
		if !errors.Is(err, plan.ErrPlanNotFound) {
			t.Fatalf("expected ErrPlanNotFound, got %v", err)
		}
	})
}

func TestHandleRecommendationJob(t *testing.T) {
	t.Run("PopulatesProcessingPlan", func(t *testing.T) {
		env := newTestEnv(t)
		skillX := uuid.New()
		skillY := uuid.New()
		resA := env.addResource(t, skillX, 5)
		resB := env.addResource(t, skillY, 4)
		p := env.seedPlan(t, plan.StatusProcessing,
			[]plan.SkillSelection{{SkillID: skillX, TargetLevel: 5}}, nil)

		env.recommender.result = &recommendation.Result{
			Recommendations: []recommendation.Recommendation{
				{ResourceID: resA.ID, SkillID: skillX},
				{ResourceID: resB.ID, SkillID: skillY},
			},
			SkillsToImprove: []recommendation.TargetSkill{
				{SkillID: skillX, TargetLevel: 9},
				{SkillID: skillY, TargetLevel: 4},
			},
			Source: recommendation.SourceAI,
		}

		err := env.svc.HandleRecommendationJob(context.Background(), queue.RecommendationJob{
			EmployeeID: env.employee.ID,
			PlanID:     p.ID,
		})
		if err != nil {
			t.Fatalf("HandleRecommendationJob: %v", err)
		}

		got := env.reload(t, p.ID)
		if got.Status != plan.StatusDraft {
			t.Fatalf("expected DRAFT after population, got %s", got.Status)
		}
		if got.RecommendationSource != recommendation.SourceAI {
			t.Errorf("expected ai source, got %q", got.RecommendationSource)
		}
		if len(got.Resources) != 2 {
			t.Errorf("expected 2 recommended resources, got %d", len(got.Resources))
		}
		if len(got.Skills) != 2 {
			t.Fatalf("expected 2 merged skills, got %d", len(got.Skills))
		}
		// The employee's own target for X outranks the suggested one.
		for _, ps := range got.Skills {
			if ps.SkillID == skillX && ps.TargetLevel != 5 {
				t.Errorf("employee target overwritten: %d", ps.TargetLevel)
			}
		}

		// The populated draft flows straight into review.
		submitted, err := env.svc.Submit(env.ctxFor(env.employee), p.ID.String())
		if err != nil {
			t.Fatalf("Submit after population: %v", err)
		}
		if submitted.Status != plan.StatusPending {
			t.Errorf("expected PENDING after submit, got %s", submitted.Status)
		}
	})

	t.Run("RedeliveryIsANoOp", func(t *testing.T) {
		env := newTestEnv(t)
		res := env.addResource(t, uuid.New(), 5)
		p := env.seedPlan(t, plan.StatusProcessing, nil, nil)
		env.recommender.result = &recommendation.Result{
			Recommendations: []recommendation.Recommendation{{ResourceID: res.ID}},
			Source:          recommendation.SourceAI,
		}
		job := queue.RecommendationJob{EmployeeID: env.employee.ID, PlanID: p.ID}

		if err := env.svc.HandleRecommendationJob(context.Background(), job); err != nil {
			t.Fatalf("first delivery: %v", err)
		}
		calls := env.recommender.calls

		if err := env.svc.HandleRecommendationJob(context.Background(), job); err != nil {
			t.Fatalf("redelivery: %v", err)
		}
		if env.recommender.calls != calls {
			t.Errorf("redelivery should not re-score")
		}
		if env.reload(t, p.ID).Status != plan.StatusDraft {
			t.Errorf("plan status disturbed by redelivery")
		}
	})

	t.Run("DropsJobForDeletedPlan", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.svc.HandleRecommendationJob(context.Background(), queue.RecommendationJob{
			EmployeeID: env.employee.ID,
			PlanID:     uuid.New(),
		})
		if err != nil {
			t.Fatalf("deleted plan should drop the job, got %v", err)
		}
	})

	t.Run("BuildsInputFromProfileAndCatalog", func(t *testing.T) {
		env := newTestEnv(t)
		skillX := uuid.New()
		env.catalog.skills = []skill.Skill{{ID: skillX, OrgID: env.orgID, Name: "Go"}}
		env.userRepo.levels[env.employee.ID] = map[uuid.UUID]int{skillX: 3}
		env.addResource(t, skillX, 6)
		p := env.seedPlan(t, plan.StatusProcessing,
			[]plan.SkillSelection{{SkillID: skillX, TargetLevel: 6}}, nil)

		if err := env.svc.HandleRecommendationJob(context.Background(), queue.RecommendationJob{
			EmployeeID: env.employee.ID,
			PlanID:     p.ID,
		}); err != nil {
			t.Fatalf("HandleRecommendationJob: %v", err)
		}

		in := env.recommender.lastIn
		if len(in.UserSkills) != 1 || in.UserSkills[0].Level != 3 || in.UserSkills[0].Name != "Go" {
			t.Errorf("user skills not resolved: %+v", in.UserSkills)
		}
		if len(in.SkillsToImprove) != 1 || in.SkillsToImprove[0].TargetLevel != 6 {
			t.Errorf("targets not forwarded: %+v", in.SkillsToImprove)
		}
		if len(in.Resources) != 1 {
			t.Errorf("visible catalog not forwarded: %d resources", len(in.Resources))
		}
		if in.Persona != string(user.RoleEmployee) {
			t.Errorf("persona should carry the role, got %q", in.Persona)
		}
	})
}

func TestRequeueStaleProcessing(t *testing.T) {
	env := newTestEnv(t)
	stale := env.seedPlan(t, plan.StatusProcessing, nil, nil)
	env.repo.plans[stale.ID].UpdatedAt = time.Now().Add(-time.Hour)

	fresh := env.seedPlan(t, plan.StatusProcessing, nil, nil)
	env.repo.plans[fresh.ID].UpdatedAt = time.Now()

	n, err := env.svc.RequeueStaleProcessing(context.Background(), 10*time.Minute)
	if err != nil {
		t.Fatalf("RequeueStaleProcessing: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 requeued plan, got %d", n)
	}
	if len(env.publisher.jobs) != 1 || env.publisher.jobs[0].PlanID != stale.ID {
		t.Errorf("wrong job requeued: %+v", env.publisher.jobs)
	}
}
