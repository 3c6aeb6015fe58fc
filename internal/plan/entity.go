package plan

import (
	"time"

	"github.com/google/uuid"
)

type Plan struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrgID                uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Goals                string    `gorm:"type:text" json:"goals"`
	Status               Status    `gorm:"type:text;not null" json:"status"`
	ManagerFeedback      string    `gorm:"type:text" json:"manager_feedback,omitempty"`
	RecommendationSource string    `gorm:"type:text" json:"recommendation_source,omitempty"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Skills    []PlanSkill    `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"skills,omitempty"`
	Resources []PlanResource `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
}

type PlanSkill struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlanID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_plan_skill" json:"plan_id"`
	SkillID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_skill" json:"skill_id"`
	TargetLevel int       `gorm:"not null" json:"target_level"`
	OrderIndex  int       `gorm:"not null" json:"order_index"`
}

type PlanResource struct {
	ID                 uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlanID             uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_plan_resource" json:"plan_id"`
	ResourceID         uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_plan_resource" json:"resource_id"`
	Status             ResourceStatus     `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	CompletedAt        *time.Time         `json:"completed_at,omitempty"`
	Evidence           string             `gorm:"type:text" json:"evidence,omitempty"`
	VerificationMethod VerificationMethod `gorm:"type:text;not null;default:'NONE'" json:"verification_method"`
	OrderIndex         int                `gorm:"not null" json:"order_index"`
}

// SkillSelection is a {skill, targetLevel} pair before deduplication.
type SkillSelection struct {
	SkillID     uuid.UUID
	TargetLevel int
}

// NewPlanSkills is the single constructor for the skillsToImprove set:
// order preserved, first occurrence wins per skill.
func NewPlanSkills(selections []SkillSelection) []PlanSkill {
	seen := make(map[uuid.UUID]bool)
	out := make([]PlanSkill, 0, len(selections))
	for _, sel := range selections {
		if sel.SkillID == uuid.Nil || seen[sel.SkillID] {
			continue
		}
		seen[sel.SkillID] = true
		out = append(out, PlanSkill{
			ID:          uuid.New(),
			SkillID:     sel.SkillID,
			TargetLevel: sel.TargetLevel,
			OrderIndex:  len(out),
		})
	}
	return out
}

// NewPlanResources is the single constructor for the recommendedResources
// set, deduplicated by resource identity.
func NewPlanResources(resourceIDs []uuid.UUID) []PlanResource {
	seen := make(map[uuid.UUID]bool)
	out := make([]PlanResource, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, PlanResource{
			ID:                 uuid.New(),
			ResourceID:         id,
			Status:             ResourcePending,
			VerificationMethod: VerificationNone,
			OrderIndex:         len(out),
		})
	}
	return out
}

// AllResourcesCompleted reports whether every tracked resource is done.
// A plan with no resources never counts as complete.
func (p *Plan) AllResourcesCompleted() bool {
	if len(p.Resources) == 0 {
		return false
	}
	for _, pr := range p.Resources {
		if pr.Status != ResourceCompleted {
			return false
		}
	}
	return true
}

func (p *Plan) ResourceEntry(resourceID uuid.UUID) *PlanResource {
	for i := range p.Resources {
		if p.Resources[i].ResourceID == resourceID {
			return &p.Resources[i]
		}
	}
	return nil
}

func (p *Plan) ResourceIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Resources))
	for _, pr := range p.Resources {
		ids = append(ids, pr.ResourceID)
	}
	return ids
}
