package plan

type SkillSelectionDTO struct {
	SkillID     string `json:"skill_id"`
	TargetLevel int    `json:"target_level"`
}

type CreatePlanDTO struct {
	Goals       string              `json:"goals"`
	Skills      []SkillSelectionDTO `json:"skills"`
	ResourceIDs []string            `json:"resource_ids"`
}

type UpdateResourceStatusDTO struct {
	Status             string `json:"status"`
	Evidence           string `json:"evidence,omitempty"`
	VerificationMethod string `json:"verification_method,omitempty"`
}

type ReviewDTO struct {
	Decision string `json:"decision"`
	Feedback string `json:"feedback"`
}

const (
	DecisionApprove       = "approve"
	DecisionReject        = "reject"
	DecisionNeedsRevision = "needs_revision"
)
