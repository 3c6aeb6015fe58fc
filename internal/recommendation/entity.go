package recommendation

import (
	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/resource"
	"github.com/elevohq/elevo-backend/internal/skill"
)

const DefaultLimit = 10

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

type SkillLevel struct {
	SkillID uuid.UUID `json:"skillId"`
	Name    string    `json:"name,omitempty"`
	Level   int       `json:"level"`
}

type TargetSkill struct {
	SkillID     uuid.UUID `json:"skillId"`
	Name        string    `json:"name,omitempty"`
	TargetLevel int       `json:"targetLevel"`
}

// PeerProfile carries the collaborative-filtering signal: which resources a
// peer with a given skill profile has used on approved or completed plans.
type PeerProfile struct {
	UserID      uuid.UUID    `json:"userId"`
	Skills      []SkillLevel `json:"skills"`
	ResourceIDs []uuid.UUID  `json:"resources"`
}

// Input is everything the client needs to build a scoring request.
type Input struct {
	UserSkills         []SkillLevel
	SkillsToImprove    []TargetSkill
	PerformanceReports []string
	Resources          []resource.Resource
	Skills             []skill.Skill
	Peers              []PeerProfile
	Limit              int
	Persona            string
	Weights            Weights
}

// Request is the wire payload sent to the scoring service.
type Request struct {
	UserSkills         []SkillLevel      `json:"user_skills"`
	SkillsToImprove    []TargetSkill     `json:"skills_to_improve"`
	PerformanceReports []string          `json:"performance_reports"`
	Resources          []RequestResource `json:"resources"`
	Skills             []RequestSkill    `json:"skills"`
	PeerData           []PeerProfile     `json:"peer_data"`
	Limit              int               `json:"limit"`
	Persona            string            `json:"persona"`
	CustomWeights      Weights           `json:"custom_weights"`
}

type RequestResource struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Difficulty  string    `json:"difficulty"`
	TargetLevel int       `json:"targetLevel"`
	SkillID     uuid.UUID `json:"skill"`
}

type RequestSkill struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// Response is the scoring service's answer.
type Response struct {
	Recommendations []ResponseItem `json:"recommendations"`
	SkillsToImprove []TargetSkill  `json:"skills_to_improve"`
}

type ResponseItem struct {
	ResourceID string `json:"resourceId"`
	Title      string `json:"title"`
	Provider   string `json:"provider"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	Duration   int    `json:"duration"`
}

// Recommendation is a normalized, deduplicated result entry.
type Recommendation struct {
	ResourceID      uuid.UUID `json:"resource_id"`
	SkillID         uuid.UUID `json:"skill_id"`
	Title           string    `json:"title"`
	Provider        string    `json:"provider"`
	Type            string    `json:"type"`
	URL             string    `json:"url"`
	TargetLevel     int       `json:"target_level"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Result always carries some list; Source tells callers whether it was
// AI-ranked or the fallback sample.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	SkillsToImprove []TargetSkill    `json:"skills_to_improve"`
	Source          string           `json:"source"`
}
