package resource

import (
	"time"

	"github.com/google/uuid"
)

type Resource struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrgID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	SkillID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"skill_id"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null;index" json:"created_by"`
	Title           string     `gorm:"type:text;not null" json:"title"`
	Type            string     `gorm:"type:text" json:"type"`
	Provider        string     `gorm:"type:text" json:"provider"`
	URL             string     `gorm:"type:text" json:"url"`
	Difficulty      string     `gorm:"type:text" json:"difficulty"`
	TargetLevel     int        `gorm:"not null;default:0" json:"target_level"`
	Visibility      Visibility `gorm:"type:text;not null;default:'ORG'" json:"visibility"`
	DurationMinutes int        `gorm:"not null;default:0" json:"duration_minutes"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
