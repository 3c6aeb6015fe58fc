package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrgID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	ManagerID    *uuid.UUID `gorm:"type:uuid;index" json:"manager_id,omitempty"`
	Name         string     `gorm:"type:text;not null" json:"name"`
	Email        string     `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"type:text;not null" json:"-"`
	Role         Role       `gorm:"type:text;not null;default:'EMPLOYEE'" json:"role"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Skills []UserSkill `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"skills,omitempty"`
}

// UserSkill is the employee skill record. Level only moves up: the
// progression engine raises it with a GREATEST upsert and nothing in plan
// processing ever lowers it.
type UserSkill struct {
	UserID    uuid.UUID `gorm:"type:uuid;not null;primaryKey" json:"user_id"`
	SkillID   uuid.UUID `gorm:"type:uuid;not null;primaryKey" json:"skill_id"`
	Level     int       `gorm:"not null" json:"level"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
