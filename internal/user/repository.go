package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(u *User) error
	FindByID(id uuid.UUID) (*User, error)
	FindByEmail(email string) (*User, error)
	ListByOrg(orgID uuid.UUID) ([]*User, error)
	ListSkills(userID uuid.UUID) ([]UserSkill, error)
	RaiseSkillLevels(userID uuid.UUID, targets map[uuid.UUID]int) error
}

type userRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(u *User) error {
	return r.db.Create(u).Error
}

func (r *userRepository) FindByID(id uuid.UUID) (*User, error) {
	var u User
	if err := r.db.Preload("Skills").First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(email string) (*User, error) {
	var u User
	if err := r.db.First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) ListByOrg(orgID uuid.UUID) ([]*User, error) {
	var users []*User
	if err := r.db.
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListSkills(userID uuid.UUID) ([]UserSkill, error) {
	var skills []UserSkill
	if err := r.db.
		Where("user_id = ?", userID).
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

// RaiseSkillLevels applies a raise-only merge in a single statement. The
// GREATEST on conflict makes the write idempotent and safe under concurrent
// plan approvals for the same employee.
func (r *userRepository) RaiseSkillLevels(userID uuid.UUID, targets map[uuid.UUID]int) error {
	if len(targets) == 0 {
		return nil
	}

	records := make([]UserSkill, 0, len(targets))
	for skillID, level := range targets {
		records = append(records, UserSkill{
			UserID:  userID,
			SkillID: skillID,
			Level:   level,
		})
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "skill_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"level": gorm.Expr("GREATEST(user_skills.level, EXCLUDED.level)"),
		}),
	}).Create(&records).Error
}
