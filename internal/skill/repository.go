package skill

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(s *Skill) error
	FindByID(id uuid.UUID) (*Skill, error)
	ListByOrg(orgID uuid.UUID) ([]Skill, error)
	Update(s *Skill) error
	Delete(id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(s *Skill) error {
	return r.db.Create(s).Error
}

func (r *repository) FindByID(id uuid.UUID) (*Skill, error) {
	var s Skill
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListByOrg(orgID uuid.UUID) ([]Skill, error) {
	var skills []Skill
	if err := r.db.
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *repository) Update(s *Skill) error {
	return r.db.Save(s).Error
}

func (r *repository) Delete(id uuid.UUID) error {
	return r.db.Delete(&Skill{}, "id = ?", id).Error
}
