package resource

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(res *Resource) error
	FindByID(id uuid.UUID) (*Resource, error)
	FindByIDs(ids []uuid.UUID) ([]Resource, error)
	ListByOrg(orgID uuid.UUID) ([]Resource, error)
	ListVisible(orgID uuid.UUID, managerID *uuid.UUID) ([]Resource, error)
	Update(res *Resource) error
	Delete(id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(res *Resource) error {
	return r.db.Create(res).Error
}

func (r *repository) FindByID(id uuid.UUID) (*Resource, error) {
	var res Resource
	if err := r.db.First(&res, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *repository) FindByIDs(ids []uuid.UUID) ([]Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var resources []Resource
	if err := r.db.Where("id IN ?", ids).Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *repository) ListByOrg(orgID uuid.UUID) ([]Resource, error) {
	var resources []Resource
	if err := r.db.
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

// ListVisible returns org-wide resources plus team-scoped resources owned
// by the employee's manager.
func (r *repository) ListVisible(orgID uuid.UUID, managerID *uuid.UUID) ([]Resource, error) {
	query := r.db.Where("org_id = ? AND visibility = ?", orgID, VisibilityOrg)
	if managerID != nil {
		query = r.db.Where(
			"org_id = ? AND (visibility = ? OR (visibility = ? AND created_by = ?))",
			orgID, VisibilityOrg, VisibilityTeam, *managerID,
		)
	}

	var resources []Resource
	if err := query.Order("created_at DESC").Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *repository) Update(res *Resource) error {
	return r.db.Save(res).Error
}

func (r *repository) Delete(id uuid.UUID) error {
	return r.db.Delete(&Resource{}, "id = ?", id).Error
}
