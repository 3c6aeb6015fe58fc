package organization

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(org *Organization) error
	FindByID(id uuid.UUID) (*Organization, error)
	Update(org *Organization) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(org *Organization) error {
	return r.db.Create(org).Error
}

func (r *repository) FindByID(id uuid.UUID) (*Organization, error) {
	var org Organization
	if err := r.db.First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) Update(org *Organization) error {
	return r.db.Save(org).Error
}
