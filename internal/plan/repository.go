package plan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/recommendation"
	"gorm.io/gorm"
)

type PlanRepository interface {
	Create(p *Plan) error
	FindByID(id uuid.UUID) (*Plan, error)
	ListByUser(userID uuid.UUID) ([]*Plan, error)
	ListForReview(orgID uuid.UUID) ([]*Plan, error)
	Delete(id uuid.UUID) error

	// UpdateStatus applies from->to as a conditional update and reports
	// whether a row actually changed. This is what keeps automatic
	// transitions exactly-once under concurrent requests.
	UpdateStatus(planID uuid.UUID, from, to Status, feedback *string) (bool, error)

	SaveResourceEntry(entry *PlanResource) error

	// ReplaceSelections is the worker write-back: in one transaction it
	// moves the plan from->to, replaces both embedded sets and records the
	// recommendation source. Returns false when the plan already left the
	// `from` status.
	ReplaceSelections(planID uuid.UUID, from, to Status, source string, skills []PlanSkill, resources []PlanResource) (bool, error)

	ListStaleProcessing(olderThan time.Time) ([]*Plan, error)
	ListPeerProfiles(orgID, excludeUserID uuid.UUID) ([]recommendation.PeerProfile, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(p *Plan) error {
	return r.db.Create(p).Error
}

func (r *planRepository) FindByID(id uuid.UUID) (*Plan, error) {
	var p Plan
	err := r.db.
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		Preload("Resources", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *planRepository) ListByUser(userID uuid.UUID) ([]*Plan, error) {
	var plans []*Plan
	if err := r.db.
		Preload("Skills").
		Preload("Resources").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepository) ListForReview(orgID uuid.UUID) ([]*Plan, error) {
	var plans []*Plan
	if err := r.db.
		Preload("Skills").
		Preload("Resources").
		Where("org_id = ? AND status IN ?", orgID, []Status{StatusPending, StatusPendingCompletion}).
		Order("updated_at ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&Plan{}, "id = ?", id).Error
}

func (r *planRepository) UpdateStatus(planID uuid.UUID, from, to Status, feedback *string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if feedback != nil {
		updates["manager_feedback"] = *feedback
	}

	result := r.db.Model(&Plan{}).
		Where("id = ? AND status = ?", planID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *planRepository) SaveResourceEntry(entry *PlanResource) error {
	return r.db.Save(entry).Error
}

func (r *planRepository) ReplaceSelections(planID uuid.UUID, from, to Status, source string, skills []PlanSkill, resources []PlanResource) (bool, error) {
	transitioned := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Plan{}).
			Where("id = ? AND status = ?", planID, from).
			Updates(map[string]interface{}{
				"status":                to,
				"recommendation_source": source,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		transitioned = true

		if err := tx.Delete(&PlanSkill{}, "plan_id = ?", planID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&PlanResource{}, "plan_id = ?", planID).Error; err != nil {
			return err
		}

		for i := range skills {
			skills[i].PlanID = planID
		}
		for i := range resources {
			resources[i].PlanID = planID
		}
		if len(skills) > 0 {
			if err := tx.Create(&skills).Error; err != nil {
				return err
			}
		}
		if len(resources) > 0 {
			if err := tx.Create(&resources).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return transitioned, err
}

func (r *planRepository) ListStaleProcessing(olderThan time.Time) ([]*Plan, error) {
	var plans []*Plan
	if err := r.db.
		Where("status = ? AND updated_at < ?", StatusProcessing, olderThan).
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// ListPeerProfiles collects the collaborative-filtering signal: resources
// used on peers' approved or completed plans, together with those peers'
// skill records.
func (r *planRepository) ListPeerProfiles(orgID, excludeUserID uuid.UUID) ([]recommendation.PeerProfile, error) {
	var rows []struct {
		UserID     uuid.UUID
		ResourceID uuid.UUID
	}
	err := r.db.Table("plans").
		Select("plans.user_id, plan_resources.resource_id").
		Joins("JOIN plan_resources ON plan_resources.plan_id = plans.id").
		Where("plans.org_id = ? AND plans.user_id <> ? AND plans.status IN ?",
			orgID, excludeUserID,
			[]Status{StatusApproved, StatusPendingCompletion, StatusCompleted}).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	byUser := make(map[uuid.UUID][]uuid.UUID)
	order := make([]uuid.UUID, 0)
	for _, row := range rows {
		if _, ok := byUser[row.UserID]; !ok {
			order = append(order, row.UserID)
		}
		byUser[row.UserID] = append(byUser[row.UserID], row.ResourceID)
	}

	var skillRows []struct {
		UserID  uuid.UUID
		SkillID uuid.UUID
		Level   int
	}
	if err := r.db.Table("user_skills").
		Select("user_id, skill_id, level").
		Where("user_id IN ?", order).
		Scan(&skillRows).Error; err != nil {
		return nil, err
	}
	skillsByUser := make(map[uuid.UUID][]recommendation.SkillLevel)
	for _, row := range skillRows {
		skillsByUser[row.UserID] = append(skillsByUser[row.UserID], recommendation.SkillLevel{
			SkillID: row.SkillID,
			Level:   row.Level,
		})
	}

	profiles := make([]recommendation.PeerProfile, 0, len(order))
	for _, userID := range order {
		profiles = append(profiles, recommendation.PeerProfile{
			UserID:      userID,
			Skills:      skillsByUser[userID],
			ResourceIDs: byUser[userID],
		})
	}
	return profiles, nil
}
