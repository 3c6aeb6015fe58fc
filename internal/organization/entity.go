package organization

import (
	"time"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/recommendation"
	"gorm.io/datatypes"
)

type Organization struct {
	ID                    uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name                  string         `gorm:"type:text;not null" json:"name"`
	RecommendationWeights datatypes.JSON `gorm:"type:jsonb" json:"recommendation_weights,omitempty"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Weights decodes the stored overrides, falling back to defaults for
// anything the organization has not customized.
func (o *Organization) Weights() recommendation.Weights {
	return recommendation.WeightsFromJSON(o.RecommendationWeights)
}
