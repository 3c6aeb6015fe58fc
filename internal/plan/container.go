package plan

import (
	"gorm.io/gorm"

	"github.com/elevohq/elevo-backend/internal/queue"
	"github.com/elevohq/elevo-backend/internal/recommendation"
	"github.com/elevohq/elevo-backend/internal/resource"
	"github.com/elevohq/elevo-backend/internal/user"
)

type PlanContainer struct {
	Handler *Handler
	Service PlanService
	Repo    PlanRepository
}

func NewPlanContainer(
	db *gorm.DB,
	userRepo user.UserRepository,
	resourceRepo resource.Repository,
	catalogAccessor CatalogAccessor,
	weightsProvider WeightsProvider,
	recommender recommendation.Client,
	publisher queue.Publisher,
) *PlanContainer {
	repo := NewRepository(db)
	service := NewService(repo, userRepo, resourceRepo, catalogAccessor, weightsProvider, recommender, publisher)
	handler := NewHandler(service)

	return &PlanContainer{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
