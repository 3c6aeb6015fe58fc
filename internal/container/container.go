package container

import (
	"context"
	"log"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/elevohq/elevo-backend/internal/auth"
	"github.com/elevohq/elevo-backend/internal/catalog"
	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/organization"
	"github.com/elevohq/elevo-backend/internal/plan"
	"github.com/elevohq/elevo-backend/internal/queue"
	"github.com/elevohq/elevo-backend/internal/recommendation"
	"github.com/elevohq/elevo-backend/internal/resource"
	"github.com/elevohq/elevo-backend/internal/skill"
	"github.com/elevohq/elevo-backend/internal/user"
)

type Container struct {
	UserContainer         *user.UserContainer
	SkillContainer        *skill.Container
	ResourceContainer     *resource.Container
	OrganizationContainer *organization.Container
	PlanContainer         *plan.PlanContainer

	Catalog *catalog.Accessor
	Redis   *goredis.Client
}

func New() *Container {
	config.Init()
	auth.Init()

	dsn := os.Getenv("DATABASE_DSN")
	if err := config.Connect(context.Background(), dsn); err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	rdb, err := config.ConnectRedis()
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}

	userContainer := user.NewUserContainer(config.DB)
	skillRepo := skill.NewRepository(config.DB)
	resourceRepo := resource.NewRepository(config.DB)

	catalogAccessor := catalog.NewAccessor(rdb, skillRepo, resourceRepo)
	skillContainer := skill.NewContainer(skillRepo, catalogAccessor)
	resourceContainer := resource.NewContainer(resourceRepo, catalogAccessor)
	orgContainer := organization.NewContainer(config.DB)

	provider, err := recommendation.NewGeminiProvider(context.Background())
	if err != nil {
		config.Logger().WithError(err).
			Warn("Scoring provider unavailable, recommendations will use the fallback sample")
		provider = recommendation.UnavailableProvider(err)
	}
	recommender := recommendation.NewClient(provider)
	publisher := queue.NewPublisher(rdb)

	planContainer := plan.NewPlanContainer(
		config.DB,
		userContainer.Repo,
		resourceRepo,
		catalogAccessor,
		orgContainer.Service,
		recommender,
		publisher,
	)

	return &Container{
		UserContainer:         userContainer,
		SkillContainer:        skillContainer,
		ResourceContainer:     resourceContainer,
		OrganizationContainer: orgContainer,
		PlanContainer:         planContainer,
		Catalog:               catalogAccessor,
		Redis:                 rdb,
	}
}
