package skill

type Container struct {
	Handler *Handler
	Service Service
	Repo    Repository
}

func NewContainer(repo Repository, cache CacheInvalidator) *Container {
	service := NewService(repo, cache)
	handler := NewHandler(service)

	return &Container{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
