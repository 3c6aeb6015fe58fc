package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/resource"
	"github.com/elevohq/elevo-backend/internal/skill"
	"github.com/elevohq/elevo-backend/internal/user"
)

const cacheTTL = 5 * time.Minute

// Accessor is the read path for the org catalogs. Reads go through redis;
// skill and resource mutations call the Invalidate methods. A nil redis
// client degrades to direct repository reads.
type Accessor struct {
	rdb          *goredis.Client
	skillRepo    skill.Repository
	resourceRepo resource.Repository
}

func NewAccessor(rdb *goredis.Client, skillRepo skill.Repository, resourceRepo resource.Repository) *Accessor {
	return &Accessor{
		rdb:          rdb,
		skillRepo:    skillRepo,
		resourceRepo: resourceRepo,
	}
}

func skillsKey(orgID uuid.UUID) string    { return fmt.Sprintf("catalog:skills:%s", orgID) }
func resourcesKey(orgID uuid.UUID) string { return fmt.Sprintf("catalog:resources:%s", orgID) }

func (a *Accessor) ListSkills(ctx context.Context, orgID uuid.UUID) ([]skill.Skill, error) {
	var skills []skill.Skill
	if a.cacheGet(ctx, skillsKey(orgID), &skills) {
		return skills, nil
	}

	skills, err := a.skillRepo.ListByOrg(orgID)
	if err != nil {
		return nil, err
	}

	a.cacheSet(ctx, skillsKey(orgID), skills)
	return skills, nil
}

// ListVisibleResources returns the resources the employee may see: the
// org-wide catalog plus team-scoped resources owned by their manager. The
// full org list is what gets cached; the visibility filter runs in memory
// so invalidation stays a single key per org.
func (a *Accessor) ListVisibleResources(ctx context.Context, u *user.User) ([]resource.Resource, error) {
	all, err := a.listOrgResources(ctx, u.OrgID)
	if err != nil {
		return nil, err
	}
	return FilterVisible(all, u), nil
}

func (a *Accessor) listOrgResources(ctx context.Context, orgID uuid.UUID) ([]resource.Resource, error) {
	var resources []resource.Resource
	if a.cacheGet(ctx, resourcesKey(orgID), &resources) {
		return resources, nil
	}

	resources, err := a.resourceRepo.ListByOrg(orgID)
	if err != nil {
		return nil, err
	}

	a.cacheSet(ctx, resourcesKey(orgID), resources)
	return resources, nil
}

// FilterVisible applies the visibility rule without touching storage.
func FilterVisible(all []resource.Resource, u *user.User) []resource.Resource {
	visible := make([]resource.Resource, 0, len(all))
	for _, res := range all {
		switch res.Visibility {
		case resource.VisibilityOrg:
			visible = append(visible, res)
		case resource.VisibilityTeam:
			if u.ManagerID != nil && res.CreatedBy == *u.ManagerID {
				visible = append(visible, res)
			}
		}
	}
	return visible
}

func (a *Accessor) InvalidateSkills(ctx context.Context, orgID uuid.UUID) {
	a.invalidate(ctx, skillsKey(orgID))
}

func (a *Accessor) InvalidateResources(ctx context.Context, orgID uuid.UUID) {
	a.invalidate(ctx, resourcesKey(orgID))
}

func (a *Accessor) invalidate(ctx context.Context, key string) {
	if a.rdb == nil {
		return
	}
	if err := a.rdb.Del(ctx, key).Err(); err != nil {
		config.WithContext(ctx).WithError(err).Warnf("Failed to invalidate cache key %s", key)
	}
}

func (a *Accessor) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if a.rdb == nil {
		return false
	}
	raw, err := a.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			config.WithContext(ctx).WithError(err).Warnf("Cache read failed for key %s", key)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		config.WithContext(ctx).WithError(err).Warnf("Dropping corrupt cache entry %s", key)
		_ = a.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

func (a *Accessor) cacheSet(ctx context.Context, key string, value interface{}) {
	if a.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		config.WithContext(ctx).WithError(err).Warnf("Cache write failed for key %s", key)
	}
}
