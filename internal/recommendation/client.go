package recommendation

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/resource"
)

const scoringTimeout = 20 * time.Second

type Client interface {
	// Recommend always returns a result. Upstream failures degrade to a
	// random sample of the visible catalog, never to an error.
	Recommend(ctx context.Context, in Input) *Result
}

type client struct {
	provider Provider
}

func NewClient(provider Provider) Client {
	return &client{provider: provider}
}

func (c *client) Recommend(ctx context.Context, in Input) *Result {
	log := config.WithContext(ctx)

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := buildRequest(in, limit)

	scoringCtx, cancel := context.WithTimeout(ctx, scoringTimeout)
	defer cancel()

	resp, err := c.provider.Score(scoringCtx, req)
	if err != nil {
		log.WithError(err).Warn("Scoring service unavailable, using fallback sample")
		return c.fallback(in, limit)
	}

	recs := normalize(resp.Recommendations, in.Resources, limit)
	if len(recs) == 0 {
		log.Warn("Scoring service returned no usable recommendations, using fallback sample")
		return c.fallback(in, limit)
	}

	return &Result{
		Recommendations: recs,
		SkillsToImprove: dedupTargets(resp.SkillsToImprove),
		Source:          SourceAI,
	}
}

func buildRequest(in Input, limit int) *Request {
	req := &Request{
		UserSkills:         in.UserSkills,
		SkillsToImprove:    in.SkillsToImprove,
		PerformanceReports: in.PerformanceReports,
		PeerData:           in.Peers,
		Limit:              limit,
		Persona:            in.Persona,
		CustomWeights:      in.Weights,
	}

	for _, res := range in.Resources {
		req.Resources = append(req.Resources, RequestResource{
			ID:          res.ID,
			Title:       res.Title,
			Type:        res.Type,
			Difficulty:  res.Difficulty,
			TargetLevel: res.TargetLevel,
			SkillID:     res.SkillID,
		})
	}
	for _, sk := range in.Skills {
		req.Skills = append(req.Skills, RequestSkill{
			ID:       sk.ID,
			Name:     sk.Name,
			Category: sk.Category,
		})
	}
	return req
}

// normalize maps response items back onto catalog resources, dropping
// entries the model invented and keeping only the first occurrence of each
// resource identity.
func normalize(items []ResponseItem, catalog []resource.Resource, limit int) []Recommendation {
	byID := make(map[uuid.UUID]resource.Resource, len(catalog))
	for _, res := range catalog {
		byID[res.ID] = res
	}

	seen := make(map[uuid.UUID]bool)
	recs := make([]Recommendation, 0, limit)
	for _, item := range items {
		id, err := uuid.Parse(item.ResourceID)
		if err != nil {
			continue
		}
		res, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		recs = append(recs, fromResource(res))
		if len(recs) == limit {
			break
		}
	}
	return recs
}

func (c *client) fallback(in Input, limit int) *Result {
	sampled := make([]resource.Resource, len(in.Resources))
	copy(sampled, in.Resources)
	rand.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})

	if len(sampled) > limit {
		sampled = sampled[:limit]
	}

	seen := make(map[uuid.UUID]bool)
	recs := make([]Recommendation, 0, len(sampled))
	for _, res := range sampled {
		if seen[res.ID] {
			continue
		}
		seen[res.ID] = true
		recs = append(recs, fromResource(res))
	}

	return &Result{
		Recommendations: recs,
		SkillsToImprove: dedupTargets(in.SkillsToImprove),
		Source:          SourceFallback,
	}
}

func fromResource(res resource.Resource) Recommendation {
	return Recommendation{
		ResourceID:      res.ID,
		SkillID:         res.SkillID,
		Title:           res.Title,
		Provider:        res.Provider,
		Type:            res.Type,
		URL:             res.URL,
		TargetLevel:     res.TargetLevel,
		DurationMinutes: res.DurationMinutes,
	}
}

func dedupTargets(targets []TargetSkill) []TargetSkill {
	seen := make(map[uuid.UUID]bool)
	out := make([]TargetSkill, 0, len(targets))
	for _, target := range targets {
		if target.SkillID == uuid.Nil || seen[target.SkillID] {
			continue
		}
		seen[target.SkillID] = true
		out = append(out, target)
	}
	return out
}
