package recommendation

import "encoding/json"

// Weights are the organization-level scoring weights, each in [0,1].
// They are loaded per request and passed by value, never mutated in place.
type Weights struct {
	SkillGap        float64 `json:"skill_gap"`
	SkillRelevance  float64 `json:"skill_relevance"`
	DifficultyMatch float64 `json:"difficulty_match"`
	Collaborative   float64 `json:"collaborative"`
	ResourceType    float64 `json:"resource_type"`
	SkillSimilarity float64 `json:"skill_similarity"`
}

func DefaultWeights() Weights {
	return Weights{
		SkillGap:        0.30,
		SkillRelevance:  0.25,
		DifficultyMatch: 0.15,
		Collaborative:   0.15,
		ResourceType:    0.05,
		SkillSimilarity: 0.10,
	}
}

// WeightsFromJSON overlays recognized keys from a stored jsonb document on
// top of the defaults. Unknown keys are ignored and values are clamped to
// [0,1]. A nil or malformed document yields the defaults.
func WeightsFromJSON(raw []byte) Weights {
	w := DefaultWeights()
	if len(raw) == 0 {
		return w
	}

	var overrides map[string]float64
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return w
	}

	apply := func(dst *float64, key string) {
		v, ok := overrides[key]
		if !ok {
			return
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		*dst = v
	}

	apply(&w.SkillGap, "skill_gap")
	apply(&w.SkillRelevance, "skill_relevance")
	apply(&w.DifficultyMatch, "difficulty_match")
	apply(&w.Collaborative, "collaborative")
	apply(&w.ResourceType, "resource_type")
	apply(&w.SkillSimilarity, "skill_similarity")
	return w
}
