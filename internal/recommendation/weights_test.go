package recommendation_test

import (
	"testing"

	"github.com/elevohq/elevo-backend/internal/recommendation"
)

func TestWeightsFromJSON(t *testing.T) {
	t.Run("NilDocumentYieldsDefaults", func(t *testing.T) {
		w := recommendation.WeightsFromJSON(nil)
		if w != recommendation.DefaultWeights() {
			t.Errorf("expected defaults, got %+v", w)
		}
	})

	t.Run("MalformedDocumentYieldsDefaults", func(t *testing.T) {
		w := recommendation.WeightsFromJSON([]byte(`{not json`))
		if w != recommendation.DefaultWeights() {
			t.Errorf("expected defaults, got %+v", w)
		}
	})

	t.Run("RecognizedKeysOverride", func(t *testing.T) {
		w := recommendation.WeightsFromJSON([]byte(`{"skill_gap": 0.9, "collaborative": 0.1, "bogus": 0.5}`))
		if w.SkillGap != 0.9 {
			t.Errorf("skill_gap override lost: %v", w.SkillGap)
		}
		if w.Collaborative != 0.1 {
			t.Errorf("collaborative override lost: %v", w.Collaborative)
		}
		if w.SkillRelevance != recommendation.DefaultWeights().SkillRelevance {
			t.Error("untouched keys should keep defaults")
		}
	})

	t.Run("ValuesClampedToUnitInterval", func(t *testing.T) {
		w := recommendation.WeightsFromJSON([]byte(`{"skill_gap": 7.5, "resource_type": -3}`))
		if w.SkillGap != 1 {
			t.Errorf("expected clamp to 1, got %v", w.SkillGap)
		}
		if w.ResourceType != 0 {
			t.Errorf("expected clamp to 0, got %v", w.ResourceType)
		}
	})
}
