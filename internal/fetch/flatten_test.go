package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	doc := map[string]interface{}{
		"rank": float64(1),
		"team": map[string]interface{}{
			"id":   float64(42),
			"name": "Arsenal",
		},
		"all": map[string]interface{}{
			"played": float64(38),
			"goals": map[string]interface{}{
				"for":     float64(91),
				"against": float64(29),
			},
		},
		"form": "WWDWW",
	}

	flat := Flatten(doc)

	assert.Equal(t, float64(1), flat["rank"])
	assert.Equal(t, float64(42), flat["team.id"])
	assert.Equal(t, "Arsenal", flat["team.name"])
	assert.Equal(t, float64(38), flat["all.played"])
	assert.Equal(t, float64(91), flat["all.goals.for"])
	assert.Equal(t, float64(29), flat["all.goals.against"])
	assert.Equal(t, "WWDWW", flat["form"])

	// No nested maps survive flattening.
	for _, v := range flat {
		_, isMap := v.(map[string]interface{})
		assert.False(t, isMap)
	}
}

func TestFlattenKeepsNullsAndArrays(t *testing.T) {
	doc := map[string]interface{}{
		"group": nil,
		"team": map[string]interface{}{
			"tags": []interface{}{"london", "prem"},
		},
	}

	flat := Flatten(doc)
	assert.Contains(t, flat, "group")
	assert.Nil(t, flat["group"])
	assert.Equal(t, []interface{}{"london", "prem"}, flat["team.tags"])
}

func TestFlattenEmpty(t *testing.T) {
	assert.Empty(t, Flatten(map[string]interface{}{}))
}
