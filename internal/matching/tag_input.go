package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"travel-match/internal/domain"
)

// defaultTagWeight se usa cuando un tag anotado no trae peso.
const defaultTagWeight = 1.0

// TagInput es un tag sin resolver (TagRef) o un tag ya anotado (AnnotatedTag).
type TagInput interface {
	isTagInput()
}

// TagRef es un id que hay que resolver contra el store de rasgos.
type TagRef int64

func (TagRef) isTagInput() {}

// AnnotatedTag trae los seis rasgos y el peso directamente.
type AnnotatedTag struct {
	TagID   int64
	TagName string
	Traits  domain.TraitScores
	Weight  *float64
}

func (AnnotatedTag) isTagInput() {}

// Trait normaliza el tag anotado a la forma del store.
func (a AnnotatedTag) Trait() domain.TagTrait {
	weight := defaultTagWeight
	if a.Weight != nil {
		weight = *a.Weight
	}
	return domain.TagTrait{
		TagID:     a.TagID,
		TagName:   a.TagName,
		Traits:    a.Traits,
		TagWeight: weight,
	}
}

// TagInputs decodifica una lista JSON donde cada elemento es un id o un objeto anotado.
type TagInputs []TagInput

func (t *TagInputs) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return invalid("tags", "must be a list")
	}
	out := make(TagInputs, 0, len(raw))
	for i, item := range raw {
		in, err := decodeTagInput(item)
		if err != nil {
			return invalid(fmt.Sprintf("tags[%d]", i), "%s", err.Error())
		}
		out = append(out, in)
	}
	*t = out
	return nil
}

type annotatedTagJSON struct {
	TagID                   *int64   `json:"tag_id"`
	TagName                 string   `json:"tag_name"`
	Adventure               *float64 `json:"adventure"`
	RelaxationVsExploration *float64 `json:"relaxation_vs_exploration"`
	GroupIntimacy           *float64 `json:"group_intimacy"`
	PriceComfort            *float64 `json:"price_comfort"`
	Guidance                *float64 `json:"guidance"`
	FoodAndDrink            *float64 `json:"food_and_drink"`
	TagWeight               *float64 `json:"tag_weight"`
}

func decodeTagInput(raw json.RawMessage) (TagInput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty tag")
	}
	switch trimmed[0] {
	case 'n':
		return nil, fmt.Errorf("tag must not be null")
	case '{':
		var a annotatedTagJSON
		if err := json.Unmarshal(trimmed, &a); err != nil {
			return nil, fmt.Errorf("malformed annotated tag")
		}
		if a.TagID == nil {
			return nil, fmt.Errorf("annotated tag requires tag_id")
		}
		if a.TagWeight != nil && (math.IsNaN(*a.TagWeight) || math.IsInf(*a.TagWeight, 0)) {
			return nil, fmt.Errorf("tag_weight must be finite")
		}
		return AnnotatedTag{
			TagID:   *a.TagID,
			TagName: a.TagName,
			Traits: domain.TraitScores{
				Adventure:               traitOrNeutral(a.Adventure),
				RelaxationVsExploration: traitOrNeutral(a.RelaxationVsExploration),
				GroupIntimacy:           traitOrNeutral(a.GroupIntimacy),
				PriceComfort:            traitOrNeutral(a.PriceComfort),
				Guidance:                traitOrNeutral(a.Guidance),
				FoodAndDrink:            traitOrNeutral(a.FoodAndDrink),
			},
			Weight: a.TagWeight,
		}, nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("malformed tag id")
		}
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tag id %q is not numeric", s)
		}
		return TagRef(id), nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return nil, fmt.Errorf("tag must be an id or an annotated object")
		}
		id, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("tag id %s is not an integer", n.String())
		}
		return TagRef(id), nil
	}
}

func traitOrNeutral(v *float64) int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 50
	}
	return domain.ScoreFromFloat(*v)
}
