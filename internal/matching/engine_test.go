package matching

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"travel-match/internal/domain"
)

type fakeTraitLookup struct {
	mu      sync.Mutex
	traits  map[int64]domain.TagTrait
	err     error
	partial bool
	calls   int
	asked   [][]int64
}

func (f *fakeTraitLookup) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.TagTrait, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.asked = append(f.asked, append([]int64(nil), ids...))
	if f.err != nil && !f.partial {
		return nil, f.err
	}
	out := make(map[int64]domain.TagTrait)
	for _, id := range ids {
		if t, ok := f.traits[id]; ok {
			out[id] = t
		}
	}
	return out, f.err
}

func newFakeLookup() *fakeTraitLookup {
	return &fakeTraitLookup{traits: map[int64]domain.TagTrait{
		10: {TagID: 10, TagName: "hiking", TagWeight: 2, Traits: domain.TraitScores{Adventure: 90, RelaxationVsExploration: 80, GroupIntimacy: 40, PriceComfort: 40, Guidance: 40, FoodAndDrink: 30}},
		11: {TagID: 11, TagName: "wine tasting", TagWeight: 1, Traits: domain.TraitScores{Adventure: 20, RelaxationVsExploration: 30, GroupIntimacy: 60, PriceComfort: 70, Guidance: 70, FoodAndDrink: 95}},
	}}
}

func TestEngine_ComputeProfileDefaults(t *testing.T) {
	lookup := newFakeLookup()
	engine := NewEngine(lookup, zap.NewNop())
	ctx := context.Background()

	if got := engine.ComputeProfile(ctx, nil); !reflect.DeepEqual(got, domain.DefaultProfile()) {
		t.Fatalf("expected default profile for empty input, got %+v", got)
	}
	if got := engine.ComputeProfile(ctx, []TagInput{TagRef(999)}); !reflect.DeepEqual(got, domain.DefaultProfile()) {
		t.Fatalf("expected default profile for unresolvable tags, got %+v", got)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected lookup only for non empty refs, got %d calls", lookup.calls)
	}
}

func TestEngine_ComputeProfileLookupErrorDegrades(t *testing.T) {
	lookup := newFakeLookup()
	lookup.err = errors.New("connection refused")
	engine := NewEngine(lookup, zap.NewNop())

	got := engine.ComputeProfile(context.Background(), []TagInput{TagRef(10), TagRef(11)})
	if !reflect.DeepEqual(got, domain.DefaultProfile()) {
		t.Fatalf("expected default profile when lookup fails, got %+v", got)
	}

	annotated := AnnotatedTag{TagID: 50, TagName: "spa", Traits: domain.TraitScores{Adventure: 10, RelaxationVsExploration: 10, GroupIntimacy: 50, PriceComfort: 80, Guidance: 50, FoodAndDrink: 50}}
	got = engine.ComputeProfile(context.Background(), []TagInput{TagRef(10), annotated})
	if got.TagCount != 1 || got.ContributingTags[0].TagName != "spa" {
		t.Fatalf("expected annotated tag to survive lookup failure, got %+v", got)
	}
}

func TestEngine_ComputeProfileMixedInput(t *testing.T) {
	lookup := newFakeLookup()
	engine := NewEngine(lookup, nil)

	w := 1.0
	tags := []TagInput{
		TagRef(10),
		&AnnotatedTag{TagID: 11, TagName: "wine tasting", Traits: lookup.traits[11].Traits, Weight: &w},
		TagRef(10),
		TagRef(404),
	}
	got := engine.ComputeProfile(context.Background(), tags)
	if got.TagCount != 2 {
		t.Fatalf("expected 2 resolved tags, got %d", got.TagCount)
	}
	// (90*2 + 20*1) / 3 = 66.67
	if got.Traits.Adventure != 67 {
		t.Fatalf("expected adventure 67, got %d", got.Traits.Adventure)
	}
	if got.Confidence != domain.ConfidenceMedium {
		t.Fatalf("expected medium confidence, got %s", got.Confidence)
	}
	if !reflect.DeepEqual(lookup.asked, [][]int64{{10, 404}}) {
		t.Fatalf("expected deduplicated lookup ids, got %v", lookup.asked)
	}
}

func TestEngine_NilLookupIgnoresRefs(t *testing.T) {
	engine := NewEngine(nil, zap.NewNop())
	got := engine.ComputeProfile(context.Background(), []TagInput{TagRef(10)})
	if !reflect.DeepEqual(got, domain.DefaultProfile()) {
		t.Fatalf("expected default profile without lookup, got %+v", got)
	}
}

func TestEngine_MatchBatchKeepsOrderWithSingleLookup(t *testing.T) {
	lookup := newFakeLookup()
	engine := NewEngine(lookup, zap.NewNop())
	prefs := domain.NeutralPreferences()

	inputs := []MatchInput{
		{ItemID: "a", Tags: []TagInput{TagRef(10)}, Attributes: domain.ItemAttributes{Title: "Canyon hike"}},
		{ItemID: "b", Tags: nil},
		{ItemID: "c", Tags: []TagInput{TagRef(11), TagRef(10)}, Attributes: domain.ItemAttributes{Flags: []string{domain.FlagFreeCancellation}}},
		{ItemID: "d", Tags: []TagInput{TagRef(11)}},
	}
	results, err := engine.MatchBatch(context.Background(), inputs, prefs, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	for i, in := range inputs {
		if results[i].ItemID != in.ItemID {
			t.Fatalf("result %d: expected item %s, got %s", i, in.ItemID, results[i].ItemID)
		}
		single := engine.Match(context.Background(), in, prefs)
		if !reflect.DeepEqual(results[i], single) {
			t.Fatalf("batch result for %s differs from single match", in.ItemID)
		}
	}
	if !results[1].Breakdown.Fallback {
		t.Fatalf("expected item without tags to use fallback")
	}
	if lookup.asked[0] == nil || len(lookup.asked[0]) != 2 {
		t.Fatalf("expected first lookup to batch both ids, got %v", lookup.asked[0])
	}
}

func TestEngine_MatchBatchCancelledContext(t *testing.T) {
	engine := NewEngine(newFakeLookup(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.MatchBatch(ctx, []MatchInput{{ItemID: "a"}}, domain.NeutralPreferences(), 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestEngine_PartialLookupKeepsResolvedTags(t *testing.T) {
	lookup := newFakeLookup()
	delete(lookup.traits, 11)
	lookup.err = errors.New("db down")
	lookup.partial = true
	engine := NewEngine(lookup, zap.NewNop())

	got := engine.ComputeProfile(context.Background(), []TagInput{TagRef(10), TagRef(11)})
	if got.TagCount != 1 {
		t.Fatalf("expected one contributing tag, got %d", got.TagCount)
	}
	if got.Traits.Adventure != 90 || got.Traits.FoodAndDrink != 30 {
		t.Fatalf("expected hiking traits, got %+v", got.Traits)
	}
}
