package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"travel-match/internal/domain"
	"travel-match/internal/matching"
	"travel-match/internal/service"
)

type mockTraitLookup map[int64]domain.TagTrait

func (m mockTraitLookup) FindByIDs(_ context.Context, ids []int64) (map[int64]domain.TagTrait, error) {
	out := make(map[int64]domain.TagTrait)
	for _, id := range ids {
		if t, ok := m[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

type mockTravelerMatcher struct {
	results      []domain.MatchResult
	profile      domain.ItemProfile
	err          error
	lastTraveler string
	lastIDs      []uuid.UUID
	lastLimit    int
	lastPrefs    domain.TravelerPreferences
}

func (m *mockTravelerMatcher) ScoreForTraveler(_ context.Context, travelerID string, itemIDs []uuid.UUID) ([]domain.MatchResult, error) {
	m.lastTraveler = travelerID
	m.lastIDs = itemIDs
	return m.results, m.err
}

func (m *mockTravelerMatcher) Recommend(_ context.Context, travelerID string, limit int) ([]domain.MatchResult, error) {
	m.lastTraveler = travelerID
	m.lastLimit = limit
	return m.results, m.err
}

func (m *mockTravelerMatcher) RefreshItemProfile(_ context.Context, itemID uuid.UUID) (domain.ItemProfile, error) {
	m.lastIDs = []uuid.UUID{itemID}
	return m.profile, m.err
}

func (m *mockTravelerMatcher) ItemProfile(_ context.Context, itemID uuid.UUID) (domain.ItemProfile, error) {
	m.lastIDs = []uuid.UUID{itemID}
	return m.profile, m.err
}

func (m *mockTravelerMatcher) SavePreferences(_ context.Context, travelerID string, prefs domain.TravelerPreferences) (domain.PreferenceVector, error) {
	m.lastTraveler = travelerID
	m.lastPrefs = prefs
	if m.err != nil {
		return domain.PreferenceVector{}, m.err
	}
	return matching.PreferencesFromStored(prefs), nil
}

type mockTagTraitManager struct {
	traits []domain.TagTrait
	saved  []domain.TagTrait
	err    error
}

func (m *mockTagTraitManager) List(_ context.Context) ([]domain.TagTrait, error) {
	return m.traits, m.err
}

func (m *mockTagTraitManager) Save(_ context.Context, trait domain.TagTrait) (domain.TagTrait, error) {
	if m.err != nil {
		return domain.TagTrait{}, m.err
	}
	m.saved = append(m.saved, trait)
	return trait, nil
}

type mockInvalidator struct {
	invalidated []int64
	flushed     bool
	err         error
}

func (m *mockInvalidator) Invalidate(_ context.Context, ids ...int64) error {
	m.invalidated = append(m.invalidated, ids...)
	return m.err
}

func (m *mockInvalidator) Flush(_ context.Context) error {
	m.flushed = true
	return m.err
}

type routerFixture struct {
	router  *gin.Engine
	matcher *mockTravelerMatcher
	inval   *mockInvalidator
	traits  *mockTagTraitManager
	token   string
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	lookup := mockTraitLookup{
		1: {TagID: 1, TagName: "hiking", TagWeight: 2, Traits: domain.TraitScores{Adventure: 95, RelaxationVsExploration: 85, GroupIntimacy: 50, PriceComfort: 40, Guidance: 50, FoodAndDrink: 30}},
	}
	engine := matching.NewEngine(lookup, zap.NewNop())
	matcher := &mockTravelerMatcher{}
	inval := &mockInvalidator{}
	tokens := service.NewTokenVerifier("secret", 15*time.Minute)
	token, err := tokens.Issue("trav-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	h := NewMatchHandler(zap.NewNop(), engine, matcher, inval, 2)
	traits := &mockTagTraitManager{}
	return routerFixture{
		router:  NewRouter(zap.NewNop(), h, NewTagTraitHandler(zap.NewNop(), traits), tokens),
		matcher: matcher,
		inval:   inval,
		traits:  traits,
		token:   token,
	}
}

func (f routerFixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rec.Body.String())
	}
	return out
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestComputeProfileEndpoint(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(http.MethodPost, "/match/profile", `{"tags":[1, {"tag_id": 2, "tag_name": "street food", "food_and_drink": 95, "weight": 2}]}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	resp := decodeBody[struct {
		Profile domain.CharacteristicProfile `json:"profile"`
	}](t, rec)
	if resp.Profile.TagCount != 2 || resp.Profile.Confidence != domain.ConfidenceMedium {
		t.Fatalf("unexpected profile %+v", resp.Profile)
	}
	// (95*2 + 50*2) / 4 = 72.5 -> 73
	if resp.Profile.Traits.Adventure != 73 {
		t.Fatalf("expected adventure 73, got %d", resp.Profile.Traits.Adventure)
	}
}

func TestScoreEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	t.Run("neutral baseline without tags", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/match/score", `{"item":{"title":"City walk"},"preferences":{}}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		resp := decodeBody[struct {
			Result domain.MatchResult `json:"result"`
		}](t, rec)
		if resp.Result.Score != 50 || !resp.Result.Breakdown.Fallback {
			t.Fatalf("expected fallback score 50, got %+v", resp.Result)
		}
	})

	t.Run("weighted aggregate", func(t *testing.T) {
		body := `{
			"item": {"id": "walk-1", "flags": ["FREE_CANCELLATION"], "price": "$75.00"},
			"tags": [{"tag_id": 9, "tag_name": "walking"}],
			"preferences": {"adventureLevel": null}
		}`
		rec := f.do(http.MethodPost, "/match/score", body, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		resp := decodeBody[struct {
			Result domain.MatchResult `json:"result"`
		}](t, rec)
		if resp.Result.Score != 63 || resp.Result.ItemID != "walk-1" {
			t.Fatalf("expected score 63 for walk-1, got %+v", resp.Result)
		}
		if len(resp.Result.Explanations) != 3 || resp.Result.Explanations[2] != "Free cancellation" {
			t.Fatalf("unexpected explanations %v", resp.Result.Explanations)
		}
	})

	t.Run("invalid tag shape", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/match/score", `{"item":{},"tags":[true]}`, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "tags[0]") {
			t.Fatalf("expected tag index in error, got %s", rec.Body.String())
		}
	})

	t.Run("non numeric preference", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/match/score", `{"item":{},"preferences":{"budgetComfort":true}}`, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "budgetComfort") {
			t.Fatalf("expected field name in error, got %s", rec.Body.String())
		}
	})

	t.Run("dto validation", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/match/score", `{"item":{"rating":7,"itinerary_type":"CRUISE"}}`, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		resp := decodeBody[struct {
			Details []string `json:"details"`
		}](t, rec)
		want := []string{
			"item.rating must be less than or equal to 5",
			"item.itinerary_type must be one of: ACTIVITY TOUR activity tour",
		}
		if len(resp.Details) != len(want) {
			t.Fatalf("expected %d details, got %v", len(want), resp.Details)
		}
		for _, w := range want {
			found := false
			for _, d := range resp.Details {
				if d == w {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected detail %q in %v", w, resp.Details)
			}
		}
	})
}

func TestScoreBatchEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	body := `{
		"items": [
			{"id": "spa", "title": "Thermal baths", "tags": [{"tag_id": 2, "adventure": 5, "relaxation_vs_exploration": 10}]},
			{"id": "hike", "title": "Ridge walk", "tags": [1]}
		],
		"preferences": {"adventureLevel": 90, "cultureVsBeach": "85"}
	}`
	rec := f.do(http.MethodPost, "/match/batch", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	resp := decodeBody[struct {
		Results []domain.MatchResult `json:"results"`
	}](t, rec)
	if len(resp.Results) != 2 || resp.Results[0].ItemID != "hike" {
		t.Fatalf("expected hike ranked first, got %+v", resp.Results)
	}

	rec = f.do(http.MethodPost, "/match/batch", `{"items":[]}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty batch, got %d", rec.Code)
	}
}

func TestTravelerEndpoints(t *testing.T) {
	f := newRouterFixture(t)
	itemID := uuid.New()

	if rec := f.do(http.MethodGet, "/travelers/me/matches?item_id="+itemID.String(), "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	f.matcher.results = []domain.MatchResult{{ItemID: itemID.String(), Score: 81}}
	rec := f.do(http.MethodGet, "/travelers/me/matches?item_id="+itemID.String(), "", f.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if f.matcher.lastTraveler != "trav-1" || len(f.matcher.lastIDs) != 1 || f.matcher.lastIDs[0] != itemID {
		t.Fatalf("unexpected matcher call traveler=%s ids=%v", f.matcher.lastTraveler, f.matcher.lastIDs)
	}

	if rec := f.do(http.MethodGet, "/travelers/me/matches?item_id=nope", "", f.token); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad uuid, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/travelers/me/matches", "", f.token); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without item_id, got %d", rec.Code)
	}

	f.matcher.err = service.ErrItemsNotFound
	if rec := f.do(http.MethodGet, "/travelers/me/matches?item_id="+itemID.String(), "", f.token); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	f.matcher.err = nil

	if rec := f.do(http.MethodGet, "/travelers/me/recommendations?limit=0", "", f.token); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit 0, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/travelers/me/recommendations?limit=5", "", f.token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.matcher.lastLimit != 5 {
		t.Fatalf("expected limit 5 forwarded, got %d", f.matcher.lastLimit)
	}

	f.matcher.err = errors.New("db down")
	if rec := f.do(http.MethodGet, "/travelers/me/recommendations", "", f.token); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRefreshItemProfileEndpoint(t *testing.T) {
	f := newRouterFixture(t)
	itemID := uuid.New()

	if rec := f.do(http.MethodPost, "/items/not-a-uuid/profile/refresh", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	f.matcher.profile = domain.ItemProfile{ItemID: itemID, TagCount: 3, Confidence: domain.ConfidenceMedium}
	rec := f.do(http.MethodPost, "/items/"+itemID.String()+"/profile/refresh", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[struct {
		Profile domain.ItemProfile `json:"profile"`
	}](t, rec)
	if resp.Profile.ItemID != itemID || resp.Profile.TagCount != 3 {
		t.Fatalf("unexpected profile %+v", resp.Profile)
	}

	f.matcher.err = pgx.ErrNoRows
	if rec := f.do(http.MethodPost, "/items/"+itemID.String()+"/profile/refresh", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestInvalidateTraitsEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	if rec := f.do(http.MethodPost, "/tag-traits/invalidate", `{}`, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty request, got %d", rec.Code)
	}

	if rec := f.do(http.MethodPost, "/tag-traits/invalidate", `{"tag_ids":[4,5]}`, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(f.inval.invalidated) != 2 || f.inval.flushed {
		t.Fatalf("expected targeted invalidation, got %+v", f.inval)
	}

	if rec := f.do(http.MethodPost, "/tag-traits/invalidate", `{"all":true}`, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !f.inval.flushed {
		t.Fatalf("expected flush")
	}

	f.inval.err = errors.New("redis down")
	if rec := f.do(http.MethodPost, "/tag-traits/invalidate", `{"all":true}`, ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestSavePreferencesEndpoint(t *testing.T) {
	t.Run("stores answers for the token traveler", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(http.MethodPut, "/travelers/me/preferences", `{"adventureLevel": 80, "groupPreference": 20}`, f.token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if f.matcher.lastTraveler != "trav-1" {
			t.Fatalf("expected traveler from token, got %q", f.matcher.lastTraveler)
		}
		if f.matcher.lastPrefs.AdventureLevel == nil || *f.matcher.lastPrefs.AdventureLevel != 80 || f.matcher.lastPrefs.BudgetComfort != nil {
			t.Fatalf("unexpected stored preferences %+v", f.matcher.lastPrefs)
		}
		resp := decodeBody[struct {
			Preferences domain.PreferenceVector `json:"preferences"`
		}](t, rec)
		if resp.Preferences.Traits.Adventure != 80 || resp.Preferences.Traits.GroupIntimacy != 20 || resp.Preferences.Traits.Guidance != 50 {
			t.Fatalf("unexpected vector %+v", resp.Preferences.Traits)
		}
	})

	t.Run("rejects out of range answers", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(http.MethodPut, "/travelers/me/preferences", `{"adventureLevel": 150}`, f.token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if f.matcher.lastTraveler != "" {
			t.Fatalf("expected service not called")
		}
	})

	t.Run("requires token", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(http.MethodPut, "/travelers/me/preferences", `{"adventureLevel": 10}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestItemProfileEndpoint(t *testing.T) {
	f := newRouterFixture(t)
	id := uuid.New()
	f.matcher.profile = domain.ItemProfile{ItemID: id, Confidence: domain.ConfidenceMedium, TagCount: 3}

	rec := f.do(http.MethodGet, "/items/"+id.String()+"/profile", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(f.matcher.lastIDs) != 1 || f.matcher.lastIDs[0] != id {
		t.Fatalf("expected lookup for %s, got %v", id, f.matcher.lastIDs)
	}

	f.matcher.err = pgx.ErrNoRows
	if rec := f.do(http.MethodGet, "/items/"+id.String()+"/profile", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/items/not-a-uuid/profile", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTagTraitEndpoints(t *testing.T) {
	t.Run("save fills neutral axes and default weight", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(http.MethodPut, "/tag-traits/42", `{"tag_name": "rafting", "adventure": 95}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if len(f.traits.saved) != 1 {
			t.Fatalf("expected one save, got %d", len(f.traits.saved))
		}
		got := f.traits.saved[0]
		if got.TagID != 42 || got.TagWeight != 1 || got.Traits.Adventure != 95 || got.Traits.Guidance != 50 {
			t.Fatalf("unexpected saved trait %+v", got)
		}
	})

	t.Run("save validates input", func(t *testing.T) {
		f := newRouterFixture(t)
		cases := []struct {
			path string
			body string
		}{
			{path: "/tag-traits/0", body: `{"tag_name": "spa"}`},
			{path: "/tag-traits/abc", body: `{"tag_name": "spa"}`},
			{path: "/tag-traits/3", body: `{"adventure": 10}`},
			{path: "/tag-traits/3", body: `{"tag_name": "spa", "guidance": 101}`},
		}
		for _, tc := range cases {
			if rec := f.do(http.MethodPut, tc.path, tc.body, ""); rec.Code != http.StatusBadRequest {
				t.Fatalf("%s %s: expected 400, got %d", tc.path, tc.body, rec.Code)
			}
		}
		if len(f.traits.saved) != 0 {
			t.Fatalf("expected nothing saved")
		}
	})

	t.Run("service rejection maps to 400", func(t *testing.T) {
		f := newRouterFixture(t)
		f.traits.err = service.ErrTagTraitInvalid
		if rec := f.do(http.MethodPut, "/tag-traits/3", `{"tag_name": "spa"}`, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		f := newRouterFixture(t)
		f.traits.traits = []domain.TagTrait{{TagID: 1, TagName: "hiking", TagWeight: 2}}
		rec := f.do(http.MethodGet, "/tag-traits", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeBody[struct {
			TagTraits []domain.TagTrait `json:"tag_traits"`
		}](t, rec)
		if len(resp.TagTraits) != 1 || resp.TagTraits[0].TagName != "hiking" {
			t.Fatalf("unexpected list %+v", resp.TagTraits)
		}
	})
}
