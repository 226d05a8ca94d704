package resolve

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/kcal-sync/internal/backend"
	"github.com/saadjs/kcal-sync/internal/catalog"
	"github.com/saadjs/kcal-sync/internal/model"
)

type fakeFoods struct {
	mu    sync.Mutex
	foods map[string]model.FoodProduct
	err   error
	calls []string
	// cancel, when set, runs during the lookup to simulate a superseded call.
	cancel context.CancelFunc
}

func (f *fakeFoods) LookupFood(ctx context.Context, id string) (model.FoodProduct, model.Profile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
	}
	if f.err != nil {
		return model.FoodProduct{}, model.Profile{}, f.err
	}
	food, ok := f.foods[id]
	if !ok {
		return model.FoodProduct{}, model.Profile{}, backend.ErrNotFound
	}
	return food, model.Profile{Basis: model.BasisPer100g, Calories: 250}, nil
}

type fakeCustomFoods struct {
	food backend.CustomFood
	err  error
}

func (f fakeCustomFoods) GetCustomFood(ctx context.Context, id int64) (backend.CustomFood, error) {
	if f.err != nil {
		return backend.CustomFood{}, f.err
	}
	out := f.food
	out.ID = id
	return out, nil
}

type fakeProducts struct {
	alcohol  map[int64]model.AlcoholBeverage
	caffeine map[int64]model.CaffeineProduct
	calls    int
}

func (f *fakeProducts) GetAlcoholBeverage(ctx context.Context, id int64) (model.AlcoholBeverage, error) {
	f.calls++
	b, ok := f.alcohol[id]
	if !ok {
		return model.AlcoholBeverage{}, backend.ErrNotFound
	}
	return b, nil
}

func (f *fakeProducts) GetCaffeineProduct(ctx context.Context, id int64) (model.CaffeineProduct, error) {
	f.calls++
	p, ok := f.caffeine[id]
	if !ok {
		return model.CaffeineProduct{}, backend.ErrNotFound
	}
	return p, nil
}

type fakeRecents struct {
	items []model.RecentProduct
}

func (f *fakeRecents) Remember(ctx context.Context, p model.RecentProduct) error {
	f.items = append(f.items, p)
	return nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
}

func TestResolveEntryFetchesFoodAndRemembersIt(t *testing.T) {
	t.Parallel()

	foods := &fakeFoods{foods: map[string]model.FoodProduct{
		"3017620422003": {ID: "3017620422003", Name: "Hazelnut Spread", Brand: "Nut Co"},
	}}
	recents := &fakeRecents{}
	r := &Resolver{Foods: foods, Recents: recents, Logger: quietLogger(), Now: fixedNow}

	got := r.ResolveEntry(context.Background(), model.Entry{Name: "spread", FoodProductID: "3017620422003", CustomFoodID: 9})
	assert.Equal(t, model.KindGenericFood, got.Kind)
	require.NotNil(t, got.Food)
	assert.Equal(t, "Hazelnut Spread", got.Food.Name)
	assert.Equal(t, 250.0, got.Profile.Calories)
	assert.False(t, got.Profile.Estimated)

	require.Len(t, recents.items, 1)
	assert.Equal(t, "3017620422003", recents.items[0].ProductID)
	assert.Equal(t, fixedNow(), recents.items[0].SelectedAt)
}

func TestResolveEntrySkipsPlaceholderIDs(t *testing.T) {
	t.Parallel()

	foods := &fakeFoods{}
	r := &Resolver{Foods: foods, Logger: quietLogger()}
	placeholder := model.NewPlaceholderID()

	got := r.ResolveEntry(context.Background(), model.Entry{
		Name:          "Homemade",
		FoodProductID: placeholder,
		ServingSize:   100,
		ServingUnit:   "g",
		Calories:      model.Track(80),
	})
	assert.Empty(t, foods.calls)
	assert.True(t, got.Profile.Estimated)
	assert.Equal(t, placeholder, got.Food.ID)
}

func TestResolveEntryFallsBackToCustomFood(t *testing.T) {
	t.Parallel()

	r := &Resolver{
		Foods: &fakeFoods{err: errors.New("backend down")},
		CustomFoods: fakeCustomFoods{food: backend.CustomFood{
			Name: "Grandma Soup", ServingSize: 300, ServingUnit: "g", Calories: 210, ProteinG: 14,
		}},
		Logger: quietLogger(),
	}

	got := r.ResolveEntry(context.Background(), model.Entry{Name: "soup", FoodProductID: "123", CustomFoodID: 5})
	assert.Equal(t, model.KindGenericFood, got.Kind)
	require.NotNil(t, got.Food)
	assert.Equal(t, int64(5), got.Food.CustomFoodID)
	assert.Equal(t, model.BasisPerServing, got.Profile.Basis)
	assert.Equal(t, 210.0, got.Profile.Calories)
	assert.Zero(t, got.Profile.FiberG)
	assert.Zero(t, got.Profile.FolateUg)
}

func TestResolveEntrySynthesizesPer100g(t *testing.T) {
	t.Parallel()

	r := &Resolver{
		Foods:       &fakeFoods{err: errors.New("timeout")},
		CustomFoods: fakeCustomFoods{err: errors.New("timeout")},
		Logger:      quietLogger(),
	}
	got := r.ResolveEntry(context.Background(), model.Entry{
		Name:        "Trail mix",
		ServingSize: 50,
		ServingUnit: "g",
		Calories:    model.Track(100),
		ProteinG:    model.Track(4),
		FiberG:      model.Untracked,
	})
	assert.Equal(t, model.KindGenericFood, got.Kind)
	assert.Equal(t, model.BasisPer100g, got.Profile.Basis)
	assert.True(t, got.Profile.Estimated)
	assert.Equal(t, "per 100g (estimated)", got.Profile.BasisLabel())
	assert.InDelta(t, 200, got.Profile.Calories, 1e-9)
	assert.InDelta(t, 8, got.Profile.ProteinG, 1e-9)
	assert.Zero(t, got.Profile.FiberG)
	assert.True(t, model.IsPlaceholderID(got.Food.ID))
}

func TestSynthesizeDoesNotScaleNonGramUnits(t *testing.T) {
	t.Parallel()

	got := Synthesize(model.Entry{Name: "Soda", ServingSize: 355, ServingUnit: "ml", Calories: model.Track(140)})
	assert.Equal(t, 140.0, got.Profile.Calories)

	got = Synthesize(model.Entry{Name: "Rice", ServingSize: 0, ServingUnit: "grams", Calories: model.Track(130)})
	assert.Equal(t, 130.0, got.Profile.Calories)
}

func TestResolveEntryWithNoDependenciesNeverFails(t *testing.T) {
	t.Parallel()

	r := &Resolver{Logger: quietLogger()}
	got := r.ResolveEntry(context.Background(), model.Entry{Name: "Mystery", FoodProductID: "42", CustomFoodID: 3})
	assert.Equal(t, model.KindGenericFood, got.Kind)
	assert.True(t, got.Profile.Estimated)
	assert.Equal(t, "42", got.Food.ID)
}

func TestResolveEntryAlcoholPrefersCatalog(t *testing.T) {
	t.Parallel()

	cache := catalog.New()
	cache.UpdateAlcoholProducts([]model.AlcoholBeverage{{ID: 7, Name: "Pilsner", Profile: model.Profile{AlcoholG: 19.7}}})
	products := &fakeProducts{}
	r := &Resolver{Catalog: cache, Products: products, Logger: quietLogger()}

	got := r.ResolveEntry(context.Background(), model.Entry{
		Name:    "pils",
		Alcohol: &model.AlcoholRef{Category: "beer", BeverageID: 7, AlcoholG: 19.7},
	})
	assert.Equal(t, model.KindAlcoholBeverage, got.Kind)
	assert.Equal(t, "Pilsner", got.Name())
	assert.Equal(t, 0, products.calls)
}

func TestResolveEntryAlcoholWithoutIDUsesEntryAmounts(t *testing.T) {
	t.Parallel()

	r := &Resolver{Products: &fakeProducts{}, Logger: quietLogger()}
	got := r.ResolveEntry(context.Background(), model.Entry{
		Name:        "House red",
		ServingSize: 150,
		ServingUnit: "ml",
		Calories:    model.Track(125),
		Alcohol:     &model.AlcoholRef{Category: "wine", AlcoholG: 14},
	})
	require.Equal(t, model.KindAlcoholBeverage, got.Kind)
	require.NotNil(t, got.Alcohol)
	assert.Equal(t, "wine", got.Alcohol.Category)
	assert.Equal(t, 150.0, got.Alcohol.VolumeMl)
	assert.InDelta(t, 1.0, got.Profile.StandardDrinks, 1e-9)
}

func TestResolveEntryCaffeineFetchesByID(t *testing.T) {
	t.Parallel()

	products := &fakeProducts{caffeine: map[int64]model.CaffeineProduct{
		3: {ID: 3, Name: "Cold Brew", Profile: model.Profile{CaffeineMg: 155}},
	}}
	r := &Resolver{Catalog: catalog.New(), Products: products, Logger: quietLogger()}
	got := r.ResolveEntry(context.Background(), model.Entry{
		Name:     "coffee",
		Caffeine: &model.CaffeineRef{Category: "coffee", ProductID: 3, CaffeineMg: 155},
	})
	assert.Equal(t, model.KindCaffeineProduct, got.Kind)
	assert.Equal(t, "Cold Brew", got.Name())
	assert.Equal(t, 1, products.calls)
}

func TestResolveEntryCancelledDuringLookupDoesNotRecord(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	foods := &fakeFoods{
		foods:  map[string]model.FoodProduct{"1": {ID: "1", Name: "Apple"}},
		cancel: cancel,
	}
	recents := &fakeRecents{}
	r := &Resolver{Foods: foods, Recents: recents, Logger: quietLogger()}

	got := r.ResolveEntry(ctx, model.Entry{Name: "apple", FoodProductID: "1"})
	assert.Equal(t, "Apple", got.Name())
	assert.Empty(t, recents.items)
}

func TestResolveEntryCancelledBeforeStartSynthesizes(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	foods := &fakeFoods{foods: map[string]model.FoodProduct{"1": {ID: "1", Name: "Apple"}}}
	r := &Resolver{Foods: foods, Logger: quietLogger()}

	got := r.ResolveEntry(ctx, model.Entry{Name: "apple", FoodProductID: "1"})
	assert.Empty(t, foods.calls)
	assert.True(t, got.Profile.Estimated)
}

func TestResolveSearchResultExplicitLink(t *testing.T) {
	t.Parallel()

	products := &fakeProducts{alcohol: map[int64]model.AlcoholBeverage{11: {ID: 11, Name: "Merlot"}}}
	r := &Resolver{Catalog: catalog.New(), Products: products, Logger: quietLogger()}

	got, ok := r.ResolveSearchResult(context.Background(), SearchResult{Name: "whatever", AlcoholBeverageID: 11})
	require.True(t, ok)
	assert.Equal(t, model.KindAlcoholBeverage, got.Kind)
	assert.Equal(t, "Merlot", got.Name())
}

func TestResolveSearchResultMatchesCatalog(t *testing.T) {
	t.Parallel()

	cache := catalog.New()
	cache.UpdateAlcoholProducts([]model.AlcoholBeverage{{ID: 1, Name: "Guinness Draught Stout", Brand: "Guinness"}})
	cache.UpdateCaffeineProducts([]model.CaffeineProduct{{ID: 2, Name: "Red Bull Energy Drink", Brand: "Red Bull"}})
	r := &Resolver{Catalog: cache, Logger: quietLogger()}

	got, ok := r.ResolveSearchResult(context.Background(), SearchResult{Name: "Red Bull Energy Drink 250ml", Brand: "Red Bull"})
	require.True(t, ok)
	assert.Equal(t, model.KindCaffeineProduct, got.Kind)
	assert.Nil(t, got.Alcohol)

	_, ok = r.ResolveSearchResult(context.Background(), SearchResult{Name: "Greek Yogurt", Brand: "Fage"})
	assert.False(t, ok)
}

func TestResolveSearchResultWithoutCatalog(t *testing.T) {
	t.Parallel()

	r := &Resolver{Logger: quietLogger()}
	_, ok := r.ResolveSearchResult(context.Background(), SearchResult{Name: "Guinness"})
	assert.False(t, ok)
}
