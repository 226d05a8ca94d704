package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNutrientJSONDistinguishesUntrackedFromZero(t *testing.T) {
	t.Parallel()

	var got struct {
		A Nutrient `json:"a"`
		B Nutrient `json:"b"`
		C Nutrient `json:"c"`
		D Nutrient `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": null, "b": 0, "c": "12.50"}`), &got))
	assert.False(t, got.A.Tracked())
	assert.True(t, got.B.Tracked())
	assert.Equal(t, 12.5, got.C.Or(0))
	assert.False(t, got.D.Tracked())

	out, err := json.Marshal(struct {
		A Nutrient `json:"a"`
		B Nutrient `json:"b"`
	}{Untracked, Track(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": null, "b": 0}`, string(out))

	assert.Equal(t, "-", Untracked.String())
	assert.Equal(t, "7.5", Track(7.5).String())

	var bad Nutrient
	require.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
}

func TestEntryContributionCountsUntrackedAsZero(t *testing.T) {
	t.Parallel()

	e := Entry{
		Name:     "Beer",
		Calories: Track(149.6),
		CarbsG:   Track(13),
		Alcohol:  &AlcoholRef{Category: "beer", AlcoholG: 14, StandardDrinks: 1},
	}
	d := e.Contribution()
	assert.Equal(t, 150, d.Calories)
	assert.Equal(t, 13.0, d.CarbsG)
	assert.Zero(t, d.ProteinG)
	assert.Equal(t, 14.0, d.AlcoholG)
	assert.Equal(t, 1.0, d.StandardDrinks)
	assert.Equal(t, SourceAlcohol, e.Source())
}

func TestEntryValidate(t *testing.T) {
	t.Parallel()

	ok := Entry{Name: "Rice", ServingSize: 100, Calories: Track(130)}
	require.NoError(t, ok.Validate())

	cases := map[string]Entry{
		"blank name":        {Name: " "},
		"negative serving":  {Name: "x", ServingSize: -1},
		"negative protein":  {Name: "x", ProteinG: Track(-2)},
		"two sources":       {Name: "x", FoodProductID: "1", CustomFoodID: 2},
		"negative caffeine": {Name: "x", Caffeine: &CaffeineRef{CaffeineMg: -1}},
	}
	for name, e := range cases {
		assert.Error(t, e.Validate(), name)
	}
}

func TestSameEntry(t *testing.T) {
	t.Parallel()

	assert.True(t, Entry{ID: 3, LocalID: "a"}.SameEntry(Entry{ID: 3, LocalID: "b"}))
	assert.False(t, Entry{ID: 3}.SameEntry(Entry{ID: 4}))
	assert.True(t, Entry{LocalID: "a"}.SameEntry(Entry{ID: 9, LocalID: "a"}))
	assert.False(t, Entry{}.SameEntry(Entry{}))
}

func TestParseMeal(t *testing.T) {
	t.Parallel()

	m, err := ParseMeal(" Dinner ")
	require.NoError(t, err)
	assert.Equal(t, MealDinner, m)

	m, err = ParseMeal("")
	require.NoError(t, err)
	assert.Equal(t, MealSnack, m)

	_, err = ParseMeal("brunch")
	require.Error(t, err)
}

func TestPlaceholderIDs(t *testing.T) {
	t.Parallel()

	id := NewPlaceholderID()
	assert.True(t, IsPlaceholderID(id))
	assert.False(t, IsPlaceholderID("737628064502"))
	assert.NotEqual(t, id, NewPlaceholderID())
}

func TestResolvedProductName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Oats", GenericFood(FoodProduct{Name: "Oats"}, Profile{}).Name())
	assert.Equal(t, "IPA", Alcohol(AlcoholBeverage{Name: "IPA"}).Name())
	assert.Equal(t, "Latte", Caffeine(CaffeineProduct{Name: "Latte"}).Name())
	assert.Equal(t, "", ResolvedProduct{}.Name())
	assert.Equal(t, "per 100g (estimated)", Profile{Basis: BasisPer100g, Estimated: true}.BasisLabel())
}
