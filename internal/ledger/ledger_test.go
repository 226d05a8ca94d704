package ledger_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/kcal-sync/internal/ledger"
	"github.com/saadjs/kcal-sync/internal/model"
)

func TestApplyAdditionAccumulatesOnlyProvidedFields(t *testing.T) {
	t.Parallel()

	l := ledger.New("2026-02-20")
	l.ApplyAddition(model.Delta{Calories: 300, ProteinG: 20})
	l.ApplyAddition(model.Delta{Calories: 150, AlcoholG: 14, StandardDrinks: 1})

	want := model.DailySummary{
		Date:           "2026-02-20",
		CaloriesEaten:  450,
		ProteinG:       20,
		AlcoholG:       14,
		StandardDrinks: 1,
	}
	assert.Equal(t, want, l.Summary())
}

func TestApplyDeletionClampsAtZero(t *testing.T) {
	t.Parallel()

	l := ledger.New("2026-02-20")
	l.ApplyAddition(model.Delta{FiberG: 5})
	l.ApplyDeletion(model.Entry{Name: "bran", FiberG: model.Track(8)})

	assert.Equal(t, 0.0, l.Summary().FiberG)
}

func TestApplyDeletionOfZeroEntryIsNoOp(t *testing.T) {
	t.Parallel()

	l := ledger.New("2026-02-20")
	l.ApplyAddition(model.Delta{Calories: 820, ProteinG: 41.5, CaffeineMg: 95, WaterMl: 500})
	before := l.Summary()

	l.ApplyDeletion(model.Entry{
		Name:     "zeros",
		Calories: model.Track(0),
		ProteinG: model.Track(0),
		FatG:     model.Track(0),
		Caffeine: &model.CaffeineRef{Category: "coffee"},
	})
	assert.Equal(t, before, l.Summary())

	l.ApplyDeletion(model.Entry{Name: "untracked"})
	assert.Equal(t, before, l.Summary())
}

func TestApplyDeletionNeverGoesNegative(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		l := ledger.New("2026-02-20")
		prior := model.Delta{
			Calories:   rng.Intn(1000),
			ProteinG:   rng.Float64() * 100,
			IronMg:     rng.Float64() * 20,
			AlcoholG:   rng.Float64() * 30,
			CaffeineMg: rng.Float64() * 400,
		}
		l.ApplyAddition(prior)
		e := model.Entry{
			Name:     "random",
			Calories: model.Track(float64(rng.Intn(1000))),
			ProteinG: model.Track(rng.Float64() * 100),
			IronMg:   model.Track(rng.Float64() * 20),
			Alcohol:  &model.AlcoholRef{Category: "beer", AlcoholG: rng.Float64() * 30},
		}
		l.ApplyDeletion(e)

		got := l.Summary()
		c := e.Contribution()
		assert.Equal(t, maxInt(0, prior.Calories-c.Calories), got.CaloriesEaten)
		assert.InDelta(t, math.Max(0, prior.ProteinG-c.ProteinG), got.ProteinG, 1e-9)
		assert.InDelta(t, math.Max(0, prior.IronMg-c.IronMg), got.IronMg, 1e-9)
		assert.InDelta(t, math.Max(0, prior.AlcoholG-c.AlcoholG), got.AlcoholG, 1e-9)
		assert.InDelta(t, prior.CaffeineMg, got.CaffeineMg, 1e-9)
		assert.GreaterOrEqual(t, got.ProteinG, 0.0)
		assert.GreaterOrEqual(t, got.AlcoholG, 0.0)
	}
}

func TestAdditionsThenInverseDeletionsRestoreSummary(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	l := ledger.New("2026-02-20")
	l.ApplyAddition(model.Delta{Calories: 1200, ProteinG: 60.25, FiberG: 12.1, VitaminCMg: 40, WaterMl: 750})
	base := l.Summary()

	entries := make([]model.Entry, 0, 25)
	for i := 0; i < 25; i++ {
		e := model.Entry{
			LocalID:     model.NewLocalEntryID(),
			Name:        "item",
			Calories:    model.Track(float64(rng.Intn(600))),
			ProteinG:    model.Track(rng.Float64() * 40),
			CarbsG:      model.Track(rng.Float64() * 80),
			FiberG:      model.Track(rng.Float64() * 9),
			VitaminCMg:  model.Track(rng.Float64() * 70),
			FolateUg:    model.Track(rng.Float64() * 120),
			WaterMl:     model.Track(rng.Float64() * 330),
			PotassiumMg: model.Track(rng.Float64() * 500),
		}
		if i%3 == 0 {
			e.Caffeine = &model.CaffeineRef{Category: "coffee", CaffeineMg: rng.Float64() * 200}
		}
		entries = append(entries, e)
		l.AddEntry(e)
	}
	require.Len(t, l.Entries(), 25)

	for _, e := range entries {
		l.ApplyDeletion(e)
	}
	require.Empty(t, l.Entries())

	got := l.Summary()
	assert.Equal(t, base.CaloriesEaten, got.CaloriesEaten)
	assert.InDelta(t, base.ProteinG, got.ProteinG, 1e-9)
	assert.InDelta(t, base.CarbsG, got.CarbsG, 1e-9)
	assert.InDelta(t, base.FiberG, got.FiberG, 1e-9)
	assert.InDelta(t, base.VitaminCMg, got.VitaminCMg, 1e-9)
	assert.InDelta(t, base.FolateUg, got.FolateUg, 1e-9)
	assert.InDelta(t, base.WaterMl, got.WaterMl, 1e-9)
	assert.InDelta(t, base.PotassiumMg, got.PotassiumMg, 1e-9)
	assert.InDelta(t, base.CaffeineMg, got.CaffeineMg, 1e-9)
}

func TestApplyDeletionRemovesMatchingEntryOnly(t *testing.T) {
	t.Parallel()

	l := ledger.New("2026-02-20")
	first := model.Entry{ID: 11, Name: "oats", Calories: model.Track(150)}
	second := model.Entry{ID: 12, Name: "eggs", Calories: model.Track(140)}
	local := model.Entry{LocalID: "abc", Name: "tea", Calories: model.Track(2)}
	l.AddEntry(first)
	l.AddEntry(second)
	l.AddEntry(local)

	l.ApplyDeletion(second)
	l.ApplyDeletion(model.Entry{LocalID: "abc", Calories: model.Track(2)})

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(11), entries[0].ID)
	assert.Equal(t, 150, l.Summary().CaloriesEaten)
}

func TestRecomputeRebuildsTotalsAndKeepsGoals(t *testing.T) {
	t.Parallel()

	id := int64(9)
	l := ledger.New("2026-02-20")
	l.Replace(model.DailySummary{
		Date:          "2026-02-20",
		DailyLogID:    &id,
		CaloriesEaten: 999,
		CaloriesGoal:  2200,
		ProteinGoalG:  150,
		WaterGoalMl:   2500,
	}, []model.Entry{
		{ID: 1, Name: "a", Calories: model.Track(300), ProteinG: model.Track(25)},
		{ID: 2, Name: "b", Calories: model.Track(200), WaterMl: model.Track(250)},
	})

	l.Recompute()

	got := l.Summary()
	assert.Equal(t, 500, got.CaloriesEaten)
	assert.Equal(t, 25.0, got.ProteinG)
	assert.Equal(t, 250.0, got.WaterMl)
	assert.Equal(t, 2200, got.CaloriesGoal)
	assert.Equal(t, 150.0, got.ProteinGoalG)
	require.NotNil(t, got.DailyLogID)
	assert.Equal(t, int64(9), *got.DailyLogID)
}

func TestSummaryReturnsIndependentCopy(t *testing.T) {
	t.Parallel()

	id := int64(3)
	l := ledger.New("2026-02-20")
	l.Replace(model.DailySummary{Date: "2026-02-20", DailyLogID: &id}, nil)

	s := l.Summary()
	*s.DailyLogID = 99
	assert.Equal(t, int64(3), *l.Summary().DailyLogID)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
