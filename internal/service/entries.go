package service

import (
	"fmt"
	"strings"

	"github.com/saadjs/kcal-sync/internal/backend"
	"github.com/saadjs/kcal-sync/internal/model"
)

// FoodInput is a manually described food; nil amounts stay untracked.
type FoodInput struct {
	Name          string
	ServingSize   float64
	ServingUnit   string
	Calories      *float64
	ProteinG      *float64
	CarbsG        *float64
	FatG          *float64
	FiberG        *float64
	Meal          model.Meal
	FoodProductID string
	CustomFoodID  int64
}

func optional(v *float64) model.Nutrient {
	if v == nil {
		return model.Untracked
	}
	return model.Track(*v)
}

// FoodEntry builds an entry from manual input. Mass and volume servings are
// normalized to g and ml.
func FoodEntry(in FoodInput) (model.Entry, error) {
	size, unit, err := NormalizeServing(in.ServingSize, in.ServingUnit)
	if err != nil {
		return model.Entry{}, err
	}
	return model.Entry{
		Name:          strings.TrimSpace(in.Name),
		ServingSize:   size,
		ServingUnit:   unit,
		Calories:      optional(in.Calories),
		ProteinG:      optional(in.ProteinG),
		CarbsG:        optional(in.CarbsG),
		FatG:          optional(in.FatG),
		FiberG:        optional(in.FiberG),
		Meal:          in.Meal,
		FoodProductID: strings.TrimSpace(in.FoodProductID),
		CustomFoodID:  in.CustomFoodID,
	}, nil
}

// ProductEntry scales a resolved product to an amount. For per-100g
// profiles amount is grams; for per-serving profiles it is servings.
func ProductEntry(p model.ResolvedProduct, amount float64, meal model.Meal) (model.Entry, error) {
	if amount <= 0 {
		return model.Entry{}, fmt.Errorf("amount must be > 0")
	}
	prof := p.Profile
	factor := amount
	size, unit := amount*prof.ServingSize, prof.ServingUnit
	if prof.Basis == model.BasisPer100g {
		factor = amount / 100
		size, unit = amount, "g"
	}
	if size <= 0 {
		size, unit = amount, "serving"
	}
	e := model.Entry{
		Name:         p.Name(),
		ServingSize:  size,
		ServingUnit:  unit,
		Calories:     model.Track(prof.Calories * factor),
		ProteinG:     model.Track(prof.ProteinG * factor),
		CarbsG:       model.Track(prof.CarbsG * factor),
		FatG:         model.Track(prof.FatG * factor),
		FiberG:       model.Track(prof.FiberG * factor),
		IronMg:       model.Track(prof.IronMg * factor),
		CalciumMg:    model.Track(prof.CalciumMg * factor),
		PotassiumMg:  model.Track(prof.PotassiumMg * factor),
		VitaminAUg:   model.Track(prof.VitaminAUg * factor),
		VitaminB12Ug: model.Track(prof.VitaminB12Ug * factor),
		FolateUg:     model.Track(prof.FolateUg * factor),
		VitaminCMg:   model.Track(prof.VitaminCMg * factor),
		Meal:         meal,
	}
	switch p.Kind {
	case model.KindAlcoholBeverage:
		drinks := prof.StandardDrinks * factor
		grams := prof.AlcoholG * factor
		if drinks <= 0 && grams > 0 {
			drinks = grams / backend.GramsPerStandardDrink
		}
		e.Alcohol = &model.AlcoholRef{Category: p.Alcohol.Category, BeverageID: p.Alcohol.ID, AlcoholG: grams, StandardDrinks: drinks}
	case model.KindCaffeineProduct:
		e.Caffeine = &model.CaffeineRef{Category: p.Caffeine.Category, ProductID: p.Caffeine.ID, CaffeineMg: prof.CaffeineMg * factor}
	default:
		if p.Food != nil {
			if p.Food.CustomFoodID > 0 {
				e.CustomFoodID = p.Food.CustomFoodID
			} else if !model.IsPlaceholderID(p.Food.ID) {
				e.FoodProductID = p.Food.ID
			}
		}
	}
	return e, nil
}

// WaterEntry logs plain water.
func WaterEntry(ml float64) (model.Entry, error) {
	if ml <= 0 {
		return model.Entry{}, fmt.Errorf("water amount must be > 0")
	}
	return model.Entry{
		Name:        "Water",
		ServingSize: ml,
		ServingUnit: "ml",
		Calories:    model.Track(0),
		WaterMl:     model.Track(ml),
		Meal:        model.MealSnack,
	}, nil
}
