// Package resolve maps diary entries and search hits to the product they
// came from. Resolution never fails: when every lookup misses, a profile is
// synthesized from the entry itself.
package resolve

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/saadjs/kcal-sync/internal/backend"
	"github.com/saadjs/kcal-sync/internal/catalog"
	"github.com/saadjs/kcal-sync/internal/metrics"
	"github.com/saadjs/kcal-sync/internal/model"
)

// RecentStore records products the user picked. *store.Recents satisfies it.
type RecentStore interface {
	Remember(ctx context.Context, p model.RecentProduct) error
}

// SearchResult is a generic search hit, optionally linked to a specialized
// catalog.
type SearchResult struct {
	Name              string
	Brand             string
	FoodProductID     string
	AlcoholBeverageID int64
	CaffeineProductID int64
}

// Resolver dependencies are all optional; a nil dependency skips the step
// that needs it.
type Resolver struct {
	Foods       FoodSource
	CustomFoods CustomFoodSource
	Products    ProductFetcher
	Catalog     *catalog.Cache
	Recents     RecentStore
	Matcher     Matcher
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

func (r *Resolver) logger() logrus.FieldLogger {
	if r.Logger == nil {
		return logrus.StandardLogger()
	}
	return r.Logger
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// ResolveEntry returns the product e originated from. Order: specialized
// reference, generic food id, custom food id, synthesized profile.
func (r *Resolver) ResolveEntry(ctx context.Context, e model.Entry) model.ResolvedProduct {
	log := r.logger().WithField("entry", e.Name)

	if e.Alcohol != nil {
		if b, ok := r.alcoholByID(ctx, e.Alcohol.BeverageID, log); ok {
			metrics.RecordResolution("alcohol")
			return model.Alcohol(b)
		}
		metrics.RecordResolution("alcohol_synthetic")
		return model.Alcohol(alcoholFromEntry(e))
	}
	if e.Caffeine != nil {
		if p, ok := r.caffeineByID(ctx, e.Caffeine.ProductID, log); ok {
			metrics.RecordResolution("caffeine")
			return model.Caffeine(p)
		}
		metrics.RecordResolution("caffeine_synthetic")
		return model.Caffeine(caffeineFromEntry(e))
	}

	if id := strings.TrimSpace(e.FoodProductID); id != "" && !model.IsPlaceholderID(id) && r.Foods != nil && ctx.Err() == nil {
		food, profile, err := r.Foods.LookupFood(ctx, id)
		if err == nil {
			r.remember(ctx, food)
			metrics.RecordResolution("food")
			return model.GenericFood(food, profile)
		}
		log.WithError(err).WithField("product_id", id).Debug("food lookup failed, falling through")
	}

	if e.CustomFoodID > 0 && r.CustomFoods != nil && ctx.Err() == nil {
		cf, err := r.CustomFoods.GetCustomFood(ctx, e.CustomFoodID)
		if err == nil {
			metrics.RecordResolution("custom_food")
			return customFoodProduct(cf)
		}
		log.WithError(err).WithField("custom_food_id", e.CustomFoodID).Debug("custom food lookup failed, falling through")
	}

	metrics.RecordResolution("synthetic")
	return Synthesize(e)
}

// ResolveSearchResult routes a search hit to a specialized product. An
// explicit catalog link wins; otherwise the Matcher is consulted against the
// catalog cache. false means the generic food flow applies.
func (r *Resolver) ResolveSearchResult(ctx context.Context, res SearchResult) (model.ResolvedProduct, bool) {
	log := r.logger().WithField("search", res.Name)
	if res.AlcoholBeverageID > 0 {
		if b, ok := r.alcoholByID(ctx, res.AlcoholBeverageID, log); ok {
			metrics.RecordResolution("search_link")
			return model.Alcohol(b), true
		}
	}
	if res.CaffeineProductID > 0 {
		if p, ok := r.caffeineByID(ctx, res.CaffeineProductID, log); ok {
			metrics.RecordResolution("search_link")
			return model.Caffeine(p), true
		}
	}
	if r.Catalog == nil || ctx.Err() != nil {
		metrics.RecordResolution("search_none")
		return model.ResolvedProduct{}, false
	}

	matcher := r.Matcher
	if matcher == nil {
		matcher = NewTokenMatcher()
	}
	m, ok := matcher.Match(res.Name, res.Brand, r.Catalog.AlcoholProducts(), r.Catalog.CaffeineProducts())
	switch {
	case ok && m.Alcohol != nil:
		metrics.RecordResolution("search_match")
		return model.Alcohol(*m.Alcohol), true
	case ok && m.Caffeine != nil:
		metrics.RecordResolution("search_match")
		return model.Caffeine(*m.Caffeine), true
	}
	metrics.RecordResolution("search_none")
	return model.ResolvedProduct{}, false
}

func (r *Resolver) alcoholByID(ctx context.Context, id int64, log logrus.FieldLogger) (model.AlcoholBeverage, bool) {
	if id <= 0 {
		return model.AlcoholBeverage{}, false
	}
	if r.Catalog != nil {
		if b, ok := r.Catalog.FindAlcohol(id); ok {
			return b, true
		}
	}
	if r.Products == nil || ctx.Err() != nil {
		return model.AlcoholBeverage{}, false
	}
	b, err := r.Products.GetAlcoholBeverage(ctx, id)
	if err != nil {
		log.WithError(err).WithField("beverage_id", id).Debug("alcohol lookup failed")
		return model.AlcoholBeverage{}, false
	}
	return b, true
}

func (r *Resolver) caffeineByID(ctx context.Context, id int64, log logrus.FieldLogger) (model.CaffeineProduct, bool) {
	if id <= 0 {
		return model.CaffeineProduct{}, false
	}
	if r.Catalog != nil {
		if p, ok := r.Catalog.FindCaffeine(id); ok {
			return p, true
		}
	}
	if r.Products == nil || ctx.Err() != nil {
		return model.CaffeineProduct{}, false
	}
	p, err := r.Products.GetCaffeineProduct(ctx, id)
	if err != nil {
		log.WithError(err).WithField("product_id", id).Debug("caffeine lookup failed")
		return model.CaffeineProduct{}, false
	}
	return p, true
}

// remember registers food in the recents list unless ctx was cancelled while
// the lookup ran.
func (r *Resolver) remember(ctx context.Context, food model.FoodProduct) {
	if r.Recents == nil || ctx.Err() != nil {
		return
	}
	err := r.Recents.Remember(ctx, model.RecentProduct{
		ProductID:  food.ID,
		Name:       food.Name,
		Brand:      food.Brand,
		SelectedAt: r.now().UTC(),
	})
	if err != nil {
		r.logger().WithError(err).WithField("product_id", food.ID).Warn("could not record recent product")
	}
}

func customFoodProduct(cf backend.CustomFood) model.ResolvedProduct {
	return model.GenericFood(
		model.FoodProduct{Name: cf.Name, Brand: cf.Brand, CustomFoodID: cf.ID},
		model.Profile{
			Basis:       model.BasisPerServing,
			ServingSize: cf.ServingSize,
			ServingUnit: cf.ServingUnit,
			Calories:    cf.Calories,
			ProteinG:    cf.ProteinG,
			CarbsG:      cf.CarbsG,
			FatG:        cf.FatG,
			IronMg:      cf.IronMg,
			CalciumMg:   cf.CalciumMg,
			PotassiumMg: cf.PotassiumMg,
			VitaminAUg:  cf.VitaminAUg,
			VitaminCMg:  cf.VitaminCMg,
		},
	)
}

// Synthesize builds an estimated per-100g profile from the entry's own
// amounts. Amounts are scaled by 100/servingSize when the serving is in
// grams and left as logged otherwise.
func Synthesize(e model.Entry) model.ResolvedProduct {
	scale := 1.0
	if isGrams(e.ServingUnit) && e.ServingSize > 0 {
		scale = 100 / e.ServingSize
	}
	id := strings.TrimSpace(e.FoodProductID)
	if id == "" {
		id = model.NewPlaceholderID()
	}
	return model.GenericFood(
		model.FoodProduct{ID: id, Name: e.Name},
		model.Profile{
			Basis:        model.BasisPer100g,
			Estimated:    true,
			ServingSize:  e.ServingSize,
			ServingUnit:  e.ServingUnit,
			Calories:     e.Calories.Or(0) * scale,
			ProteinG:     e.ProteinG.Or(0) * scale,
			CarbsG:       e.CarbsG.Or(0) * scale,
			FatG:         e.FatG.Or(0) * scale,
			FiberG:       e.FiberG.Or(0) * scale,
			IronMg:       e.IronMg.Or(0) * scale,
			CalciumMg:    e.CalciumMg.Or(0) * scale,
			PotassiumMg:  e.PotassiumMg.Or(0) * scale,
			VitaminAUg:   e.VitaminAUg.Or(0) * scale,
			VitaminB12Ug: e.VitaminB12Ug.Or(0) * scale,
			FolateUg:     e.FolateUg.Or(0) * scale,
			VitaminCMg:   e.VitaminCMg.Or(0) * scale,
		},
	)
}

func isGrams(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "gram", "grams":
		return true
	}
	return false
}

func alcoholFromEntry(e model.Entry) model.AlcoholBeverage {
	drinks := e.Alcohol.StandardDrinks
	if drinks <= 0 && e.Alcohol.AlcoholG > 0 {
		drinks = e.Alcohol.AlcoholG / backend.GramsPerStandardDrink
	}
	var volume float64
	if strings.EqualFold(strings.TrimSpace(e.ServingUnit), "ml") {
		volume = e.ServingSize
	}
	return model.AlcoholBeverage{
		ID:       e.Alcohol.BeverageID,
		Name:     e.Name,
		Category: e.Alcohol.Category,
		VolumeMl: volume,
		Profile: model.Profile{
			Basis:          model.BasisPerServing,
			ServingSize:    e.ServingSize,
			ServingUnit:    e.ServingUnit,
			Calories:       e.Calories.Or(0),
			CarbsG:         e.CarbsG.Or(0),
			AlcoholG:       e.Alcohol.AlcoholG,
			StandardDrinks: drinks,
		},
	}
}

func caffeineFromEntry(e model.Entry) model.CaffeineProduct {
	return model.CaffeineProduct{
		ID:       e.Caffeine.ProductID,
		Name:     e.Name,
		Category: e.Caffeine.Category,
		Profile: model.Profile{
			Basis:       model.BasisPerServing,
			ServingSize: e.ServingSize,
			ServingUnit: e.ServingUnit,
			Calories:    e.Calories.Or(0),
			CarbsG:      e.CarbsG.Or(0),
			CaffeineMg:  e.Caffeine.CaffeineMg,
		},
	}
}
