package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/kcal-sync/internal/backend"
	"github.com/saadjs/kcal-sync/internal/model"
	"github.com/saadjs/kcal-sync/internal/provider/openfoodfacts"
	"github.com/saadjs/kcal-sync/internal/provider/usda"
)

// Food source names accepted in the food_sources setting.
const (
	SourceBackend       = "backend"
	SourceOpenFoodFacts = "openfoodfacts"
	SourceUSDA          = "usda"
)

// FoodSource fetches a generic food by product id with a per-100g profile.
type FoodSource interface {
	LookupFood(ctx context.Context, id string) (model.FoodProduct, model.Profile, error)
}

// CustomFoodSource fetches user-authored foods.
type CustomFoodSource interface {
	GetCustomFood(ctx context.Context, id int64) (backend.CustomFood, error)
}

// ProductFetcher fetches specialized products by id. *backend.Client
// satisfies it.
type ProductFetcher interface {
	GetAlcoholBeverage(ctx context.Context, id int64) (model.AlcoholBeverage, error)
	GetCaffeineProduct(ctx context.Context, id int64) (model.CaffeineProduct, error)
}

// BackendFoods serves foods from the wellness backend's /foods/ endpoint.
type BackendFoods struct {
	Client *backend.Client
}

func (b BackendFoods) LookupFood(ctx context.Context, id string) (model.FoodProduct, model.Profile, error) {
	f, err := b.Client.GetFood(ctx, id)
	if err != nil {
		return model.FoodProduct{}, model.Profile{}, err
	}
	return model.FoodProduct{ID: f.ID, Name: f.Name, Brand: f.Brand}, model.Profile{
		Basis:        model.BasisPer100g,
		ServingSize:  f.ServingSize,
		ServingUnit:  f.ServingUnit,
		Calories:     f.Calories,
		ProteinG:     f.ProteinG,
		CarbsG:       f.CarbsG,
		FatG:         f.FatG,
		FiberG:       f.FiberG,
		IronMg:       f.IronMg,
		CalciumMg:    f.CalciumMg,
		PotassiumMg:  f.PotassiumMg,
		VitaminAUg:   f.VitaminAUg,
		VitaminB12Ug: f.VitaminB12Ug,
		FolateUg:     f.FolateUg,
		VitaminCMg:   f.VitaminCMg,
	}, nil
}

// OpenFoodFactsFoods treats product ids as barcodes.
type OpenFoodFactsFoods struct {
	Client *openfoodfacts.Client
}

func (o OpenFoodFactsFoods) LookupFood(ctx context.Context, id string) (model.FoodProduct, model.Profile, error) {
	p, err := o.Client.LookupProduct(ctx, id)
	if err != nil {
		return model.FoodProduct{}, model.Profile{}, err
	}
	p.Barcode = id
	r := OpenFoodFactsProduct(p)
	return *r.Food, r.Profile, nil
}

// OpenFoodFactsProduct converts a product page or search hit.
func OpenFoodFactsProduct(p openfoodfacts.Product) model.ResolvedProduct {
	return model.GenericFood(model.FoodProduct{ID: p.Barcode, Name: p.Name, Brand: p.Brand}, model.Profile{
		Basis:        model.BasisPer100g,
		ServingSize:  p.ServingSize,
		ServingUnit:  p.ServingUnit,
		Calories:     p.Calories,
		ProteinG:     p.ProteinG,
		CarbsG:       p.CarbsG,
		FatG:         p.FatG,
		FiberG:       p.FiberG,
		IronMg:       p.IronMg,
		CalciumMg:    p.CalciumMg,
		PotassiumMg:  p.PotassiumMg,
		VitaminAUg:   p.VitaminAUg,
		VitaminB12Ug: p.VitaminB12Ug,
		FolateUg:     p.FolateUg,
		VitaminCMg:   p.VitaminCMg,
	})
}

// USDAFoods treats product ids as GTIN/UPC barcodes.
type USDAFoods struct {
	Client *usda.Client
}

func (u USDAFoods) LookupFood(ctx context.Context, id string) (model.FoodProduct, model.Profile, error) {
	f, err := u.Client.LookupBarcode(ctx, id)
	if err != nil {
		return model.FoodProduct{}, model.Profile{}, err
	}
	return model.FoodProduct{ID: id, Name: f.Name, Brand: f.Brand}, model.Profile{
		Basis:        model.BasisPer100g,
		ServingSize:  f.ServingSize,
		ServingUnit:  f.ServingUnit,
		Calories:     f.Calories,
		ProteinG:     f.ProteinG,
		CarbsG:       f.CarbsG,
		FatG:         f.FatG,
		FiberG:       f.FiberG,
		IronMg:       f.IronMg,
		CalciumMg:    f.CalciumMg,
		PotassiumMg:  f.PotassiumMg,
		VitaminAUg:   f.VitaminAUg,
		VitaminB12Ug: f.VitaminB12Ug,
		FolateUg:     f.FolateUg,
		VitaminCMg:   f.VitaminCMg,
	}, nil
}

// NamedSource pairs a FoodSource with the name used in error trails.
type NamedSource struct {
	Name   string
	Source FoodSource
}

// Fallback tries each source in order and returns the first success.
type Fallback []NamedSource

func (f Fallback) LookupFood(ctx context.Context, id string) (model.FoodProduct, model.Profile, error) {
	if len(f) == 0 {
		return model.FoodProduct{}, model.Profile{}, fmt.Errorf("no food sources configured")
	}
	errs := make([]string, 0, len(f))
	for _, s := range f {
		if err := ctx.Err(); err != nil {
			return model.FoodProduct{}, model.Profile{}, err
		}
		food, profile, err := s.Source.LookupFood(ctx, id)
		if err == nil {
			return food, profile, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", s.Name, err))
	}
	return model.FoodProduct{}, model.Profile{}, fmt.Errorf("lookup failed for %q across sources [%s]", id, strings.Join(errs, "; "))
}

// SourceOptions carries what the non-backend sources need.
type SourceOptions struct {
	USDAAPIKey       string
	OpenFoodFactsURL string
	USDAURL          string
}

// BuildFallback turns an ordered list of source names into a Fallback. The
// USDA source is skipped without an API key.
func BuildFallback(names []string, client *backend.Client, opts SourceOptions) (Fallback, error) {
	var out Fallback
	seen := map[string]bool{}
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "off" {
			name = SourceOpenFoodFacts
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case SourceBackend:
			out = append(out, NamedSource{Name: name, Source: BackendFoods{Client: client}})
		case SourceOpenFoodFacts:
			out = append(out, NamedSource{Name: name, Source: OpenFoodFactsFoods{Client: &openfoodfacts.Client{BaseURL: opts.OpenFoodFactsURL}}})
		case SourceUSDA:
			if strings.TrimSpace(opts.USDAAPIKey) == "" {
				continue
			}
			out = append(out, NamedSource{Name: name, Source: USDAFoods{Client: &usda.Client{APIKey: opts.USDAAPIKey, BaseURL: opts.USDAURL}}})
		default:
			return nil, fmt.Errorf("unsupported food source %q", raw)
		}
	}
	if len(out) == 0 {
		out = append(out, NamedSource{Name: SourceBackend, Source: BackendFoods{Client: client}})
	}
	return out, nil
}
