package model

import (
	"strings"

	"github.com/google/uuid"
)

type ProductKind string

const (
	KindGenericFood     ProductKind = "generic_food"
	KindAlcoholBeverage ProductKind = "alcohol_beverage"
	KindCaffeineProduct ProductKind = "caffeine_product"
)

type Basis string

const (
	BasisPer100g    Basis = "per_100g"
	BasisPerServing Basis = "per_serving"
)

const placeholderIDTag = "local-"

// Profile is the nutrition/composition of a product on an explicit basis.
type Profile struct {
	Basis          Basis   `json:"basis"`
	Estimated      bool    `json:"estimated,omitempty"`
	ServingSize    float64 `json:"serving_size"`
	ServingUnit    string  `json:"serving_unit"`
	Calories       float64 `json:"calories"`
	ProteinG       float64 `json:"protein_g"`
	CarbsG         float64 `json:"carbs_g"`
	FatG           float64 `json:"fat_g"`
	FiberG         float64 `json:"fiber_g"`
	IronMg         float64 `json:"iron_mg"`
	CalciumMg      float64 `json:"calcium_mg"`
	PotassiumMg    float64 `json:"potassium_mg"`
	VitaminAUg     float64 `json:"vitamin_a_ug"`
	VitaminB12Ug   float64 `json:"vitamin_b12_ug"`
	FolateUg       float64 `json:"folate_ug"`
	VitaminCMg     float64 `json:"vitamin_c_mg"`
	AlcoholG       float64 `json:"alcohol_g,omitempty"`
	StandardDrinks float64 `json:"standard_drinks,omitempty"`
	CaffeineMg     float64 `json:"caffeine_mg,omitempty"`
}

// BasisLabel is the caption shown next to a profile.
func (p Profile) BasisLabel() string {
	switch {
	case p.Basis == BasisPer100g && p.Estimated:
		return "per 100g (estimated)"
	case p.Basis == BasisPer100g:
		return "per 100g"
	default:
		return "per serving"
	}
}

type FoodProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
	// CustomFoodID is set when the product came from a user-authored food.
	CustomFoodID int64 `json:"custom_food_id,omitempty"`
}

type AlcoholBeverage struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	VolumeMl float64 `json:"volume_ml"`
	ABV      float64 `json:"abv"`
	Profile  Profile `json:"profile"`
}

type CaffeineProduct struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	Profile  Profile `json:"profile"`
}

// ResolvedProduct is exactly one of Food, Alcohol, or Caffeine, selected by Kind.
type ResolvedProduct struct {
	Kind     ProductKind      `json:"kind"`
	Food     *FoodProduct     `json:"food,omitempty"`
	Alcohol  *AlcoholBeverage `json:"alcohol,omitempty"`
	Caffeine *CaffeineProduct `json:"caffeine,omitempty"`
	Profile  Profile          `json:"profile"`
}

func GenericFood(food FoodProduct, profile Profile) ResolvedProduct {
	return ResolvedProduct{Kind: KindGenericFood, Food: &food, Profile: profile}
}

func Alcohol(b AlcoholBeverage) ResolvedProduct {
	return ResolvedProduct{Kind: KindAlcoholBeverage, Alcohol: &b, Profile: b.Profile}
}

func Caffeine(p CaffeineProduct) ResolvedProduct {
	return ResolvedProduct{Kind: KindCaffeineProduct, Caffeine: &p, Profile: p.Profile}
}

// Name returns the display name of whichever variant is set.
func (r ResolvedProduct) Name() string {
	switch r.Kind {
	case KindAlcoholBeverage:
		if r.Alcohol != nil {
			return r.Alcohol.Name
		}
	case KindCaffeineProduct:
		if r.Caffeine != nil {
			return r.Caffeine.Name
		}
	default:
		if r.Food != nil {
			return r.Food.Name
		}
	}
	return ""
}

func NewPlaceholderID() string {
	return placeholderIDTag + uuid.NewString()
}

// IsPlaceholderID reports whether id was synthesized on this device and so is
// unknown to the remote food service.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(strings.TrimSpace(id), placeholderIDTag)
}

// NewLocalEntryID identifies an entry before the server assigns an id.
func NewLocalEntryID() string {
	return uuid.NewString()
}
