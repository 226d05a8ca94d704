package model

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Meal string

const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
	MealSnack     Meal = "snack"
)

// ParseMeal accepts the four meal names case-insensitively. Empty maps to snack.
func ParseMeal(value string) (Meal, error) {
	switch m := Meal(strings.ToLower(strings.TrimSpace(value))); m {
	case "":
		return MealSnack, nil
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return m, nil
	default:
		return "", fmt.Errorf("invalid meal %q (expected breakfast, lunch, dinner, or snack)", value)
	}
}

type SourceKind string

const (
	SourceNone       SourceKind = "none"
	SourceFood       SourceKind = "food"
	SourceCustomFood SourceKind = "custom_food"
	SourceAlcohol    SourceKind = "alcohol"
	SourceCaffeine   SourceKind = "caffeine"
)

type AlcoholRef struct {
	Category       string  `json:"category"`
	BeverageID     int64   `json:"beverage_id,omitempty"`
	AlcoholG       float64 `json:"alcohol_g"`
	StandardDrinks float64 `json:"standard_drinks"`
}

type CaffeineRef struct {
	Category   string  `json:"category"`
	ProductID  int64   `json:"product_id,omitempty"`
	CaffeineMg float64 `json:"caffeine_mg"`
}

// Entry is one diary record. An entry references at most one product source.
type Entry struct {
	ID            int64        `json:"id,omitempty"`
	LocalID       string       `json:"local_id,omitempty"`
	UserID        string       `json:"user_id"`
	Name          string       `json:"name"`
	ServingSize   float64      `json:"serving_size"`
	ServingUnit   string       `json:"serving_unit"`
	Calories      Nutrient     `json:"calories"`
	ProteinG      Nutrient     `json:"protein_g"`
	CarbsG        Nutrient     `json:"carbs_g"`
	FatG          Nutrient     `json:"fat_g"`
	FiberG        Nutrient     `json:"fiber_g"`
	IronMg        Nutrient     `json:"iron_mg"`
	CalciumMg     Nutrient     `json:"calcium_mg"`
	PotassiumMg   Nutrient     `json:"potassium_mg"`
	VitaminAUg    Nutrient     `json:"vitamin_a_ug"`
	VitaminB12Ug  Nutrient     `json:"vitamin_b12_ug"`
	FolateUg      Nutrient     `json:"folate_ug"`
	VitaminCMg    Nutrient     `json:"vitamin_c_mg"`
	WaterMl       Nutrient     `json:"water_ml"`
	Meal          Meal         `json:"meal"`
	ConsumedAt    time.Time    `json:"consumed_at"`
	FoodProductID string       `json:"food_product_id,omitempty"`
	CustomFoodID  int64        `json:"custom_food_id,omitempty"`
	Alcohol       *AlcoholRef  `json:"alcohol,omitempty"`
	Caffeine      *CaffeineRef `json:"caffeine,omitempty"`
}

// Source reports which product reference the entry carries.
func (e Entry) Source() SourceKind {
	switch {
	case e.Alcohol != nil:
		return SourceAlcohol
	case e.Caffeine != nil:
		return SourceCaffeine
	case strings.TrimSpace(e.FoodProductID) != "":
		return SourceFood
	case e.CustomFoodID > 0:
		return SourceCustomFood
	default:
		return SourceNone
	}
}

// SameEntry matches on server id when both sides have one, else on LocalID.
func (e Entry) SameEntry(other Entry) bool {
	if e.ID > 0 && other.ID > 0 {
		return e.ID == other.ID
	}
	return e.LocalID != "" && e.LocalID == other.LocalID
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("entry name is required")
	}
	if e.ServingSize < 0 {
		return fmt.Errorf("serving size must be >= 0")
	}
	refs := 0
	if strings.TrimSpace(e.FoodProductID) != "" {
		refs++
	}
	if e.CustomFoodID > 0 {
		refs++
	}
	if e.Alcohol != nil {
		refs++
		if e.Alcohol.AlcoholG < 0 || e.Alcohol.StandardDrinks < 0 {
			return fmt.Errorf("alcohol amounts must be >= 0")
		}
	}
	if e.Caffeine != nil {
		refs++
		if e.Caffeine.CaffeineMg < 0 {
			return fmt.Errorf("caffeine amount must be >= 0")
		}
	}
	if refs > 1 {
		return fmt.Errorf("entry %q references more than one product source", e.Name)
	}
	for _, f := range e.nutrientFields() {
		if v, ok := f.value.Get(); ok && v < 0 {
			return fmt.Errorf("%s must be >= 0", f.name)
		}
	}
	return nil
}

type namedNutrient struct {
	name  string
	value Nutrient
}

func (e Entry) nutrientFields() []namedNutrient {
	return []namedNutrient{
		{"calories", e.Calories},
		{"protein", e.ProteinG},
		{"carbs", e.CarbsG},
		{"fat", e.FatG},
		{"fiber", e.FiberG},
		{"iron", e.IronMg},
		{"calcium", e.CalciumMg},
		{"potassium", e.PotassiumMg},
		{"vitamin A", e.VitaminAUg},
		{"vitamin B12", e.VitaminB12Ug},
		{"folate", e.FolateUg},
		{"vitamin C", e.VitaminCMg},
		{"water", e.WaterMl},
	}
}

// Delta is an additive change to a DailySummary. Unset fields are zero.
type Delta struct {
	Calories       int
	ProteinG       float64
	CarbsG         float64
	FatG           float64
	FiberG         float64
	IronMg         float64
	CalciumMg      float64
	PotassiumMg    float64
	VitaminAUg     float64
	VitaminB12Ug   float64
	FolateUg       float64
	VitaminCMg     float64
	AlcoholG       float64
	StandardDrinks float64
	CaffeineMg     float64
	WaterMl        float64
}

// Contribution is what the entry adds to its day. Untracked fields count as zero.
func (e Entry) Contribution() Delta {
	d := Delta{
		Calories:     roundCalories(e.Calories.Or(0)),
		ProteinG:     e.ProteinG.Or(0),
		CarbsG:       e.CarbsG.Or(0),
		FatG:         e.FatG.Or(0),
		FiberG:       e.FiberG.Or(0),
		IronMg:       e.IronMg.Or(0),
		CalciumMg:    e.CalciumMg.Or(0),
		PotassiumMg:  e.PotassiumMg.Or(0),
		VitaminAUg:   e.VitaminAUg.Or(0),
		VitaminB12Ug: e.VitaminB12Ug.Or(0),
		FolateUg:     e.FolateUg.Or(0),
		VitaminCMg:   e.VitaminCMg.Or(0),
		WaterMl:      e.WaterMl.Or(0),
	}
	if e.Alcohol != nil {
		d.AlcoholG = e.Alcohol.AlcoholG
		d.StandardDrinks = e.Alcohol.StandardDrinks
	}
	if e.Caffeine != nil {
		d.CaffeineMg = e.Caffeine.CaffeineMg
	}
	return d
}

func roundCalories(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}

// DailySummary is the aggregate for one user's calendar day.
type DailySummary struct {
	Date           string  `json:"date"`
	DailyLogID     *int64  `json:"daily_log_id"`
	CaloriesEaten  int     `json:"calories_eaten"`
	CaloriesGoal   int     `json:"calories_goal"`
	CaloriesBurned int     `json:"calories_burned"`
	CarbsG         float64 `json:"carbs_g"`
	CarbsGoalG     float64 `json:"carbs_goal_g"`
	ProteinG       float64 `json:"protein_g"`
	ProteinGoalG   float64 `json:"protein_goal_g"`
	FatG           float64 `json:"fat_g"`
	FatGoalG       float64 `json:"fat_goal_g"`
	FiberG         float64 `json:"fiber_g"`
	IronMg         float64 `json:"iron_mg"`
	CalciumMg      float64 `json:"calcium_mg"`
	PotassiumMg    float64 `json:"potassium_mg"`
	VitaminAUg     float64 `json:"vitamin_a_ug"`
	VitaminB12Ug   float64 `json:"vitamin_b12_ug"`
	FolateUg       float64 `json:"folate_ug"`
	VitaminCMg     float64 `json:"vitamin_c_mg"`
	AlcoholG       float64 `json:"alcohol_g"`
	StandardDrinks float64 `json:"standard_drinks"`
	CaffeineMg     float64 `json:"caffeine_mg"`
	WaterMl        float64 `json:"water_ml"`
	WaterGoalMl    float64 `json:"water_goal_ml"`
	Stale          bool    `json:"stale,omitempty"`
}

// GoalOverrides are locally stored goals that take precedence over the
// server-provided ones. Untracked means "no override".
type GoalOverrides struct {
	Calories Nutrient `json:"calories"`
	CarbsG   Nutrient `json:"carbs_g"`
	ProteinG Nutrient `json:"protein_g"`
	FatG     Nutrient `json:"fat_g"`
	WaterMl  Nutrient `json:"water_ml"`
}

type RecentProduct struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	SelectedAt time.Time `json:"selected_at"`
}
