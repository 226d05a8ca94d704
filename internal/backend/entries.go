package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saadjs/kcal-sync/internal/model"
)

type entryPayload struct {
	ID                int64          `json:"id,omitempty"`
	User              string         `json:"user"`
	Date              string         `json:"date,omitempty"`
	Name              string         `json:"name"`
	ServingSize       flexFloat      `json:"serving_size"`
	ServingUnit       string         `json:"serving_unit"`
	Calories          model.Nutrient `json:"calories"`
	Protein           model.Nutrient `json:"protein"`
	Carbs             model.Nutrient `json:"carbs"`
	Fat               model.Nutrient `json:"fat"`
	Fiber             model.Nutrient `json:"fiber"`
	Iron              model.Nutrient `json:"iron"`
	Calcium           model.Nutrient `json:"calcium"`
	Potassium         model.Nutrient `json:"potassium"`
	VitaminA          model.Nutrient `json:"vitamin_a"`
	VitaminB12        model.Nutrient `json:"vitamin_b12"`
	Folate            model.Nutrient `json:"folate"`
	VitaminC          model.Nutrient `json:"vitamin_c"`
	WaterMl           model.Nutrient `json:"water_ml"`
	MealType          string         `json:"meal_type"`
	ConsumedAt        string         `json:"time_consumed"`
	FoodProductID     string         `json:"food_product_id,omitempty"`
	CustomFoodID      int64          `json:"custom_food_id,omitempty"`
	AlcoholCategory   string         `json:"alcohol_category,omitempty"`
	AlcoholBeverageID int64          `json:"alcohol_beverage_id,omitempty"`
	AlcoholGrams      model.Nutrient `json:"alcohol_grams"`
	StandardDrinks    model.Nutrient `json:"standard_drinks"`
	CaffeineCategory  string         `json:"caffeine_category,omitempty"`
	CaffeineProductID int64          `json:"caffeine_product_id,omitempty"`
	CaffeineMg        model.Nutrient `json:"caffeine_mg"`
}

func toEntryPayload(e model.Entry) entryPayload {
	p := entryPayload{
		ID:            e.ID,
		User:          e.UserID,
		Name:          e.Name,
		ServingSize:   flexFloat(e.ServingSize),
		ServingUnit:   e.ServingUnit,
		Calories:      e.Calories,
		Protein:       e.ProteinG,
		Carbs:         e.CarbsG,
		Fat:           e.FatG,
		Fiber:         e.FiberG,
		Iron:          e.IronMg,
		Calcium:       e.CalciumMg,
		Potassium:     e.PotassiumMg,
		VitaminA:      e.VitaminAUg,
		VitaminB12:    e.VitaminB12Ug,
		Folate:        e.FolateUg,
		VitaminC:      e.VitaminCMg,
		WaterMl:       e.WaterMl,
		MealType:      string(e.Meal),
		FoodProductID: strings.TrimSpace(e.FoodProductID),
		CustomFoodID:  e.CustomFoodID,
	}
	if !e.ConsumedAt.IsZero() {
		p.ConsumedAt = e.ConsumedAt.Format(time.RFC3339)
		p.Date = e.ConsumedAt.Format(model.DateLayout)
	}
	if e.Alcohol != nil {
		p.AlcoholCategory = e.Alcohol.Category
		p.AlcoholBeverageID = e.Alcohol.BeverageID
		p.AlcoholGrams = model.Track(e.Alcohol.AlcoholG)
		p.StandardDrinks = model.Track(e.Alcohol.StandardDrinks)
	}
	if e.Caffeine != nil {
		p.CaffeineCategory = e.Caffeine.Category
		p.CaffeineProductID = e.Caffeine.ProductID
		p.CaffeineMg = model.Track(e.Caffeine.CaffeineMg)
	}
	return p
}

func (p entryPayload) toEntry() (model.Entry, error) {
	e := model.Entry{
		ID:            p.ID,
		UserID:        p.User,
		Name:          p.Name,
		ServingSize:   float64(p.ServingSize),
		ServingUnit:   p.ServingUnit,
		Calories:      p.Calories,
		ProteinG:      p.Protein,
		CarbsG:        p.Carbs,
		FatG:          p.Fat,
		FiberG:        p.Fiber,
		IronMg:        p.Iron,
		CalciumMg:     p.Calcium,
		PotassiumMg:   p.Potassium,
		VitaminAUg:    p.VitaminA,
		VitaminB12Ug:  p.VitaminB12,
		FolateUg:      p.Folate,
		VitaminCMg:    p.VitaminC,
		WaterMl:       p.WaterMl,
		Meal:          model.Meal(strings.ToLower(p.MealType)),
		FoodProductID: p.FoodProductID,
		CustomFoodID:  p.CustomFoodID,
	}
	if strings.TrimSpace(p.ConsumedAt) != "" {
		t, err := time.Parse(time.RFC3339, p.ConsumedAt)
		if err != nil {
			return model.Entry{}, fmt.Errorf("parse time_consumed for entry %d: %w", p.ID, err)
		}
		e.ConsumedAt = t
	}
	if p.AlcoholCategory != "" || p.AlcoholBeverageID > 0 || p.AlcoholGrams.Tracked() {
		e.Alcohol = &model.AlcoholRef{
			Category:       p.AlcoholCategory,
			BeverageID:     p.AlcoholBeverageID,
			AlcoholG:       p.AlcoholGrams.Or(0),
			StandardDrinks: p.StandardDrinks.Or(0),
		}
	}
	if p.CaffeineCategory != "" || p.CaffeineProductID > 0 || p.CaffeineMg.Tracked() {
		e.Caffeine = &model.CaffeineRef{
			Category:   p.CaffeineCategory,
			ProductID:  p.CaffeineProductID,
			CaffeineMg: p.CaffeineMg.Or(0),
		}
	}
	return e, nil
}

// ListEntries returns the user's entries for date in the order the server
// reports them.
func (c *Client) ListEntries(ctx context.Context, user, date string) ([]model.Entry, error) {
	const op = "list_entries"
	if err := validateUserDate(user, date); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("user", user)
	q.Set("date", date)
	raw, err := c.do(ctx, op, http.MethodGet, "/food-entries/", q, nil)
	if err != nil {
		return nil, err
	}
	var payload []entryPayload
	if err := decode(op, raw, &payload); err != nil {
		return nil, err
	}
	out := make([]model.Entry, 0, len(payload))
	for _, p := range payload {
		e, err := p.toEntry()
		if err != nil {
			return nil, &Error{Kind: KindDecode, Op: op, Err: err}
		}
		out = append(out, e)
	}
	return out, nil
}

// CreateEntry persists one entry. Only the status of the answer matters.
func (c *Client) CreateEntry(ctx context.Context, e model.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, "create_entry", http.MethodPost, "/food-entries/", nil, toEntryPayload(e))
	return err
}

func (c *Client) DeleteEntry(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("entry id must be > 0")
	}
	_, err := c.do(ctx, "delete_entry", http.MethodDelete, fmt.Sprintf("/food-entries/%d/", id), nil, nil)
	return err
}
