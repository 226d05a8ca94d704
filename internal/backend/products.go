package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/saadjs/kcal-sync/internal/model"
)

// ethanolDensity is grams of ethanol per mL.
const ethanolDensity = 0.789

// GramsPerStandardDrink is the US standard drink.
const GramsPerStandardDrink = 14.0

// Food is a generic food product with nutrients per 100 g.
type Food struct {
	ID           string
	Name         string
	Brand        string
	ServingSize  float64
	ServingUnit  string
	Calories     float64
	ProteinG     float64
	CarbsG       float64
	FatG         float64
	FiberG       float64
	IronMg       float64
	CalciumMg    float64
	PotassiumMg  float64
	VitaminAUg   float64
	VitaminB12Ug float64
	FolateUg     float64
	VitaminCMg   float64
}

// CustomFood is a user-authored food with nutrients per serving. The legacy
// schema never captured fiber, vitamin B12 or folate.
type CustomFood struct {
	ID          int64
	Name        string
	Brand       string
	ServingSize float64
	ServingUnit string
	Calories    float64
	ProteinG    float64
	CarbsG      float64
	FatG        float64
	IronMg      float64
	CalciumMg   float64
	PotassiumMg float64
	VitaminAUg  float64
	VitaminCMg  float64
}

type foodPayload struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	ServingSize flexFloat       `json:"serving_size"`
	ServingUnit string          `json:"serving_unit"`
	Calories    flexFloat       `json:"calories"`
	Protein     flexFloat       `json:"protein"`
	Carbs       flexFloat       `json:"carbs"`
	Fat         flexFloat       `json:"fat"`
	Fiber       flexFloat       `json:"fiber"`
	Iron        flexFloat       `json:"iron"`
	Calcium     flexFloat       `json:"calcium"`
	Potassium   flexFloat       `json:"potassium"`
	VitaminA    flexFloat       `json:"vitamin_a"`
	VitaminB12  flexFloat       `json:"vitamin_b12"`
	Folate      flexFloat       `json:"folate"`
	VitaminC    flexFloat       `json:"vitamin_c"`
}

type alcoholPayload struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Brand          string    `json:"brand"`
	Category       string    `json:"category"`
	VolumeMl       flexFloat `json:"volume_ml"`
	ABV            flexFloat `json:"abv"`
	Calories       flexFloat `json:"calories"`
	Carbs          flexFloat `json:"carbs"`
	AlcoholGrams   flexFloat `json:"alcohol_grams"`
	StandardDrinks flexFloat `json:"standard_drinks"`
}

type caffeinePayload struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	ServingSize flexFloat `json:"serving_size"`
	ServingUnit string    `json:"serving_unit"`
	CaffeineMg  flexFloat `json:"caffeine_mg"`
	Calories    flexFloat `json:"calories"`
	Carbs       flexFloat `json:"carbs"`
}

func (p alcoholPayload) toBeverage() model.AlcoholBeverage {
	grams := float64(p.AlcoholGrams)
	if grams <= 0 && p.VolumeMl > 0 && p.ABV > 0 {
		grams = float64(p.VolumeMl) * float64(p.ABV) / 100 * ethanolDensity
	}
	drinks := float64(p.StandardDrinks)
	if drinks <= 0 && grams > 0 {
		drinks = grams / GramsPerStandardDrink
	}
	return model.AlcoholBeverage{
		ID:       p.ID,
		Name:     strings.TrimSpace(p.Name),
		Brand:    strings.TrimSpace(p.Brand),
		Category: strings.TrimSpace(p.Category),
		VolumeMl: float64(p.VolumeMl),
		ABV:      float64(p.ABV),
		Profile: model.Profile{
			Basis:          model.BasisPerServing,
			ServingSize:    float64(p.VolumeMl),
			ServingUnit:    "ml",
			Calories:       float64(p.Calories),
			CarbsG:         float64(p.Carbs),
			AlcoholG:       grams,
			StandardDrinks: drinks,
		},
	}
}

func (p caffeinePayload) toProduct() model.CaffeineProduct {
	unit := strings.TrimSpace(p.ServingUnit)
	if unit == "" {
		unit = "serving"
	}
	size := float64(p.ServingSize)
	if size <= 0 {
		size = 1
	}
	return model.CaffeineProduct{
		ID:       p.ID,
		Name:     strings.TrimSpace(p.Name),
		Brand:    strings.TrimSpace(p.Brand),
		Category: strings.TrimSpace(p.Category),
		Profile: model.Profile{
			Basis:       model.BasisPerServing,
			ServingSize: size,
			ServingUnit: unit,
			Calories:    float64(p.Calories),
			CarbsG:      float64(p.Carbs),
			CaffeineMg:  float64(p.CaffeineMg),
		},
	}
}

func (c *Client) GetFood(ctx context.Context, id string) (Food, error) {
	const op = "get_food"
	id = strings.TrimSpace(id)
	if id == "" {
		return Food{}, fmt.Errorf("food id is required")
	}
	raw, err := c.do(ctx, op, http.MethodGet, "/foods/"+url.PathEscape(id)+"/", nil, nil)
	if err != nil {
		return Food{}, err
	}
	var p foodPayload
	if err := decode(op, raw, &p); err != nil {
		return Food{}, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return Food{}, &Error{Kind: KindDecode, Op: op, Detail: "food without name"}
	}
	foodID := rawID(p.ID)
	if foodID == "" {
		foodID = id
	}
	return Food{
		ID:           foodID,
		Name:         strings.TrimSpace(p.Name),
		Brand:        strings.TrimSpace(p.Brand),
		ServingSize:  float64(p.ServingSize),
		ServingUnit:  strings.TrimSpace(p.ServingUnit),
		Calories:     float64(p.Calories),
		ProteinG:     float64(p.Protein),
		CarbsG:       float64(p.Carbs),
		FatG:         float64(p.Fat),
		FiberG:       float64(p.Fiber),
		IronMg:       float64(p.Iron),
		CalciumMg:    float64(p.Calcium),
		PotassiumMg:  float64(p.Potassium),
		VitaminAUg:   float64(p.VitaminA),
		VitaminB12Ug: float64(p.VitaminB12),
		FolateUg:     float64(p.Folate),
		VitaminCMg:   float64(p.VitaminC),
	}, nil
}

func (c *Client) GetCustomFood(ctx context.Context, id int64) (CustomFood, error) {
	const op = "get_custom_food"
	if id <= 0 {
		return CustomFood{}, fmt.Errorf("custom food id must be > 0")
	}
	raw, err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/custom-foods/%d/", id), nil, nil)
	if err != nil {
		return CustomFood{}, err
	}
	var p foodPayload
	if err := decode(op, raw, &p); err != nil {
		return CustomFood{}, err
	}
	return CustomFood{
		ID:          id,
		Name:        strings.TrimSpace(p.Name),
		Brand:       strings.TrimSpace(p.Brand),
		ServingSize: float64(p.ServingSize),
		ServingUnit: strings.TrimSpace(p.ServingUnit),
		Calories:    float64(p.Calories),
		ProteinG:    float64(p.Protein),
		CarbsG:      float64(p.Carbs),
		FatG:        float64(p.Fat),
		IronMg:      float64(p.Iron),
		CalciumMg:   float64(p.Calcium),
		PotassiumMg: float64(p.Potassium),
		VitaminAUg:  float64(p.VitaminA),
		VitaminCMg:  float64(p.VitaminC),
	}, nil
}

func (c *Client) GetAlcoholBeverage(ctx context.Context, id int64) (model.AlcoholBeverage, error) {
	const op = "get_alcohol_beverage"
	if id <= 0 {
		return model.AlcoholBeverage{}, fmt.Errorf("alcohol beverage id must be > 0")
	}
	raw, err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/alcohol-beverages/%d/", id), nil, nil)
	if err != nil {
		return model.AlcoholBeverage{}, err
	}
	var p alcoholPayload
	if err := decode(op, raw, &p); err != nil {
		return model.AlcoholBeverage{}, err
	}
	return p.toBeverage(), nil
}

func (c *Client) GetCaffeineProduct(ctx context.Context, id int64) (model.CaffeineProduct, error) {
	const op = "get_caffeine_product"
	if id <= 0 {
		return model.CaffeineProduct{}, fmt.Errorf("caffeine product id must be > 0")
	}
	raw, err := c.do(ctx, op, http.MethodGet, fmt.Sprintf("/caffeine-products/%d/", id), nil, nil)
	if err != nil {
		return model.CaffeineProduct{}, err
	}
	var p caffeinePayload
	if err := decode(op, raw, &p); err != nil {
		return model.CaffeineProduct{}, err
	}
	return p.toProduct(), nil
}

// ListAlcoholCategory returns one page of a category listing and whether a
// further page exists. Pages start at 1.
func (c *Client) ListAlcoholCategory(ctx context.Context, category string, page int) ([]model.AlcoholBeverage, bool, error) {
	const op = "list_alcohol_category"
	items, more, err := c.listPage(ctx, op, "/alcohol-beverages/", category, page)
	if err != nil {
		return nil, false, err
	}
	out := make([]model.AlcoholBeverage, 0, len(items))
	for _, item := range items {
		var p alcoholPayload
		if err := decode(op, []byte(item.Raw), &p); err != nil {
			return nil, false, err
		}
		if p.Category == "" {
			p.Category = category
		}
		out = append(out, p.toBeverage())
	}
	return out, more, nil
}

func (c *Client) ListCaffeineCategory(ctx context.Context, category string, page int) ([]model.CaffeineProduct, bool, error) {
	const op = "list_caffeine_category"
	items, more, err := c.listPage(ctx, op, "/caffeine-products/", category, page)
	if err != nil {
		return nil, false, err
	}
	out := make([]model.CaffeineProduct, 0, len(items))
	for _, item := range items {
		var p caffeinePayload
		if err := decode(op, []byte(item.Raw), &p); err != nil {
			return nil, false, err
		}
		if p.Category == "" {
			p.Category = category
		}
		out = append(out, p.toProduct())
	}
	return out, more, nil
}

// listPage accepts both the paginated {"results": [...], "next": ...} shape and
// a bare array.
func (c *Client) listPage(ctx context.Context, op, path, category string, page int) ([]gjson.Result, bool, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, false, fmt.Errorf("category is required")
	}
	if page <= 0 {
		page = 1
	}
	q := url.Values{}
	q.Set("category", category)
	q.Set("page", strconv.Itoa(page))
	raw, err := c.do(ctx, op, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, false, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, false, &Error{Kind: KindDecode, Op: op, Detail: "invalid JSON listing"}
	}
	doc := gjson.ParseBytes(raw)
	if doc.IsArray() {
		return doc.Array(), false, nil
	}
	results := doc.Get("results")
	if !results.IsArray() {
		return nil, false, &Error{Kind: KindDecode, Op: op, Detail: "listing without results"}
	}
	next := doc.Get("next")
	more := next.Exists() && next.Type != gjson.Null && next.String() != ""
	return results.Array(), more, nil
}

func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str)
	}
	return s
}
