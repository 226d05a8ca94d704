// Package usda looks up branded foods in FoodData Central by GTIN/UPC.
package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.nal.usda.gov"

var ErrNotFound = errors.New("usda: food not found")

// Food carries nutrients per 100 g, which is how FoodData Central reports
// branded foods in search results.
type Food struct {
	FDCID        int64
	Barcode      string
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

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Food, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return Food{}, fmt.Errorf("missing USDA API key")
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Food{}, fmt.Errorf("barcode is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	payload, err := json.Marshal(map[string]any{
		"query":    barcode,
		"dataType": []string{"Branded"},
		"pageSize": 20,
	})
	if err != nil {
		return Food{}, fmt.Errorf("marshal USDA search payload: %w", err)
	}

	u := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return Food{}, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Food{}, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Food{}, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Food{}, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Food{}, fmt.Errorf("decode USDA response: %w", err)
	}
	food, ok := selectBarcodeMatch(parsed.Foods, barcode)
	if !ok {
		return Food{}, fmt.Errorf("barcode %q: %w", barcode, ErrNotFound)
	}

	out := Food{
		FDCID:       food.FDCID,
		Barcode:     barcode,
		Name:        strings.TrimSpace(food.Description),
		Brand:       strings.TrimSpace(food.BrandOwner),
		ServingSize: food.ServingSize,
		ServingUnit: strings.TrimSpace(food.ServingSizeUnit),
	}
	for _, n := range food.FoodNutrients {
		unit := strings.ToUpper(strings.TrimSpace(n.UnitName))
		switch strings.ToLower(strings.TrimSpace(n.NutrientName)) {
		case "energy":
			if unit == "" || unit == "KCAL" {
				out.Calories = n.Value
			}
		case "protein":
			out.ProteinG = n.Value
		case "carbohydrate, by difference":
			out.CarbsG = n.Value
		case "total lipid (fat)":
			out.FatG = n.Value
		case "fiber, total dietary":
			out.FiberG = n.Value
		case "iron, fe":
			out.IronMg = n.Value
		case "calcium, ca":
			out.CalciumMg = n.Value
		case "potassium, k":
			out.PotassiumMg = n.Value
		case "vitamin a, rae":
			out.VitaminAUg = n.Value
		case "vitamin b-12":
			out.VitaminB12Ug = n.Value
		case "folate, total", "folate, dfe":
			if out.FolateUg == 0 {
				out.FolateUg = n.Value
			}
		case "vitamin c, total ascorbic acid":
			out.VitaminCMg = n.Value
		}
	}
	return out, nil
}

// selectBarcodeMatch prefers an exact GTIN match. FoodData Central pads UPCs
// with leading zeros inconsistently, so those are ignored.
func selectBarcodeMatch(foods []usdaFood, barcode string) (usdaFood, bool) {
	want := strings.TrimLeft(barcode, "0")
	for _, f := range foods {
		if strings.TrimLeft(strings.TrimSpace(f.GTINUPC), "0") == want {
			return f, true
		}
	}
	return usdaFood{}, false
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID           int64          `json:"fdcId"`
	Description     string         `json:"description"`
	BrandOwner      string         `json:"brandOwner"`
	GTINUPC         string         `json:"gtinUpc"`
	ServingSize     float64        `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}
