// Package openfoodfacts looks up packaged foods by barcode on Open Food Facts
// and reports their nutrients per 100 g.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://world.openfoodfacts.org"

// ErrNotFound is returned when the barcode is unknown.
var ErrNotFound = errors.New("openfoodfacts: product not found")

// Product carries nutrients per 100 g in the units the ledger uses.
type Product struct {
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
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) base() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: 12 * time.Second}
	}
	return c.HTTPClient
}

func (c *Client) get(ctx context.Context, what, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts %s request: %w", what, err)
	}
	req.Header.Set("User-Agent", "kcal-sync/1.0 (+https://github.com/saadjs/kcal-sync)")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts %s request: %w", what, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts %s response: %w", what, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openfoodfacts %s request failed with status %d", what, resp.StatusCode)
	}
	return body, nil
}

// LookupProduct fetches one product by barcode.
func (c *Client) LookupProduct(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, fmt.Errorf("barcode is required")
	}
	body, err := c.get(ctx, "product", fmt.Sprintf("%s/api/v2/product/%s.json", c.base(), url.PathEscape(barcode)))
	if err != nil {
		return Product{}, err
	}
	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Product{}, fmt.Errorf("barcode %q: %w", barcode, ErrNotFound)
	}
	p := parsed.Product.toProduct()
	if p.Barcode == "" {
		p.Barcode = barcode
	}
	return p, nil
}

// SearchProducts runs a simple full-text search.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.base(), url.QueryEscape(query), limit)
	body, err := c.get(ctx, "search", u)
	if err != nil {
		return nil, err
	}
	var parsed offSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}
	out := make([]Product, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		out = append(out, p.toProduct())
	}
	return out, nil
}

func (p offProduct) toProduct() Product {
	size, unit := parseServing(p)
	n := p.Nutriments
	return Product{
		Barcode:     strings.TrimSpace(p.Code),
		Name:        strings.TrimSpace(p.ProductName),
		Brand:       firstBrand(p.Brands),
		ServingSize: size,
		ServingUnit: unit,
		Calories:    per100g(n, "energy-kcal"),
		ProteinG:    per100g(n, "proteins"),
		CarbsG:      per100g(n, "carbohydrates"),
		FatG:        per100g(n, "fat"),
		FiberG:      per100g(n, "fiber"),
		// minerals and vitamins are reported in grams
		IronMg:       per100g(n, "iron") * 1e3,
		CalciumMg:    per100g(n, "calcium") * 1e3,
		PotassiumMg:  per100g(n, "potassium") * 1e3,
		VitaminCMg:   per100g(n, "vitamin-c") * 1e3,
		VitaminAUg:   per100g(n, "vitamin-a") * 1e6,
		VitaminB12Ug: per100g(n, "vitamin-b12") * 1e6,
		FolateUg:     per100g(n, "folates") * 1e6,
	}
}

func per100g(n map[string]any, base string) float64 {
	if v, ok := parseFloatAny(n[base+"_100g"]); ok && v > 0 {
		return v
	}
	return 0
}

func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func parseServing(p offProduct) (float64, string) {
	if p.ServingQuantity > 0 {
		unit := strings.TrimSpace(p.ServingQuantityUnit)
		if unit == "" {
			unit = "g"
		}
		return p.ServingQuantity, unit
	}
	if parts := strings.Fields(strings.TrimSpace(p.ServingSize)); len(parts) >= 2 {
		if val, err := strconv.ParseFloat(strings.ReplaceAll(parts[0], ",", ""), 64); err == nil && val > 0 {
			return val, parts[1]
		}
	}
	return 100, "g"
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     float64        `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}
