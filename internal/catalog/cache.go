// Package catalog holds the session-scoped lists of alcohol beverages and
// caffeine products used for specialized matching.
package catalog

import (
	"sync"

	"github.com/saadjs/kcal-sync/internal/metrics"
	"github.com/saadjs/kcal-sync/internal/model"
)

// Cache is safe for concurrent readers and writers. Updates replace a list
// wholesale; the last writer wins.
type Cache struct {
	mu       sync.RWMutex
	alcohol  []model.AlcoholBeverage
	caffeine []model.CaffeineProduct
}

func New() *Cache {
	return &Cache{}
}

func (c *Cache) UpdateAlcoholProducts(list []model.AlcoholBeverage) {
	next := append([]model.AlcoholBeverage(nil), list...)
	c.mu.Lock()
	c.alcohol = next
	c.mu.Unlock()
	metrics.SetCatalogSize("alcohol", len(next))
}

func (c *Cache) UpdateCaffeineProducts(list []model.CaffeineProduct) {
	next := append([]model.CaffeineProduct(nil), list...)
	c.mu.Lock()
	c.caffeine = next
	c.mu.Unlock()
	metrics.SetCatalogSize("caffeine", len(next))
}

// AlcoholProducts returns a snapshot of the alcohol list.
func (c *Cache) AlcoholProducts() []model.AlcoholBeverage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.AlcoholBeverage(nil), c.alcohol...)
}

func (c *Cache) CaffeineProducts() []model.CaffeineProduct {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.CaffeineProduct(nil), c.caffeine...)
}

func (c *Cache) FindAlcohol(id int64) (model.AlcoholBeverage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.alcohol {
		if b.ID == id {
			return b, true
		}
	}
	return model.AlcoholBeverage{}, false
}

func (c *Cache) FindCaffeine(id int64) (model.CaffeineProduct, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.caffeine {
		if p.ID == id {
			return p, true
		}
	}
	return model.CaffeineProduct{}, false
}

// Len reports the sizes of both lists.
func (c *Cache) Len() (alcohol, caffeine int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.alcohol), len(c.caffeine)
}
