package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/saadjs/kcal-sync/internal/model"
)

// maxPages bounds a single category walk in case a server keeps returning a
// next link.
const maxPages = 50

// Source lists one page of a category. more reports whether another page
// follows. *backend.Client satisfies it.
type Source interface {
	ListAlcoholCategory(ctx context.Context, category string, page int) ([]model.AlcoholBeverage, bool, error)
	ListCaffeineCategory(ctx context.Context, category string, page int) ([]model.CaffeineProduct, bool, error)
}

// Categories names the "popular" categories to load for each catalog.
type Categories struct {
	Alcohol  []string
	Caffeine []string
}

// Result summarizes one Populate run.
type Result struct {
	Alcohol  int
	Caffeine int
	// Failed lists categories that were skipped, as "alcohol/<name>" or
	// "caffeine/<name>".
	Failed []string
}

// Populate fetches every page of every category concurrently and replaces
// both lists with the results concatenated in category order. A failing
// category is logged and skipped. When ctx is cancelled the cache is left as
// it was and ctx.Err() is returned.
func Populate(ctx context.Context, cache *Cache, src Source, cats Categories, log logrus.FieldLogger) (Result, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	alcohol := make([][]model.AlcoholBeverage, len(cats.Alcohol))
	alcoholErr := make([]error, len(cats.Alcohol))
	caffeine := make([][]model.CaffeineProduct, len(cats.Caffeine))
	caffeineErr := make([]error, len(cats.Caffeine))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range cats.Alcohol {
		i, name := i, name
		g.Go(func() error {
			alcohol[i], alcoholErr[i] = walk(gctx, name, src.ListAlcoholCategory)
			return nil
		})
	}
	for i, name := range cats.Caffeine {
		i, name := i, name
		g.Go(func() error {
			caffeine[i], caffeineErr[i] = walk(gctx, name, src.ListCaffeineCategory)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var res Result
	var nextAlcohol []model.AlcoholBeverage
	for i, name := range cats.Alcohol {
		if alcoholErr[i] != nil {
			log.WithError(alcoholErr[i]).WithField("category", name).Warn("skip alcohol category")
			res.Failed = append(res.Failed, "alcohol/"+name)
			continue
		}
		nextAlcohol = append(nextAlcohol, alcohol[i]...)
	}
	var nextCaffeine []model.CaffeineProduct
	for i, name := range cats.Caffeine {
		if caffeineErr[i] != nil {
			log.WithError(caffeineErr[i]).WithField("category", name).Warn("skip caffeine category")
			res.Failed = append(res.Failed, "caffeine/"+name)
			continue
		}
		nextCaffeine = append(nextCaffeine, caffeine[i]...)
	}

	cache.UpdateAlcoholProducts(nextAlcohol)
	cache.UpdateCaffeineProducts(nextCaffeine)
	res.Alcohol = len(nextAlcohol)
	res.Caffeine = len(nextCaffeine)
	log.WithFields(logrus.Fields{
		"alcohol":  res.Alcohol,
		"caffeine": res.Caffeine,
		"failed":   len(res.Failed),
	}).Info("catalog populated")
	return res, nil
}

func walk[T any](ctx context.Context, category string, list func(context.Context, string, int) ([]T, bool, error)) ([]T, error) {
	var out []T
	for page := 1; page <= maxPages; page++ {
		items, more, err := list(ctx, category, page)
		if err != nil {
			return nil, fmt.Errorf("list %s page %d: %w", category, page, err)
		}
		out = append(out, items...)
		if !more {
			return out, nil
		}
	}
	return out, nil
}
