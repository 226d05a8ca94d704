package kcal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/model"
	"github.com/saadjs/kcal-sync/internal/provider/openfoodfacts"
	"github.com/saadjs/kcal-sync/internal/resolve"
)

var (
	searchLimit int
	searchJSON  bool
)

type searchRow struct {
	Query   resolve.SearchResult  `json:"query"`
	Matched bool                  `json:"matched"`
	Product model.ResolvedProduct `json:"product"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Open Food Facts and route hits to the drink and caffeine catalogs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withSession(cmd, func(ctx context.Context, s *session) error {
			off := &openfoodfacts.Client{
				BaseURL:    s.cfg.OpenFoodFactsURL,
				HTTPClient: &http.Client{Timeout: s.cfg.GetTimeout()},
			}
			hits, err := off.SearchProducts(ctx, query, searchLimit)
			if err != nil {
				return err
			}
			if _, err := s.warmCatalog(ctx); err != nil {
				return err
			}

			rows := make([]searchRow, 0, len(hits))
			for _, h := range hits {
				res := resolve.SearchResult{Name: h.Name, Brand: h.Brand, FoodProductID: h.Barcode}
				p, ok := s.resolver.ResolveSearchResult(ctx, res)
				if !ok {
					p = resolve.OpenFoodFactsProduct(h)
				}
				rows = append(rows, searchRow{Query: res, Matched: ok, Product: p})
			}

			if searchJSON {
				b, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal search json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "KIND\tID\tNAME\tBRAND\tKCAL\tBASIS")
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%.1f\t%s\n",
					r.Product.Kind, productID(r.Product), r.Product.Name(), productBrand(r.Product), r.Product.Profile.Calories, r.Product.Profile.BasisLabel())
			}
			return nil
		})
	},
}

func productID(p model.ResolvedProduct) string {
	switch {
	case p.Alcohol != nil:
		return fmt.Sprintf("%d", p.Alcohol.ID)
	case p.Caffeine != nil:
		return fmt.Sprintf("%d", p.Caffeine.ID)
	case p.Food != nil:
		return p.Food.ID
	}
	return ""
}

func productBrand(p model.ResolvedProduct) string {
	switch {
	case p.Alcohol != nil:
		return p.Alcohol.Brand
	case p.Caffeine != nil:
		return p.Caffeine.Brand
	case p.Food != nil:
		return p.Food.Brand
	}
	return ""
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output JSON")
}
