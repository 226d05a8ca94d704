package kcal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/model"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <entry-id>",
	Short: "Show the product a diary entry came from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.controller.Load(ctx); err != nil {
				return err
			}
			if err := s.controller.Refresh(ctx); err != nil {
				return err
			}
			var entry *model.Entry
			for _, e := range s.controller.Entries() {
				if e.ID == id {
					e := e
					entry = &e
					break
				}
			}
			if entry == nil {
				return fmt.Errorf("entry %d is not in today's diary", id)
			}
			if entry.Source() == model.SourceAlcohol || entry.Source() == model.SourceCaffeine {
				if _, err := s.warmCatalog(ctx); err != nil {
					return err
				}
			}
			p := s.resolver.ResolveEntry(ctx, *entry)
			if resolveJSON {
				b, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal resolved product json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		})
	},
}

func printProduct(w io.Writer, p model.ResolvedProduct) {
	fmt.Fprintf(w, "Kind: %s\n", p.Kind)
	fmt.Fprintf(w, "Product: %s\n", p.Name())
	switch {
	case p.Alcohol != nil:
		fmt.Fprintf(w, "ID: %d\nBrand: %s\nCategory: %s\nABV: %.1f%%\n", p.Alcohol.ID, p.Alcohol.Brand, p.Alcohol.Category, p.Alcohol.ABV)
	case p.Caffeine != nil:
		fmt.Fprintf(w, "ID: %d\nBrand: %s\nCategory: %s\n", p.Caffeine.ID, p.Caffeine.Brand, p.Caffeine.Category)
	case p.Food != nil:
		if p.Food.CustomFoodID > 0 {
			fmt.Fprintf(w, "Custom food: %d\n", p.Food.CustomFoodID)
		} else {
			fmt.Fprintf(w, "ID: %s\n", p.Food.ID)
		}
		fmt.Fprintf(w, "Brand: %s\n", p.Food.Brand)
	}
	prof := p.Profile
	fmt.Fprintf(w, "Nutrition (%s): %.1f kcal | P %.1fg | C %.1fg | F %.1fg | Fiber %.1fg\n",
		prof.BasisLabel(), prof.Calories, prof.ProteinG, prof.CarbsG, prof.FatG, prof.FiberG)
	if prof.AlcoholG > 0 || prof.StandardDrinks > 0 {
		fmt.Fprintf(w, "Alcohol: %.1fg (%.2f standard drinks)\n", prof.AlcoholG, prof.StandardDrinks)
	}
	if prof.CaffeineMg > 0 {
		fmt.Fprintf(w, "Caffeine: %.0f mg\n", prof.CaffeineMg)
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output JSON")
}
