package kcal

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the alcohol and caffeine catalogs",
}

var catalogKind string

var catalogWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Load the popular catalog categories and report what was cached",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			res, err := s.warmCatalog(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alcohol: %d products (%s)\n", res.Alcohol, strings.Join(s.cfg.GetAlcoholCategories(), ", "))
			fmt.Fprintf(cmd.OutOrStdout(), "Caffeine: %d products (%s)\n", res.Caffeine, strings.Join(s.cfg.GetCaffeineCategories(), ", "))
			if len(res.Failed) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed categories: %s\n", strings.Join(res.Failed, ", "))
			}
			return nil
		})
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached catalog products",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := strings.ToLower(strings.TrimSpace(catalogKind))
		if kind != "" && kind != "alcohol" && kind != "caffeine" {
			return fmt.Errorf("invalid --kind %q (expected alcohol or caffeine)", catalogKind)
		}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if _, err := s.warmCatalog(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "KIND\tID\tCATEGORY\tNAME\tBRAND")
			if kind == "" || kind == "alcohol" {
				for _, b := range s.catalog.AlcoholProducts() {
					fmt.Fprintf(cmd.OutOrStdout(), "alcohol\t%d\t%s\t%s\t%s\n", b.ID, b.Category, b.Name, b.Brand)
				}
			}
			if kind == "" || kind == "caffeine" {
				for _, p := range s.catalog.CaffeineProducts() {
					fmt.Fprintf(cmd.OutOrStdout(), "caffeine\t%d\t%s\t%s\t%s\n", p.ID, p.Category, p.Name, p.Brand)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogWarmCmd, catalogListCmd)
	catalogListCmd.Flags().StringVar(&catalogKind, "kind", "", "Only list alcohol or caffeine")
}
