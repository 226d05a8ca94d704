package kcal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/resolve"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-fetch today's record and entries and print the summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.controller.Load(ctx); err != nil {
				return err
			}
			if err := s.controller.Refresh(ctx); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s.controller.Summary())
			fmt.Fprintf(cmd.OutOrStdout(), "Entries: %d\n", len(s.controller.Entries()))
			return nil
		})
	},
}

var entriesJSON bool

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List today's diary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.controller.Load(ctx); err != nil {
				return err
			}
			if err := s.controller.Refresh(ctx); err != nil {
				return err
			}
			entries := s.controller.Entries()
			if entriesJSON {
				b, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal entries json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries today")
				return nil
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var (
	matchName  string
	matchBrand string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a product name against the alcohol and caffeine catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if _, err := s.warmCatalog(ctx); err != nil {
				return err
			}
			p, ok := s.resolver.ResolveSearchResult(ctx, resolve.SearchResult{Name: matchName, Brand: matchBrand})
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No catalog match; treat as generic food")
				return nil
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd, entriesCmd, matchCmd)
	entriesCmd.Flags().BoolVar(&entriesJSON, "json", false, "Output JSON")
	matchCmd.Flags().StringVar(&matchName, "name", "", "Product name")
	matchCmd.Flags().StringVar(&matchBrand, "brand", "", "Product brand")
	_ = matchCmd.MarkFlagRequired("name")
}
