package kcal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/store"
)

var recentJSON bool

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently picked foods, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := (&store.Recents{DB: sqldb}).List(cmd.Context())
			if err != nil {
				return err
			}
			if recentJSON {
				b, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal recent json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PRODUCT\tNAME\tBRAND\tSELECTED")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", it.ProductID, it.Name, it.Brand, it.SelectedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var recentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recent foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := (&store.Recents{DB: sqldb}).Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared recent foods")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.AddCommand(recentClearCmd)
	recentCmd.Flags().BoolVar(&recentJSON, "json", false, "Output JSON")
}
