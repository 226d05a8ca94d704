package kcal

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/store"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage local goal overrides applied on top of the backend goals",
}

var goalSetCmd = &cobra.Command{
	Use:   "set <nutrient> <value>",
	Short: "Override a daily goal (calories, carbs_g, protein_g, fat_g, water_ml)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid goal value %q", args[1])
		}
		return withDB(func(sqldb *sql.DB) error {
			goals := &store.Goals{DB: sqldb}
			if err := goals.SetGoal(cmd.Context(), args[0], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s goal override to %g\n", args[0], value)
			return nil
		})
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show goal overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			goals := &store.Goals{DB: sqldb}
			o, err := goals.GoalOverrides(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "NUTRIENT\tOVERRIDE")
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", store.GoalCalories, o.Calories)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", store.GoalCarbsG, o.CarbsG)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", store.GoalProteinG, o.ProteinG)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", store.GoalFatG, o.FatG)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", store.GoalWaterMl, o.WaterMl)
			return nil
		})
	},
}

var goalClearCmd = &cobra.Command{
	Use:   "clear [nutrient]",
	Short: "Remove one goal override, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nutrient := ""
		if len(args) == 1 {
			nutrient = args[0]
		}
		return withDB(func(sqldb *sql.DB) error {
			goals := &store.Goals{DB: sqldb}
			if err := goals.ClearGoal(cmd.Context(), nutrient); err != nil {
				return err
			}
			if nutrient == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all goal overrides")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s goal override\n", nutrient)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd, goalShowCmd, goalClearCmd)
}
