package kcal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/model"
)

var (
	todayJSON    bool
	todayEntries bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's totals and goal progress from the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if err := s.controller.Load(ctx); err != nil {
				return err
			}
			if todayEntries {
				if err := s.controller.Refresh(ctx); err != nil {
					return err
				}
			}
			summary := s.controller.Summary()
			if todayJSON {
				out := struct {
					Summary model.DailySummary `json:"summary"`
					Entries []model.Entry      `json:"entries,omitempty"`
				}{Summary: summary}
				if todayEntries {
					out.Entries = s.controller.Entries()
				}
				b, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal today json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printSummary(cmd.OutOrStdout(), summary)
			if todayEntries {
				printEntries(cmd.OutOrStdout(), s.controller.Entries())
			}
			return nil
		})
	},
}

func printSummary(w io.Writer, s model.DailySummary) {
	fmt.Fprintf(w, "Date: %s", s.Date)
	if s.Stale {
		fmt.Fprint(w, " (stale)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Calories: %d / %d kcal (burned %d)\n", s.CaloriesEaten, s.CaloriesGoal, s.CaloriesBurned)
	fmt.Fprintf(w, "Macros: P %.1f/%.1fg | C %.1f/%.1fg | F %.1f/%.1fg | Fiber %.1fg\n",
		s.ProteinG, s.ProteinGoalG, s.CarbsG, s.CarbsGoalG, s.FatG, s.FatGoalG, s.FiberG)
	fmt.Fprintf(w, "Water: %.0f / %.0f ml\n", s.WaterMl, s.WaterGoalMl)
	fmt.Fprintf(w, "Alcohol: %.1fg (%.1f standard drinks)\n", s.AlcoholG, s.StandardDrinks)
	fmt.Fprintf(w, "Caffeine: %.0f mg\n", s.CaffeineMg)
	fmt.Fprintf(w, "Micros: Fe %.1fmg | Ca %.0fmg | K %.0fmg | A %.0fug | B12 %.1fug | Folate %.0fug | C %.1fmg\n",
		s.IronMg, s.CalciumMg, s.PotassiumMg, s.VitaminAUg, s.VitaminB12Ug, s.FolateUg, s.VitaminCMg)
}

func printEntries(w io.Writer, entries []model.Entry) {
	fmt.Fprintln(w, "ID\tMEAL\tNAME\tSERVING\tKCAL\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f %s\t%s\t%s\n", e.ID, e.Meal, e.Name, e.ServingSize, e.ServingUnit, e.Calories, e.Source())
	}
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output JSON")
	todayCmd.Flags().BoolVar(&todayEntries, "entries", false, "Also fetch and list today's entries")
}
