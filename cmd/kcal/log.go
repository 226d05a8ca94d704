package kcal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/model"
	"github.com/saadjs/kcal-sync/internal/resolve"
	"github.com/saadjs/kcal-sync/internal/service"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Add an entry to today's diary",
}

var (
	logMeal       string
	logName       string
	logServing    float64
	logUnit       string
	logKcal       float64
	logProtein    float64
	logCarbs      float64
	logFat        float64
	logFiber      float64
	logAmount     float64
	logAmountUnit string
	logServings   float64
)

var logFoodCmd = &cobra.Command{
	Use:   "food",
	Short: "Log a food described on the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, err := model.ParseMeal(logMeal)
		if err != nil {
			return err
		}
		in := service.FoodInput{
			Name:        logName,
			ServingSize: logServing,
			ServingUnit: logUnit,
			Meal:        meal,
		}
		in.Calories = changedFloat(cmd, "kcal", logKcal)
		in.ProteinG = changedFloat(cmd, "protein", logProtein)
		in.CarbsG = changedFloat(cmd, "carbs", logCarbs)
		in.FatG = changedFloat(cmd, "fat", logFat)
		in.FiberG = changedFloat(cmd, "fiber", logFiber)
		e, err := service.FoodEntry(in)
		if err != nil {
			return err
		}
		return logEntry(cmd, e)
	},
}

var logProductCmd = &cobra.Command{
	Use:   "product <food-id>",
	Short: "Log a catalog food by product id or barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		return withLoggedSession(cmd, func(ctx context.Context, s *session) (model.Entry, error) {
			p := s.resolver.ResolveEntry(ctx, model.Entry{Name: id, FoodProductID: id})
			if p.Profile.Estimated {
				return model.Entry{}, fmt.Errorf("food %s not found in %s", id, strings.Join(s.cfg.GetFoodSources(), ", "))
			}
			grams, err := service.ToGrams(logAmount, logAmountUnit, 0)
			if err != nil {
				return model.Entry{}, err
			}
			return service.ProductEntry(p, grams, parsedMeal())
		})
	},
}

var logCustomCmd = &cobra.Command{
	Use:   "custom <custom-food-id>",
	Short: "Log servings of one of your custom foods",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("custom food id", args[0])
		if err != nil {
			return err
		}
		return withLoggedSession(cmd, func(ctx context.Context, s *session) (model.Entry, error) {
			cf, err := s.client.GetCustomFood(ctx, id)
			if err != nil {
				return model.Entry{}, err
			}
			p := s.resolver.ResolveEntry(ctx, model.Entry{Name: cf.Name, CustomFoodID: id})
			return service.ProductEntry(p, logServings, parsedMeal())
		})
	},
}

var logAlcoholCmd = &cobra.Command{
	Use:   "alcohol <beverage-id>",
	Short: "Log servings of an alcoholic beverage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("beverage id", args[0])
		if err != nil {
			return err
		}
		return withLoggedSession(cmd, func(ctx context.Context, s *session) (model.Entry, error) {
			p, ok := s.resolver.ResolveSearchResult(ctx, resolve.SearchResult{AlcoholBeverageID: id})
			if !ok {
				return model.Entry{}, fmt.Errorf("alcoholic beverage %d not found", id)
			}
			return service.ProductEntry(p, logServings, parsedMeal())
		})
	},
}

var logCaffeineCmd = &cobra.Command{
	Use:   "caffeine <product-id>",
	Short: "Log servings of a caffeinated product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("caffeine product id", args[0])
		if err != nil {
			return err
		}
		return withLoggedSession(cmd, func(ctx context.Context, s *session) (model.Entry, error) {
			p, ok := s.resolver.ResolveSearchResult(ctx, resolve.SearchResult{CaffeineProductID: id})
			if !ok {
				return model.Entry{}, fmt.Errorf("caffeine product %d not found", id)
			}
			return service.ProductEntry(p, logServings, parsedMeal())
		})
	},
}

var logWaterCmd = &cobra.Command{
	Use:   "water <ml>",
	Short: "Log water in millilitres",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
		if err != nil {
			return fmt.Errorf("invalid water amount %q", args[0])
		}
		e, err := service.WaterEntry(ml)
		if err != nil {
			return err
		}
		e.Meal = parsedMeal()
		return logEntry(cmd, e)
	},
}

func changedFloat(cmd *cobra.Command, flag string, v float64) *float64 {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}

func parsedMeal() model.Meal {
	meal, err := model.ParseMeal(logMeal)
	if err != nil {
		return model.MealSnack
	}
	return meal
}

func logEntry(cmd *cobra.Command, e model.Entry) error {
	return withLoggedSession(cmd, func(ctx context.Context, s *session) (model.Entry, error) {
		return e, nil
	})
}

// withLoggedSession loads today's record, builds an entry and logs it.
func withLoggedSession(cmd *cobra.Command, build func(context.Context, *session) (model.Entry, error)) error {
	if _, err := model.ParseMeal(logMeal); err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if err := s.controller.Load(ctx); err != nil {
			return err
		}
		e, err := build(ctx, s)
		if err != nil {
			return err
		}
		logged, err := s.diary.Log(ctx, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%s kcal) to %s\n", logged.Name, logged.Calories, logged.Meal)
		sum := s.controller.Summary()
		fmt.Fprintf(cmd.OutOrStdout(), "Today: %d / %d kcal\n", sum.CaloriesEaten, sum.CaloriesGoal)
		return nil
	})
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logFoodCmd, logProductCmd, logCustomCmd, logAlcoholCmd, logCaffeineCmd, logWaterCmd)
	logCmd.PersistentFlags().StringVar(&logMeal, "meal", "snack", "Meal: breakfast, lunch, dinner, snack")

	logFoodCmd.Flags().StringVar(&logName, "name", "", "Food name")
	logFoodCmd.Flags().Float64Var(&logServing, "serving", 0, "Serving size")
	logFoodCmd.Flags().StringVar(&logUnit, "unit", "g", "Serving unit")
	logFoodCmd.Flags().Float64Var(&logKcal, "kcal", 0, "Calories")
	logFoodCmd.Flags().Float64Var(&logProtein, "protein", 0, "Protein grams")
	logFoodCmd.Flags().Float64Var(&logCarbs, "carbs", 0, "Carb grams")
	logFoodCmd.Flags().Float64Var(&logFat, "fat", 0, "Fat grams")
	logFoodCmd.Flags().Float64Var(&logFiber, "fiber", 0, "Fiber grams")
	_ = logFoodCmd.MarkFlagRequired("name")

	logProductCmd.Flags().Float64Var(&logAmount, "amount", 100, "Amount eaten")
	logProductCmd.Flags().StringVar(&logAmountUnit, "unit", "g", "Unit of --amount: g, kg, oz, lb")
	for _, c := range []*cobra.Command{logCustomCmd, logAlcoholCmd, logCaffeineCmd} {
		c.Flags().Float64Var(&logServings, "servings", 1, "Number of servings")
	}
}
