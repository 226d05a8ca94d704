package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/kcal-sync/internal/model"
)

// Goal override nutrient keys.
const (
	GoalCalories = "calories"
	GoalCarbsG   = "carbs_g"
	GoalProteinG = "protein_g"
	GoalFatG     = "fat_g"
	GoalWaterMl  = "water_ml"
)

// GoalNutrients lists the keys accepted by SetGoal.
var GoalNutrients = []string{GoalCalories, GoalCarbsG, GoalProteinG, GoalFatG, GoalWaterMl}

type Goals struct {
	DB *sql.DB
}

func normalizeGoal(nutrient string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(nutrient))
	switch key {
	case "protein":
		key = GoalProteinG
	case "carbs":
		key = GoalCarbsG
	case "fat":
		key = GoalFatG
	case "water":
		key = GoalWaterMl
	}
	for _, n := range GoalNutrients {
		if n == key {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown goal nutrient %q (expected one of %s)", nutrient, strings.Join(GoalNutrients, ", "))
}

func (g *Goals) SetGoal(ctx context.Context, nutrient string, value float64) error {
	key, err := normalizeGoal(nutrient)
	if err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("%s goal must be >= 0", key)
	}
	_, err = g.DB.ExecContext(ctx, `
INSERT INTO goal_overrides(nutrient, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(nutrient) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set %s goal: %w", key, err)
	}
	return nil
}

// ClearGoal removes one override, or all of them when nutrient is empty.
func (g *Goals) ClearGoal(ctx context.Context, nutrient string) error {
	if strings.TrimSpace(nutrient) == "" {
		if _, err := g.DB.ExecContext(ctx, `DELETE FROM goal_overrides`); err != nil {
			return fmt.Errorf("clear goal overrides: %w", err)
		}
		return nil
	}
	key, err := normalizeGoal(nutrient)
	if err != nil {
		return err
	}
	if _, err := g.DB.ExecContext(ctx, `DELETE FROM goal_overrides WHERE nutrient = ?`, key); err != nil {
		return fmt.Errorf("clear %s goal: %w", key, err)
	}
	return nil
}

// GoalOverrides returns every stored override; missing ones are untracked.
func (g *Goals) GoalOverrides(ctx context.Context) (model.GoalOverrides, error) {
	rows, err := g.DB.QueryContext(ctx, `SELECT nutrient, value FROM goal_overrides`)
	if err != nil {
		return model.GoalOverrides{}, fmt.Errorf("list goal overrides: %w", err)
	}
	defer rows.Close()
	var out model.GoalOverrides
	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return model.GoalOverrides{}, fmt.Errorf("scan goal override: %w", err)
		}
		switch key {
		case GoalCalories:
			out.Calories = model.Track(value)
		case GoalCarbsG:
			out.CarbsG = model.Track(value)
		case GoalProteinG:
			out.ProteinG = model.Track(value)
		case GoalFatG:
			out.FatG = model.Track(value)
		case GoalWaterMl:
			out.WaterMl = model.Track(value)
		}
	}
	if err := rows.Err(); err != nil {
		return model.GoalOverrides{}, fmt.Errorf("iterate goal overrides: %w", err)
	}
	return out, nil
}
