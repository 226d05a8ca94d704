package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DailyLog is the server's record of one user's calendar day.
type DailyLog struct {
	ID             int64
	User           string
	Date           string
	Calories       int
	CaloriesGoal   int
	CaloriesBurned int
	CarbsG         float64
	CarbsGoalG     float64
	ProteinG       float64
	ProteinGoalG   float64
	FatG           float64
	FatGoalG       float64
	FiberG         float64
	IronMg         float64
	CalciumMg      float64
	PotassiumMg    float64
	VitaminAUg     float64
	VitaminB12Ug   float64
	FolateUg       float64
	VitaminCMg     float64
	AlcoholG       float64
	StandardDrinks float64
	CaffeineMg     float64
	WaterMl        float64
	WaterGoalMl    float64
}

type dailyLogPayload struct {
	ID             int64     `json:"id"`
	User           string    `json:"user"`
	Date           string    `json:"date"`
	TotalCalories  flexFloat `json:"total_calories"`
	CalorieGoal    flexFloat `json:"calorie_goal"`
	CaloriesBurned flexFloat `json:"calories_burned"`
	TotalCarbs     flexFloat `json:"total_carbs"`
	CarbsGoal      flexFloat `json:"carbs_goal"`
	TotalProtein   flexFloat `json:"total_protein"`
	ProteinGoal    flexFloat `json:"protein_goal"`
	TotalFat       flexFloat `json:"total_fat"`
	FatGoal        flexFloat `json:"fat_goal"`
	TotalFiber     flexFloat `json:"total_fiber"`
	TotalIron      flexFloat `json:"total_iron"`
	TotalCalcium   flexFloat `json:"total_calcium"`
	TotalPotassium flexFloat `json:"total_potassium"`
	TotalVitaminA  flexFloat `json:"total_vitamin_a"`
	TotalB12       flexFloat `json:"total_vitamin_b12"`
	TotalFolate    flexFloat `json:"total_folate"`
	TotalVitaminC  flexFloat `json:"total_vitamin_c"`
	AlcoholGrams   flexFloat `json:"total_alcohol_grams"`
	StandardDrinks flexFloat `json:"total_standard_drinks"`
	CaffeineMg     flexFloat `json:"total_caffeine_mg"`
	WaterIntakeMl  flexFloat `json:"water_intake_ml"`
	WaterGoalMl    flexFloat `json:"water_goal_ml"`
}

func (p dailyLogPayload) toDailyLog() DailyLog {
	return DailyLog{
		ID:             p.ID,
		User:           p.User,
		Date:           p.Date,
		Calories:       int(float64(p.TotalCalories) + 0.5),
		CaloriesGoal:   int(float64(p.CalorieGoal) + 0.5),
		CaloriesBurned: int(float64(p.CaloriesBurned) + 0.5),
		CarbsG:         float64(p.TotalCarbs),
		CarbsGoalG:     float64(p.CarbsGoal),
		ProteinG:       float64(p.TotalProtein),
		ProteinGoalG:   float64(p.ProteinGoal),
		FatG:           float64(p.TotalFat),
		FatGoalG:       float64(p.FatGoal),
		FiberG:         float64(p.TotalFiber),
		IronMg:         float64(p.TotalIron),
		CalciumMg:      float64(p.TotalCalcium),
		PotassiumMg:    float64(p.TotalPotassium),
		VitaminAUg:     float64(p.TotalVitaminA),
		VitaminB12Ug:   float64(p.TotalB12),
		FolateUg:       float64(p.TotalFolate),
		VitaminCMg:     float64(p.TotalVitaminC),
		AlcoholG:       float64(p.AlcoholGrams),
		StandardDrinks: float64(p.StandardDrinks),
		CaffeineMg:     float64(p.CaffeineMg),
		WaterMl:        float64(p.WaterIntakeMl),
		WaterGoalMl:    float64(p.WaterGoalMl),
	}
}

// GetDailyLog fetches the record for (user, date). A missing record yields an
// error matching ErrNotFound.
func (c *Client) GetDailyLog(ctx context.Context, user, date string) (DailyLog, error) {
	const op = "get_daily_log"
	if err := validateUserDate(user, date); err != nil {
		return DailyLog{}, err
	}
	raw, err := c.do(ctx, op, http.MethodGet, dailyLogPath(user, date), nil, nil)
	if err != nil {
		return DailyLog{}, err
	}
	var p dailyLogPayload
	if err := decode(op, raw, &p); err != nil {
		return DailyLog{}, err
	}
	if p.ID <= 0 {
		return DailyLog{}, &Error{Kind: KindDecode, Op: op, Detail: "daily log without id"}
	}
	return p.toDailyLog(), nil
}

// CreateDailyLog creates the record for (user, date) with default totals.
func (c *Client) CreateDailyLog(ctx context.Context, user, date string) (DailyLog, error) {
	const op = "create_daily_log"
	if err := validateUserDate(user, date); err != nil {
		return DailyLog{}, err
	}
	raw, err := c.do(ctx, op, http.MethodPost, dailyLogPath(user, date), nil, map[string]string{"user": user, "date": date})
	if err != nil {
		return DailyLog{}, err
	}
	var p dailyLogPayload
	if err := decode(op, raw, &p); err != nil {
		return DailyLog{}, err
	}
	if p.ID <= 0 {
		return DailyLog{}, &Error{Kind: KindDecode, Op: op, Detail: "created daily log without id"}
	}
	return p.toDailyLog(), nil
}

func dailyLogPath(user, date string) string {
	return fmt.Sprintf("/daily-log/%s/%s/", url.PathEscape(user), url.PathEscape(date))
}

func validateUserDate(user, date string) error {
	if strings.TrimSpace(user) == "" {
		return fmt.Errorf("user is required")
	}
	if strings.TrimSpace(date) == "" {
		return fmt.Errorf("date is required")
	}
	return nil
}
