package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// mealSplits carves the daily calorie goal into per-meal budgets. Order
// matters — the response lists meals in this order.
var mealSplits = []struct {
	Name  string
	Share float64
}{
	{"Breakfast", 0.30},
	{"Lunch", 0.40},
	{"Dinner", 0.30},
}

// workoutPlans is the fixed per-goal exercise list shown on the dashboard.
// Keys mirror goalFactors; the two maps must stay in step.
var workoutPlans = map[string][]string{
	"weight_loss": {"Brisk walk 25min", "Bodyweight squats 3x15", "Jumping jacks 3x20", "Plank 3x30s"},
	"muscle_gain": {"Pushups 4x12", "Squats 4x15", "Pull-ups/Rows 3x10", "Plank 3x45s"},
	"maintain":    {"Jog 20min", "Pushups 3x10", "Lunges 3x12 per leg", "Core circuit 10min"},
}

// recommendMeals maps a daily calorie goal onto ranked food suggestions for
// each meal. Pure once the index is built; an empty catalog yields three
// meals with empty item lists.
func recommendMeals(ix *foodIndex, calorieGoal float64, vegetarianOnly bool) []mealPlan {
	plans := make([]mealPlan, 0, len(mealSplits))
	for _, split := range mealSplits {
		mealCal := calorieGoal * split.Share
		plans = append(plans, mealPlan{
			MealName:    split.Name,
			CalorieGoal: mealCal,
			Items:       ix.recommendFor(mealCal, vegetarianOnly),
		})
	}
	return plans
}

// getRecommendations returns food suggestions per meal.
// GET /api/recommendations?calorie_goal=2400&vegetarian_only=true.
// Both params are optional: missing values fall back to the saved profile
// (its computed calorie goal and its vegetarian flag respectively).
func (h *Handler) getRecommendations(c *gin.Context) {
	userID := c.GetInt("user_id")

	var calorieGoal float64
	if s := c.Query("calorie_goal"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			apiError(c, http.StatusBadRequest, "calorie_goal must be a non-negative number")
			return
		}
		calorieGoal = v
	}

	vegetarianOnly := false
	vegSet := false
	if s := c.Query("vegetarian_only"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "vegetarian_only must be true or false")
			return
		}
		vegetarianOnly = v
		vegSet = true
	}

	// Fill gaps from the saved profile when one exists.
	if (calorieGoal == 0 || !vegSet) && h.db != nil {
		p, err := queryOne[userProfile](h.db, c,
			"SELECT * FROM user_profiles WHERE user_id = @userID",
			pgx.NamedArgs{"userID": userID})
		if err == nil {
			if !vegSet {
				vegetarianOnly = p.VegetarianOnly
			}
			if calorieGoal == 0 {
				targets, planErr := computePlan(planRequest{
					Age: p.Age, WeightKG: p.WeightKG, HeightM: p.HeightM,
					Gender: p.Gender, Activity: p.Activity, Goal: p.Goal,
					TargetWeightKG: p.TargetWeightKG,
				})
				if planErr == nil {
					calorieGoal = targets.CalorieGoal
				}
			}
		}
	}
	if calorieGoal == 0 {
		apiError(c, http.StatusBadRequest, "calorie_goal is required until a profile is saved")
		return
	}

	c.JSON(http.StatusOK, recommendMeals(h.catalog, calorieGoal, vegetarianOnly))
}

// getWorkoutPlan returns the fixed exercise list for a goal.
// GET /api/workout-plan?goal=weight_loss. Falls back to the saved profile's
// goal when the param is omitted.
func (h *Handler) getWorkoutPlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	goal := c.Query("goal")
	if goal == "" && h.db != nil {
		p, err := queryOne[userProfile](h.db, c,
			"SELECT * FROM user_profiles WHERE user_id = @userID",
			pgx.NamedArgs{"userID": userID})
		if err == nil {
			goal = p.Goal
		}
	}

	plan, ok := workoutPlans[goal]
	if !ok {
		apiError(c, http.StatusBadRequest, "goal must be one of: weight_loss, muscle_gain, maintain")
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal, "exercises": plan})
}
