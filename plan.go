package main

import (
	"errors"
	"fmt"
	"math"
)

// errInvalidInput marks calculator failures caused by bad caller input.
// Handlers map it to 400; anything else would be a bug, not a user error.
var errInvalidInput = errors.New("invalid input")

// activityFactors maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used
// for input validation in computePlan and the plan handler.
var activityFactors = map[string]float64{
	"sedentary": 1.2,
	"moderate":  1.55,
	"active":    1.9,
}

// goalFactors scales TDEE into the daily calorie goal per fitness goal.
var goalFactors = map[string]float64{
	"weight_loss": 0.8,
	"muscle_gain": 1.1,
	"maintain":    1.0,
}

// macroSplit is the fraction of the calorie goal assigned to each macro.
// The three fractions sum to 1 for every goal.
type macroSplit struct {
	Protein float64
	Carb    float64
	Fat     float64
}

// macroSplits is the fixed per-goal macro table. Protein and carbs convert at
// 4 kcal/g, fat at 9 kcal/g.
var macroSplits = map[string]macroSplit{
	"weight_loss": {Protein: 0.25, Carb: 0.50, Fat: 0.25},
	"muscle_gain": {Protein: 0.30, Carb: 0.50, Fat: 0.20},
	"maintain":    {Protein: 0.20, Carb: 0.55, Fat: 0.25},
}

// Weekly weight-change pace used for the goal timeline. Fixed constants, not
// user-configurable: cutting supports a faster pace than gaining or holding.
const (
	weeklyRateLossKG  = 0.5
	weeklyRateOtherKG = 0.25
)

// Energy density constants for converting calories to macro grams.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarb    = 4
	kcalPerGramFat     = 9
)

// computePlan turns a profile plus today's intake into the full set of derived
// targets: BMI, BMR (Mifflin-St Jeor), TDEE, calorie goal, macro grams,
// calories remaining, and the weeks-to-goal estimate. Pure and deterministic —
// no clock, no store, no side effects.
//
// Unknown gender/activity/goal values and non-positive age, weight, target
// weight, or negative intake are rejected with errInvalidInput. A non-positive
// height is not an error: BMI and BMR are reported as 0 and everything derived
// from BMR follows to 0.
func computePlan(req planRequest) (planTargets, error) {
	if req.Age <= 0 {
		return planTargets{}, fmt.Errorf("%w: age must be positive", errInvalidInput)
	}
	if req.WeightKG <= 0 {
		return planTargets{}, fmt.Errorf("%w: weight_kg must be positive", errInvalidInput)
	}
	if req.TargetWeightKG <= 0 {
		return planTargets{}, fmt.Errorf("%w: target_weight_kg must be positive", errInvalidInput)
	}
	if req.CaloriesEatenToday < 0 {
		return planTargets{}, fmt.Errorf("%w: calories_eaten_today must not be negative", errInvalidInput)
	}
	if req.Gender != "male" && req.Gender != "female" {
		return planTargets{}, fmt.Errorf("%w: gender must be male or female", errInvalidInput)
	}
	activityFactor, ok := activityFactors[req.Activity]
	if !ok {
		return planTargets{}, fmt.Errorf("%w: activity must be one of: sedentary, moderate, active", errInvalidInput)
	}
	goalFactor, ok := goalFactors[req.Goal]
	if !ok {
		return planTargets{}, fmt.Errorf("%w: goal must be one of: weight_loss, muscle_gain, maintain", errInvalidInput)
	}
	split := macroSplits[req.Goal]

	var t planTargets

	// BMI and BMR zero-guard on height: report 0 instead of failing, so a
	// profile mid-setup still gets a (degenerate) plan back.
	if req.HeightM > 0 {
		t.BMI = req.WeightKG / (req.HeightM * req.HeightM)
		heightCM := req.HeightM * 100
		t.BMR = 10*req.WeightKG + 6.25*heightCM - 5*float64(req.Age)
		if req.Gender == "male" {
			t.BMR += 5
		} else {
			t.BMR -= 161
		}
	}
	t.BMICategory = bmiCategory(t.BMI)

	t.TDEE = t.BMR * activityFactor
	t.CalorieGoal = t.TDEE * goalFactor

	t.CaloriesRemaining = math.Max(0, t.CalorieGoal-req.CaloriesEatenToday)
	if t.CalorieGoal > 0 {
		t.CalorieProgress = math.Min(req.CaloriesEatenToday/t.CalorieGoal, 1.0)
	}

	weeklyRate := weeklyRateOtherKG
	if req.Goal == "weight_loss" {
		weeklyRate = weeklyRateLossKG
	}
	t.WeeksToGoal = math.Abs(req.WeightKG-req.TargetWeightKG) / weeklyRate

	t.ProteinG = t.CalorieGoal * split.Protein / kcalPerGramProtein
	t.CarbG = t.CalorieGoal * split.Carb / kcalPerGramCarb
	t.FatG = t.CalorieGoal * split.Fat / kcalPerGramFat

	return t, nil
}

// bmiCategory labels a BMI value for the dashboard status chip. A zero BMI
// (height zero-guard) gets an explicit "unknown" rather than "underweight".
func bmiCategory(bmi float64) string {
	switch {
	case bmi <= 0:
		return "unknown"
	case bmi <= 18.5:
		return "underweight"
	case bmi <= 25.0:
		return "normal"
	default:
		return "overweight"
	}
}
