package main

import "time"

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	Name      string     `json:"name" db:"name"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userProfile maps to user_profiles. One row per user, overwritten on every
// planning request — the plan itself is never stored, only its inputs.
type userProfile struct {
	UserID         int      `json:"user_id"          db:"user_id"`
	Age            int      `json:"age"              db:"age"`
	WeightKG       float64  `json:"weight_kg"        db:"weight_kg"`
	HeightM        float64  `json:"height_m"         db:"height_m"`
	Gender         string   `json:"gender"           db:"gender"`
	Activity       string   `json:"activity"         db:"activity"`
	Goal           string   `json:"goal"             db:"goal"`
	TargetWeightKG float64  `json:"target_weight_kg" db:"target_weight_kg"`
	VegetarianOnly bool     `json:"vegetarian_only"  db:"vegetarian_only"`
	Allergies      []string `json:"allergies"        db:"allergies"`
}

// foodItem is one row of the static food catalog. Loaded once at startup;
// the recommendation index never sees the catalog change at runtime.
type foodItem struct {
	ID       int     `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Calories float64 `json:"calories" db:"calories"`
	Protein  float64 `json:"protein" db:"protein"`
	Fat      float64 `json:"fat" db:"fat"`
	Carbs    float64 `json:"carbs" db:"carbs"`
}

// planTargets is the full output of the metrics calculator. Derived, never
// persisted — recomputed from the profile and today's intake on every request.
type planTargets struct {
	BMI               float64 `json:"bmi"`
	BMICategory       string  `json:"bmi_category"`
	BMR               float64 `json:"bmr"`
	TDEE              float64 `json:"tdee"`
	CalorieGoal       float64 `json:"calorie_goal"`
	CaloriesRemaining float64 `json:"calories_remaining"`
	CalorieProgress   float64 `json:"calorie_progress"`
	WeeksToGoal       float64 `json:"weeks_to_goal"`
	ProteinG          float64 `json:"protein_g"`
	CarbG             float64 `json:"carb_g"`
	FatG              float64 `json:"fat_g"`
}

// ledgerEntry is one row of any of the three progress logs. Exactly one
// payload group is populated, selected by Kind; the others stay nil and are
// omitted from JSON. Entries are append-only — no update, no delete.
type ledgerEntry struct {
	ID     int64      `json:"id" db:"id"`
	UserID int        `json:"user_id" db:"user_id"`
	Kind   ledgerKind `json:"kind" db:"-"`
	At     time.Time  `json:"at" db:"at"`

	// weight payload
	WeightKG *float64 `json:"weight_kg,omitempty" db:"weight_kg"`
	BMI      *float64 `json:"bmi,omitempty" db:"bmi"`

	// water payload
	WaterML *int `json:"water_ml,omitempty" db:"water_ml"`

	// workout payload
	Exercise    *string `json:"exercise,omitempty" db:"exercise"`
	DurationSec *int    `json:"duration_sec,omitempty" db:"duration_sec"`
}

// gamificationState maps to gamification_state. StreakDays and UserLevel only
// ever go up; there is no streak-broken transition (see gamification.go).
type gamificationState struct {
	UserID          int `json:"user_id" db:"user_id"`
	StreakDays      int `json:"streak_days" db:"streak_days"`
	UserLevel       int `json:"user_level" db:"user_level"`
	DailyLoginCount int `json:"daily_login_count" db:"daily_login_count"`
}

// dailyChecklist maps to daily_checklist — the three per-day habit flags from
// the dashboard. UNIQUE(user_id, date) makes repeat saves upsert in place.
type dailyChecklist struct {
	UserID      int    `json:"user_id" db:"user_id"`
	Date        string `json:"date" db:"date"`
	WorkoutDone bool   `json:"workout_done" db:"workout_done"`
	DietDone    bool   `json:"diet_done" db:"diet_done"`
	WaterDone   bool   `json:"water_done" db:"water_done"`
}

/* ─── Request / response shapes ──────────────────────────────────────── */

// planRequest is the request body for POST /api/plan: the full profile plus
// today's logged intake. The profile part is persisted for the user as a side
// effect; the computed targets are returned, not stored.
type planRequest struct {
	Age                int      `json:"age"`
	WeightKG           float64  `json:"weight_kg"`
	HeightM            float64  `json:"height_m"`
	Gender             string   `json:"gender"`
	Activity           string   `json:"activity"`
	Goal               string   `json:"goal"`
	TargetWeightKG     float64  `json:"target_weight_kg"`
	VegetarianOnly     bool     `json:"vegetarian_only"`
	Allergies          []string `json:"allergies"`
	CaloriesEatenToday float64  `json:"calories_eaten_today"`
}

// recommendedFood is one suggestion row: the fields the dashboard shows.
type recommendedFood struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
}

// mealPlan is one meal's worth of suggestions in the recommendations response.
// Items may hold fewer than three entries after the vegetarian filter.
type mealPlan struct {
	MealName    string            `json:"meal_name"`
	CalorieGoal float64           `json:"calorie_goal"`
	Items       []recommendedFood `json:"items"`
}
