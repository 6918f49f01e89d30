package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// levelUpInterval is the streak length that earns one level. The level only
// ever goes up: one level per complete multiple of 7 streak days.
const levelUpInterval = 7

// Achievement thresholds from the dashboard's fixed rule table.
const (
	streakAchievementDays = 7
	waterMasterML         = 3000
	workoutBeastSec       = 3600
	gamificationProLevel  = 3
)

// Achievement names as shown to the UI.
const (
	achSevenDayStreak  = "7-Day Streak"
	achWaterMaster     = "Water Master"
	achWorkoutBeast    = "Workout Beast"
	achPerfectWeek     = "Perfect Week"
	achGamificationPro = "Gamification Pro"
)

// freshState is the state of a user who has never checked in. Level starts at
// 1, not 0 — the counters start empty but everyone is at least level 1.
func freshState(userID int) gamificationState {
	return gamificationState{UserID: userID, UserLevel: 1}
}

// applyCheckIn is the single mutating transition of the state machine: one
// more login, one more streak day, and a level-up whenever the streak
// completes another multiple of 7. There is deliberately no streak-broken
// transition — the streak is a pure check-in counter, not calendar-aware.
func applyCheckIn(s gamificationState) gamificationState {
	s.DailyLoginCount++
	s.StreakDays++
	if s.StreakDays%levelUpInterval == 0 {
		s.UserLevel++
	}
	return s
}

// evaluateAchievements derives the unlock map from current facts. Pure and
// recomputed on every request; nothing here is persisted. Unlock is monotonic
// within the facts themselves — counters never decrease, so a true can only
// flip back to false if the day rolls over the water/workout totals.
func evaluateAchievements(s gamificationState, waterTodayML, workoutTodaySec float64, check dailyChecklist) map[string]bool {
	return map[string]bool{
		achSevenDayStreak:  s.StreakDays >= streakAchievementDays,
		achWaterMaster:     waterTodayML >= waterMasterML,
		achWorkoutBeast:    workoutTodaySec >= workoutBeastSec,
		achPerfectWeek:     check.WorkoutDone && check.DietDone && check.WaterDone,
		achGamificationPro: s.UserLevel >= gamificationProLevel,
	}
}

/* ─── State store ────────────────────────────────────────────────────── */

// gamificationStore persists per-user counters. CheckIn must apply the
// applyCheckIn transition atomically with respect to concurrent check-ins;
// State returns freshState for users who have never checked in.
type gamificationStore interface {
	CheckIn(ctx context.Context, userID int) (gamificationState, error)
	State(ctx context.Context, userID int) (gamificationState, error)
}

// postgresGamification keeps one row per user and performs the whole
// transition in a single upsert, so concurrent check-ins each count.
type postgresGamification struct {
	pool *pgxpool.Pool
}

func newPostgresGamification(pool *pgxpool.Pool) *postgresGamification {
	return &postgresGamification{pool: pool}
}

func (g *postgresGamification) CheckIn(ctx context.Context, userID int) (gamificationState, error) {
	// The VALUES row is freshState after one check-in; the conflict branch is
	// applyCheckIn expressed in SQL. Both must stay in step with applyCheckIn.
	s := gamificationState{UserID: userID}
	err := g.pool.QueryRow(ctx,
		`INSERT INTO gamification_state (user_id, streak_days, user_level, daily_login_count)
		 VALUES ($1, 1, 1, 1)
		 ON CONFLICT (user_id) DO UPDATE SET
			streak_days       = gamification_state.streak_days + 1,
			daily_login_count = gamification_state.daily_login_count + 1,
			user_level        = gamification_state.user_level +
				CASE WHEN (gamification_state.streak_days + 1) % $2 = 0 THEN 1 ELSE 0 END
		 RETURNING streak_days, user_level, daily_login_count`,
		userID, levelUpInterval).Scan(&s.StreakDays, &s.UserLevel, &s.DailyLoginCount)
	if err != nil {
		return gamificationState{}, fmt.Errorf("check-in for user %d: %w", userID, err)
	}
	return s, nil
}

func (g *postgresGamification) State(ctx context.Context, userID int) (gamificationState, error) {
	s := gamificationState{UserID: userID}
	err := g.pool.QueryRow(ctx,
		"SELECT streak_days, user_level, daily_login_count FROM gamification_state WHERE user_id = $1",
		userID).Scan(&s.StreakDays, &s.UserLevel, &s.DailyLoginCount)
	if errors.Is(err, pgx.ErrNoRows) {
		// No row yet is not an error — the user simply hasn't checked in.
		return freshState(userID), nil
	}
	if err != nil {
		return gamificationState{}, fmt.Errorf("load gamification state for user %d: %w", userID, err)
	}
	return s, nil
}

// memoryGamification applies the pure transition under a mutex. Used by the
// tests and by the server when no DB_URL is configured.
type memoryGamification struct {
	mu     sync.Mutex
	states map[int]gamificationState
}

func newMemoryGamification() *memoryGamification {
	return &memoryGamification{states: make(map[int]gamificationState)}
}

func (g *memoryGamification) CheckIn(ctx context.Context, userID int) (gamificationState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.states[userID]
	if !ok {
		s = freshState(userID)
	}
	s = applyCheckIn(s)
	g.states[userID] = s
	return s, nil
}

func (g *memoryGamification) State(ctx context.Context, userID int) (gamificationState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.states[userID]; ok {
		return s, nil
	}
	return freshState(userID), nil
}
