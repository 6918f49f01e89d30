package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// checkIn applies the daily check-in transition and returns the new state.
// POST /api/checkin. Calling it twice in a day counts twice — the streak is
// a check-in counter, not a calendar.
func (h *Handler) checkIn(c *gin.Context) {
	userID := c.GetInt("user_id")

	state, err := h.game.CheckIn(c.Request.Context(), userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to check in")
		return
	}

	c.JSON(http.StatusOK, state)
}

// getGamification returns the user's current counters. GET /api/gamification.
// A user who has never checked in gets the fresh level-1 state.
func (h *Handler) getGamification(c *gin.Context) {
	userID := c.GetInt("user_id")

	state, err := h.game.State(c.Request.Context(), userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch gamification state")
		return
	}

	c.JSON(http.StatusOK, state)
}

// getAchievements derives the unlock map from the user's current state,
// today's water and workout totals, and today's checklist.
// GET /api/achievements. Recomputed on every call; nothing is persisted.
func (h *Handler) getAchievements(c *gin.Context) {
	userID := c.GetInt("user_id")
	ctx := c.Request.Context()
	now := time.Now()

	state, err := h.game.State(ctx, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch gamification state")
		return
	}

	waterEntries, err := h.ledger.History(ctx, userID, kindWater)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch water history")
		return
	}
	workoutEntries, err := h.ledger.History(ctx, userID, kindWorkout)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch workout history")
		return
	}

	waterToday := sumToday(waterEntries, now, func(e ledgerEntry) float64 {
		if e.WaterML == nil {
			return 0
		}
		return float64(*e.WaterML)
	})
	workoutToday := sumToday(workoutEntries, now, func(e ledgerEntry) float64 {
		if e.DurationSec == nil {
			return 0
		}
		return float64(*e.DurationSec)
	})

	check, err := h.checklistFor(c, userID, now.Format("2006-01-02"))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch checklist")
		return
	}

	c.JSON(http.StatusOK, evaluateAchievements(state, waterToday, workoutToday, check))
}
