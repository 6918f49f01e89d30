package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// putChecklist saves the day's habit flags.
// PUT /api/checklist. Body: { "date"?, "workout_done", "diet_done", "water_done" }.
// Date defaults to today; the UNIQUE(user_id, date) constraint means saving
// the same day updates in place.
func (h *Handler) putChecklist(c *gin.Context) {
	userID := c.GetInt("user_id")

	if h.db == nil {
		apiError(c, http.StatusServiceUnavailable, "checklist persistence requires a configured database")
		return
	}

	var body struct {
		Date        string `json:"date"`
		WorkoutDone bool   `json:"workout_done"`
		DietDone    bool   `json:"diet_done"`
		WaterDone   bool   `json:"water_done"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := queryOne[dailyChecklist](h.db, c,
		`INSERT INTO daily_checklist (user_id, date, workout_done, diet_done, water_done)
		 VALUES (@userID, @date, @workoutDone, @dietDone, @waterDone)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			workout_done = EXCLUDED.workout_done,
			diet_done    = EXCLUDED.diet_done,
			water_done   = EXCLUDED.water_done
		 RETURNING user_id, TO_CHAR(date, 'YYYY-MM-DD') AS date, workout_done, diet_done, water_done`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date,
			"workoutDone": body.WorkoutDone, "dietDone": body.DietDone,
			"waterDone": body.WaterDone,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save checklist")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// getChecklist returns the flags for a day, all-false if nothing was saved.
// GET /api/checklist?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getChecklist(c *gin.Context) {
	userID := c.GetInt("user_id")

	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.checklistFor(c, userID, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch checklist")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// checklistFor loads a day's checklist, falling back to all-false flags when
// no row exists or no database is configured. Any other store failure is the
// caller's problem. Also feeds the Perfect Week achievement.
func (h *Handler) checklistFor(c *gin.Context, userID int, date string) (dailyChecklist, error) {
	if h.db == nil {
		return dailyChecklist{UserID: userID, Date: date}, nil
	}
	entry, err := queryOne[dailyChecklist](h.db, c,
		`SELECT user_id, TO_CHAR(date, 'YYYY-MM-DD') AS date, workout_done, diet_done, water_done
		 FROM daily_checklist WHERE user_id = @userID AND date = @date`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if errors.Is(err, pgx.ErrNoRows) {
		return dailyChecklist{UserID: userID, Date: date}, nil
	}
	if err != nil {
		return dailyChecklist{}, err
	}
	return entry, nil
}
