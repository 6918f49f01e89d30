package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// createPlan computes the full plan targets from the submitted profile and
// today's intake. POST /api/plan. The profile half of the body is also saved
// as the user's current profile — each planning session overwrites the last —
// but the computed targets themselves are never stored.
func (h *Handler) createPlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body planRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	targets, err := computePlan(body)
	if err != nil {
		if errors.Is(err, errInvalidInput) {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to compute plan")
		return
	}

	// Persisting the profile is part of the operation: a failed save fails
	// the whole request, it never silently skips.
	if h.db != nil {
		if err := h.saveProfile(c, userID, body); err != nil {
			log.Printf("[createPlan] profile save failed for user %d: %v", userID, err)
			apiError(c, http.StatusInternalServerError, "failed to save profile")
			return
		}
	}

	c.JSON(http.StatusOK, targets)
}

// saveProfile upserts the user's profile row from a planning request.
func (h *Handler) saveProfile(c *gin.Context, userID int, body planRequest) error {
	allergies := body.Allergies
	if allergies == nil {
		allergies = []string{}
	}
	_, err := h.db.Exec(c,
		`INSERT INTO user_profiles
			(user_id, age, weight_kg, height_m, gender, activity, goal,
			 target_weight_kg, vegetarian_only, allergies)
		 VALUES (@userID, @age, @weightKG, @heightM, @gender, @activity, @goal,
			 @targetWeightKG, @vegetarianOnly, @allergies)
		 ON CONFLICT (user_id) DO UPDATE SET
			age              = EXCLUDED.age,
			weight_kg        = EXCLUDED.weight_kg,
			height_m         = EXCLUDED.height_m,
			gender           = EXCLUDED.gender,
			activity         = EXCLUDED.activity,
			goal             = EXCLUDED.goal,
			target_weight_kg = EXCLUDED.target_weight_kg,
			vegetarian_only  = EXCLUDED.vegetarian_only,
			allergies        = EXCLUDED.allergies`,
		pgx.NamedArgs{
			"userID": userID, "age": body.Age, "weightKG": body.WeightKG,
			"heightM": body.HeightM, "gender": body.Gender,
			"activity": body.Activity, "goal": body.Goal,
			"targetWeightKG": body.TargetWeightKG,
			"vegetarianOnly": body.VegetarianOnly, "allergies": allergies,
		})
	return err
}

// getProfile returns the profile saved by the user's last planning session.
// GET /api/profile. 404 until the first POST /api/plan.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	if h.db == nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	p, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	c.JSON(http.StatusOK, p)
}
