package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// parseEntryTime parses an optional RFC 3339 timestamp. Empty means "now" —
// the ledger fills it in at append time.
func parseEntryTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// logWeight appends a weight entry to the user's ledger.
// POST /api/weight-log. Body: { "weight_kg": 72.5, "bmi": 23.1, "at"? }.
// BMI is optional — callers that don't track height can omit it.
func (h *Handler) logWeight(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		WeightKG float64  `json:"weight_kg"`
		BMI      *float64 `json:"bmi"`
		At       string   `json:"at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.WeightKG <= 0 {
		apiError(c, http.StatusBadRequest, "weight_kg must be positive")
		return
	}
	if body.BMI != nil && *body.BMI < 0 {
		apiError(c, http.StatusBadRequest, "bmi must not be negative")
		return
	}
	at, ok := parseEntryTime(body.At)
	if !ok {
		apiError(c, http.StatusBadRequest, "invalid at, expected RFC 3339")
		return
	}

	entry, err := h.ledger.Append(c.Request.Context(), ledgerEntry{
		UserID:   userID,
		Kind:     kindWeight,
		At:       at,
		WeightKG: &body.WeightKG,
		BMI:      body.BMI,
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log weight")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// logWater appends a water intake entry to the user's ledger.
// POST /api/water-log. Body: { "water_ml": 250, "at"? }.
func (h *Handler) logWater(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		WaterML int    `json:"water_ml"`
		At      string `json:"at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.WaterML <= 0 {
		apiError(c, http.StatusBadRequest, "water_ml must be positive")
		return
	}
	at, ok := parseEntryTime(body.At)
	if !ok {
		apiError(c, http.StatusBadRequest, "invalid at, expected RFC 3339")
		return
	}

	entry, err := h.ledger.Append(c.Request.Context(), ledgerEntry{
		UserID:  userID,
		Kind:    kindWater,
		At:      at,
		WaterML: &body.WaterML,
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log water")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// logWorkout appends a completed workout to the user's ledger.
// POST /api/workout-log. Body: { "exercise": "Pushups", "duration_sec": 600, "at"? }.
func (h *Handler) logWorkout(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Exercise    string `json:"exercise"`
		DurationSec int    `json:"duration_sec"`
		At          string `json:"at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Exercise == "" {
		apiError(c, http.StatusBadRequest, "exercise is required")
		return
	}
	if body.DurationSec <= 0 {
		apiError(c, http.StatusBadRequest, "duration_sec must be positive")
		return
	}
	at, ok := parseEntryTime(body.At)
	if !ok {
		apiError(c, http.StatusBadRequest, "invalid at, expected RFC 3339")
		return
	}

	entry, err := h.ledger.Append(c.Request.Context(), ledgerEntry{
		UserID:      userID,
		Kind:        kindWorkout,
		At:          at,
		Exercise:    &body.Exercise,
		DurationSec: &body.DurationSec,
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log workout")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// getHistory returns all of the user's entries for one log, in insertion
// order. GET /api/history/:kind, kind in weight|water|workout. A user with no
// entries gets an empty array, not an error.
func (h *Handler) getHistory(c *gin.Context) {
	userID := c.GetInt("user_id")

	kind := ledgerKind(c.Param("kind"))
	if !validLedgerKinds[kind] {
		apiError(c, http.StatusBadRequest, "kind must be one of: weight, water, workout")
		return
	}

	entries, err := h.ledger.History(c.Request.Context(), userID, kind)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch history")
		return
	}
	if entries == nil {
		entries = []ledgerEntry{}
	}

	c.JSON(http.StatusOK, entries)
}
