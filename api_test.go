package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// newTestRouter wires a full router against the in-memory stores and the
// fixture catalog. No database means the auth middleware runs every request
// as the demo user, which is exactly what these tests want.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{
		catalog: buildFoodIndex(testCatalog()),
		ledger:  newMemoryLedger(),
		game:    newMemoryGamification(),
	}
	router := gin.New()
	h.registerRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

/* ─── Plan ───────────────────────────────────────────────────────────── */

const validPlanBody = `{
	"age": 25, "weight_kg": 65, "height_m": 1.70, "gender": "male",
	"activity": "moderate", "goal": "maintain", "target_weight_kg": 60
}`

// TestAPI_CreatePlan posts the worked-example profile and checks the computed
// targets in the response.
func TestAPI_CreatePlan(t *testing.T) {
	router := newTestRouter()
	w := doJSON(router, http.MethodPost, "/api/plan", validPlanBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var got planTargets
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.BMR != 1592.5 {
		t.Errorf("BMR = %v, want 1592.5", got.BMR)
	}
	if got.TDEE != 1592.5*1.55 {
		t.Errorf("TDEE = %v, want %v", got.TDEE, 1592.5*1.55)
	}
	if got.BMICategory != "normal" {
		t.Errorf("BMICategory = %q, want normal", got.BMICategory)
	}
}

// TestAPI_CreatePlan_BadInput: validation failures surface as 400 with an
// error message naming the field.
func TestAPI_CreatePlan_BadInput(t *testing.T) {
	router := newTestRouter()
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"age": }`},
		{"unknown gender", `{"age": 25, "weight_kg": 65, "height_m": 1.7, "gender": "other", "activity": "moderate", "goal": "maintain", "target_weight_kg": 60}`},
		{"unknown activity", `{"age": 25, "weight_kg": 65, "height_m": 1.7, "gender": "male", "activity": "extreme", "goal": "maintain", "target_weight_kg": 60}`},
		{"zero age", `{"age": 0, "weight_kg": 65, "height_m": 1.7, "gender": "male", "activity": "moderate", "goal": "maintain", "target_weight_kg": 60}`},
	}
	for _, tc := range cases {
		if w := doJSON(router, http.MethodPost, "/api/plan", tc.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, w.Code)
		}
	}
}

/* ─── Recommendations ────────────────────────────────────────────────── */

// TestAPI_Recommendations checks the three-meal shape and the 30/40/30 split.
func TestAPI_Recommendations(t *testing.T) {
	router := newTestRouter()
	w := doJSON(router, http.MethodGet, "/api/recommendations?calorie_goal=2000", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var meals []mealPlan
	if err := json.Unmarshal(w.Body.Bytes(), &meals); err != nil {
		t.Fatal(err)
	}
	if len(meals) != 3 {
		t.Fatalf("got %d meals, want 3", len(meals))
	}
	wantBudgets := []struct {
		name string
		cal  float64
	}{{"Breakfast", 600}, {"Lunch", 800}, {"Dinner", 600}}
	for i, want := range wantBudgets {
		if meals[i].MealName != want.name || meals[i].CalorieGoal != want.cal {
			t.Errorf("meal %d = %q/%v, want %q/%v", i, meals[i].MealName, meals[i].CalorieGoal, want.name, want.cal)
		}
		if len(meals[i].Items) == 0 || len(meals[i].Items) > topRecommendations {
			t.Errorf("meal %d has %d items", i, len(meals[i].Items))
		}
	}
}

// TestAPI_Recommendations_VegetarianFilter: no filtered meal contains a
// marked item.
func TestAPI_Recommendations_VegetarianFilter(t *testing.T) {
	router := newTestRouter()
	w := doJSON(router, http.MethodGet, "/api/recommendations?calorie_goal=2000&vegetarian_only=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var meals []mealPlan
	if err := json.Unmarshal(w.Body.Bytes(), &meals); err != nil {
		t.Fatal(err)
	}
	for _, m := range meals {
		for _, it := range m.Items {
			if !isVegetarianSafe(it.Name) {
				t.Errorf("%s contains non-vegetarian item %q", m.MealName, it.Name)
			}
		}
	}
}

// TestAPI_Recommendations_BadParams: without a saved profile the calorie goal
// is mandatory, and both params are validated.
func TestAPI_Recommendations_BadParams(t *testing.T) {
	router := newTestRouter()
	for _, path := range []string{
		"/api/recommendations",
		"/api/recommendations?calorie_goal=-100",
		"/api/recommendations?calorie_goal=abc",
		"/api/recommendations?calorie_goal=2000&vegetarian_only=banana",
	} {
		if w := doJSON(router, http.MethodGet, path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

// TestAPI_WorkoutPlan covers the fixed per-goal lists and the closed enum.
func TestAPI_WorkoutPlan(t *testing.T) {
	router := newTestRouter()

	w := doJSON(router, http.MethodGet, "/api/workout-plan?goal=weight_loss", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var got struct {
		Goal      string   `json:"goal"`
		Exercises []string `json:"exercises"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Goal != "weight_loss" || len(got.Exercises) == 0 {
		t.Errorf("got %+v", got)
	}

	for _, path := range []string{"/api/workout-plan?goal=bulking", "/api/workout-plan"} {
		if w := doJSON(router, http.MethodGet, path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

/* ─── Progress logs ──────────────────────────────────────────────────── */

// TestAPI_LogAndHistory walks the write-then-read path for each log kind.
func TestAPI_LogAndHistory(t *testing.T) {
	router := newTestRouter()

	posts := []struct {
		path string
		body string
		kind string
	}{
		{"/api/weight-log", `{"weight_kg": 72.5, "bmi": 23.1}`, "weight"},
		{"/api/water-log", `{"water_ml": 500}`, "water"},
		{"/api/workout-log", `{"exercise": "Pushups", "duration_sec": 600}`, "workout"},
	}
	for _, p := range posts {
		if w := doJSON(router, http.MethodPost, p.path, p.body); w.Code != http.StatusCreated {
			t.Fatalf("POST %s: status = %d, body %s", p.path, w.Code, w.Body.String())
		}
	}

	for _, p := range posts {
		w := doJSON(router, http.MethodGet, "/api/history/"+p.kind, "")
		if w.Code != http.StatusOK {
			t.Fatalf("GET history/%s: status = %d", p.kind, w.Code)
		}
		var entries []ledgerEntry
		if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("history/%s has %d entries, want 1", p.kind, len(entries))
		}
	}
}

// TestAPI_HistoryEmptyAndUnknownKind: no entries means an empty JSON array,
// and an unknown kind is rejected outright.
func TestAPI_HistoryEmptyAndUnknownKind(t *testing.T) {
	router := newTestRouter()

	w := doJSON(router, http.MethodGet, "/api/history/weight", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("empty history body = %s, want []", body)
	}

	if w := doJSON(router, http.MethodGet, "/api/history/steps", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: status = %d, want 400", w.Code)
	}
}

// TestAPI_LogValidation: each log endpoint rejects non-positive values and
// malformed timestamps.
func TestAPI_LogValidation(t *testing.T) {
	router := newTestRouter()
	cases := []struct {
		path string
		body string
	}{
		{"/api/weight-log", `{"weight_kg": 0}`},
		{"/api/weight-log", `{"weight_kg": -5}`},
		{"/api/weight-log", `{"weight_kg": 70, "bmi": -1}`},
		{"/api/weight-log", `{"weight_kg": 70, "at": "yesterday"}`},
		{"/api/water-log", `{"water_ml": 0}`},
		{"/api/water-log", `{"water_ml": -250}`},
		{"/api/workout-log", `{"exercise": "", "duration_sec": 600}`},
		{"/api/workout-log", `{"exercise": "Pushups", "duration_sec": 0}`},
	}
	for _, tc := range cases {
		if w := doJSON(router, http.MethodPost, tc.path, tc.body); w.Code != http.StatusBadRequest {
			t.Errorf("POST %s %s: status = %d, want 400", tc.path, tc.body, w.Code)
		}
	}
}

/* ─── Gamification ───────────────────────────────────────────────────── */

// TestAPI_CheckInFlow runs seven check-ins and watches the counters through
// the gamification endpoint.
func TestAPI_CheckInFlow(t *testing.T) {
	router := newTestRouter()

	// fresh state before any check-in
	w := doJSON(router, http.MethodGet, "/api/gamification", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var state gamificationState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if state.UserLevel != 1 || state.StreakDays != 0 {
		t.Errorf("fresh state = %+v", state)
	}

	for i := 0; i < 7; i++ {
		w = doJSON(router, http.MethodPost, "/api/checkin", "")
		if w.Code != http.StatusOK {
			t.Fatalf("check-in %d: status = %d", i+1, w.Code)
		}
	}
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if state.StreakDays != 7 || state.UserLevel != 2 || state.DailyLoginCount != 7 {
		t.Errorf("after 7 check-ins: %+v", state)
	}
}

// TestAPI_Achievements logs enough water today to unlock Water Master and
// checks the rest stay locked.
func TestAPI_Achievements(t *testing.T) {
	router := newTestRouter()

	for i := 0; i < 3; i++ {
		if w := doJSON(router, http.MethodPost, "/api/water-log", `{"water_ml": 1000}`); w.Code != http.StatusCreated {
			t.Fatalf("water log %d: status = %d", i+1, w.Code)
		}
	}

	w := doJSON(router, http.MethodGet, "/api/achievements", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var got map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !got[achWaterMaster] {
		t.Errorf("Water Master locked after 3000ml today: %v", got)
	}
	for _, name := range []string{achSevenDayStreak, achWorkoutBeast, achPerfectWeek, achGamificationPro} {
		if got[name] {
			t.Errorf("%q unlocked unexpectedly", name)
		}
	}
}

// downGamificationStore fails every call, standing in for a store whose
// backend is unreachable.
type downGamificationStore struct{}

func (downGamificationStore) CheckIn(ctx context.Context, userID int) (gamificationState, error) {
	return gamificationState{}, errors.New("connection refused")
}

func (downGamificationStore) State(ctx context.Context, userID int) (gamificationState, error) {
	return gamificationState{}, errors.New("connection refused")
}

// TestAPI_GamificationStoreFailure: a failing store surfaces as 500 on every
// gamification endpoint — never as a fresh zeroed state with 200.
func TestAPI_GamificationStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{
		catalog: buildFoodIndex(testCatalog()),
		ledger:  newMemoryLedger(),
		game:    downGamificationStore{},
	}
	router := gin.New()
	h.registerRoutes(router)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/gamification"},
		{http.MethodGet, "/api/achievements"},
		{http.MethodPost, "/api/checkin"},
	} {
		w := doJSON(router, tc.method, tc.path, "")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s %s: status = %d, want 500", tc.method, tc.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "error") {
			t.Errorf("%s %s: body %s carries no error field", tc.method, tc.path, w.Body.String())
		}
	}
}

/* ─── No-database mode ───────────────────────────────────────────────── */

// TestAPI_NoDatabaseMode: account and checklist persistence need Postgres;
// the profile 404s until a plan is saved (never, without a database).
func TestAPI_NoDatabaseMode(t *testing.T) {
	router := newTestRouter()

	for _, tc := range []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/register", `{"email": "a@b.c", "password": "x", "confirm_password": "x"}`, http.StatusServiceUnavailable},
		{http.MethodPost, "/api/login", `{"email": "a@b.c", "password": "x"}`, http.StatusServiceUnavailable},
		{http.MethodPut, "/api/checklist", `{"workout_done": true}`, http.StatusServiceUnavailable},
		{http.MethodGet, "/api/profile", "", http.StatusNotFound},
	} {
		w := doJSON(router, tc.method, tc.path, tc.body)
		if w.Code != tc.want {
			t.Errorf("%s %s: status = %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
	}

	// reading a checklist still works, it is just always all-false
	w := doJSON(router, http.MethodGet, "/api/checklist", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET checklist: status = %d", w.Code)
	}
	var check dailyChecklist
	if err := json.Unmarshal(w.Body.Bytes(), &check); err != nil {
		t.Fatal(err)
	}
	if check.WorkoutDone || check.DietDone || check.WaterDone {
		t.Errorf("demo checklist has flags set: %+v", check)
	}
}

// TestAPI_DemoUserIdentity: without a database every request runs as user 1.
func TestAPI_DemoUserIdentity(t *testing.T) {
	router := newTestRouter()
	w := doJSON(router, http.MethodPost, "/api/water-log", `{"water_ml": 250}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var entry ledgerEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.UserID != 1 {
		t.Errorf("UserID = %d, want demo user 1", entry.UserID)
	}
}
