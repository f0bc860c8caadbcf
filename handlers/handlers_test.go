package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questifyAPI/handlers"
	"questifyAPI/internal/progression"
	"questifyAPI/internal/store"
	"questifyAPI/internal/store/sqlite"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/quest"
	"questifyAPI/internal/types/user"
	"questifyAPI/middleware"
	"questifyAPI/services"
)

const testUserID = "user-1"

// actionEnvelope mirrors the response every mutating endpoint returns.
type actionEnvelope struct {
	State   *appstate.AppState   `json:"state"`
	Outcome *progression.Outcome `json:"outcome"`
}

// newAPI wires the handlers onto a router the way main.go does, with the
// auth middleware replaced by a stub that fixes the user id.
func newAPI(t *testing.T) (*mux.Router, store.Store) {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)

	stateService := services.NewStateService(st, nil)
	t.Cleanup(stateService.Stop)
	statsService := services.NewStatsService(stateService)

	stateHandler := handlers.NewStateHandler(stateService, services.NewWatchHub())
	questHandler := handlers.NewQuestHandler(stateService)
	habitHandler := handlers.NewHabitHandler(stateService)
	focusHandler := handlers.NewFocusHandler(stateService)
	userHandler := handlers.NewUserHandler(stateService, statsService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authAs(testUserID))

	api.HandleFunc("/state", stateHandler.GetState).Methods("GET")
	api.HandleFunc("/state/onboarding", stateHandler.CompleteOnboarding).Methods("POST")
	api.HandleFunc("/state/mood", stateHandler.SetMood).Methods("PUT")

	api.HandleFunc("/quests", questHandler.CreateQuest).Methods("POST")
	api.HandleFunc("/quests/templates", questHandler.GetTemplates).Methods("GET")
	api.HandleFunc("/quests/{id}", questHandler.UpdateQuest).Methods("PUT")
	api.HandleFunc("/quests/{id}", questHandler.DeleteQuest).Methods("DELETE")
	api.HandleFunc("/quests/{id}/complete", questHandler.CompleteQuest).Methods("POST")
	api.HandleFunc("/quests/{id}/subtasks/{subtaskId}/toggle", questHandler.ToggleSubtask).Methods("POST")

	api.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	api.HandleFunc("/habits/{id}/toggle", habitHandler.ToggleHabit).Methods("POST")

	api.HandleFunc("/focus-sessions", focusHandler.CompleteFocusSession).Methods("POST")

	api.HandleFunc("/user/stats", userHandler.GetUserStats).Methods("GET")
	api.HandleFunc("/user/profile", userHandler.UpdateProfile).Methods("PUT")

	return r, st
}

func authAs(userID string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// seedUser stores a signed-in snapshot so actions have a user to grant
// XP to, the way Bootstrap would after sign-in.
func seedUser(t *testing.T, st store.Store) {
	t.Helper()
	u := &user.User{ID: testUserID, Name: "Tester", Email: "tester@example.com"}
	progression.ApplyTotalXP(u)
	snap := appstate.New(u, time.Now())
	snap.LastDailyReset = progression.DateKey(time.Now(), time.UTC)
	require.NoError(t, st.SaveSnapshot(context.Background(), appstate.Key(testUserID), snap))
}

func do(t *testing.T, r *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func doAction(t *testing.T, r *mux.Router, method, path string, body any) actionEnvelope {
	t.Helper()
	rr := do(t, r, method, path, body)
	require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())
	var env actionEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotNil(t, env.State)
	require.NotNil(t, env.Outcome)
	return env
}

func TestQuestLifecycle(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPost, "/api/v1/quests", map[string]any{
		"title":      "Ship the release",
		"difficulty": "hard",
	})
	require.Len(t, env.State.Quests, 1)
	q := env.State.Quests[0]
	assert.Equal(t, quest.DifficultyHard, q.Difficulty)
	assert.Equal(t, 50, q.XPReward)
	assert.Equal(t, progression.OutcomeNone, env.Outcome.Kind)

	env = doAction(t, r, http.MethodPost, "/api/v1/quests/"+q.ID+"/complete", nil)
	assert.Equal(t, progression.OutcomeQuestCompleted, env.Outcome.Kind)
	assert.Equal(t, 50, env.Outcome.XPGained)
	assert.Equal(t, 50, env.State.User.TotalXP)
	require.Len(t, env.Outcome.UnlockedBadges, 1)
	assert.Equal(t, "first-quest", env.Outcome.UnlockedBadges[0].ID)

	// Completing twice must not pay out twice.
	env = doAction(t, r, http.MethodPost, "/api/v1/quests/"+q.ID+"/complete", nil)
	assert.Equal(t, progression.OutcomeNone, env.Outcome.Kind)
	assert.Equal(t, 50, env.State.User.TotalXP)
}

func TestQuestCompletion_LevelUp(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	var questIDs []string
	for _, title := range []string{"First push", "Second push"} {
		env := doAction(t, r, http.MethodPost, "/api/v1/quests", map[string]any{
			"title":      title,
			"difficulty": "hard",
		})
		questIDs = append(questIDs, env.State.Quests[len(env.State.Quests)-1].ID)
	}

	doAction(t, r, http.MethodPost, "/api/v1/quests/"+questIDs[0]+"/complete", nil)
	env := doAction(t, r, http.MethodPost, "/api/v1/quests/"+questIDs[1]+"/complete", nil)

	assert.Equal(t, progression.OutcomeLevelUp, env.Outcome.Kind)
	assert.True(t, env.Outcome.LeveledUp)
	assert.Equal(t, 1, env.Outcome.LevelBefore)
	assert.Equal(t, 2, env.Outcome.LevelAfter)
	assert.Equal(t, 2, env.State.User.Level)
	assert.Equal(t, 100, env.State.User.TotalXP)
}

func TestCreateQuest_FromTemplate(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPost, "/api/v1/quests", map[string]any{
		"templateId": "morning-routine",
	})
	require.Len(t, env.State.Quests, 1)
	q := env.State.Quests[0]
	assert.Equal(t, "Win the morning", q.Title)
	assert.True(t, q.IsDaily)
	assert.Len(t, q.Subtasks, 2)
}

func TestCreateQuest_UnknownTemplate(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	rr := do(t, r, http.MethodPost, "/api/v1/quests", map[string]any{
		"templateId": "no-such-template",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateQuest_MissingTitle(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	rr := do(t, r, http.MethodPost, "/api/v1/quests", map[string]any{
		"difficulty": "easy",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetTemplates(t *testing.T) {
	r, _ := newAPI(t)

	rr := do(t, r, http.MethodGet, "/api/v1/quests/templates", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var templates []quest.Template
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &templates))
	assert.NotEmpty(t, templates)
}

func TestHabitToggle_GrantsAndUndoes(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPost, "/api/v1/habits", map[string]any{
		"title": "Stretch",
	})
	require.Len(t, env.State.Habits, 1)
	habitID := env.State.Habits[0].ID

	env = doAction(t, r, http.MethodPost, "/api/v1/habits/"+habitID+"/toggle", nil)
	assert.Equal(t, progression.OutcomeHabitCompleted, env.Outcome.Kind)
	assert.Equal(t, 1, env.Outcome.Streak)
	assert.Equal(t, 15, env.State.User.TotalXP)

	env = doAction(t, r, http.MethodPost, "/api/v1/habits/"+habitID+"/toggle", nil)
	assert.Equal(t, progression.OutcomeHabitUndone, env.Outcome.Kind)
	assert.Equal(t, 0, env.State.User.TotalXP)
	assert.Equal(t, 0, env.State.Habits[0].CurrentStreak)
}

func TestCompleteFocusSession(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPost, "/api/v1/focus-sessions", map[string]any{
		"durationMinutes": 25,
		"xpEarned":        25,
	})
	assert.Equal(t, progression.OutcomeFocusCompleted, env.Outcome.Kind)
	require.Len(t, env.State.FocusSessions, 1)
	assert.Equal(t, 25, env.State.FocusSessions[0].Duration)
	assert.True(t, env.State.FocusSessions[0].Completed)
}

func TestCompleteFocusSession_RejectsNonPositiveDuration(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	rr := do(t, r, http.MethodPost, "/api/v1/focus-sessions", map[string]any{
		"durationMinutes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetState_ReturnsBareSnapshot(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	doAction(t, r, http.MethodPost, "/api/v1/quests", map[string]any{"title": "One quest"})

	rr := do(t, r, http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var snap appstate.AppState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.NotNil(t, snap.User)
	assert.Equal(t, testUserID, snap.User.ID)
	assert.Len(t, snap.Quests, 1)
}

func TestSetMood(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPut, "/api/v1/state/mood", map[string]any{"mood": "good"})
	assert.Contains(t, env.State.MoodByDate, progression.DateKey(time.Now(), time.UTC))

	rr := do(t, r, http.MethodPut, "/api/v1/state/mood", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCompleteOnboarding(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPost, "/api/v1/state/onboarding", map[string]any{
		"class":     "ranger",
		"dailyGoal": 3,
		"timezone":  "Europe/Sofia",
	})
	assert.True(t, env.State.IsOnboarded)
	assert.Equal(t, "ranger", env.State.User.Class)
	assert.Equal(t, "Europe/Sofia", env.State.User.Timezone)
}

func TestUpdateProfile(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPut, "/api/v1/user/profile", map[string]any{
		"name":      "Renamed Hero",
		"dailyGoal": 5,
	})
	assert.Equal(t, "Renamed Hero", env.State.User.Name)
	assert.Equal(t, 5, env.State.User.DailyGoal)
	// Progression fields never move through profile edits.
	assert.Equal(t, 1, env.State.User.Level)
}

func TestGetUserStats(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPost, "/api/v1/quests", map[string]any{
		"title":      "Ship it",
		"difficulty": "normal",
	})
	doAction(t, r, http.MethodPost, "/api/v1/quests/"+env.State.Quests[0].ID+"/complete", nil)
	doAction(t, r, http.MethodPost, "/api/v1/focus-sessions", map[string]any{
		"durationMinutes": 25,
		"xpEarned":        25,
	})

	rr := do(t, r, http.MethodGet, "/api/v1/user/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		QuestsCompleted int `json:"questsCompleted"`
		FocusSessions   int `json:"focusSessions"`
		FocusMinutes    int `json:"focusMinutes"`
		TotalXP         int `json:"totalXP"`
		BadgesUnlocked  int `json:"badgesUnlocked"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 1, got.QuestsCompleted)
	assert.Equal(t, 1, got.FocusSessions)
	assert.Equal(t, 25, got.FocusMinutes)
	assert.Equal(t, 50, got.TotalXP)
	assert.Equal(t, 1, got.BadgesUnlocked)
}

func TestSubtaskToggle(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPost, "/api/v1/quests", map[string]any{
		"title":    "Big feature",
		"subtasks": []string{"design", "build"},
	})
	q := env.State.Quests[0]
	require.Len(t, q.Subtasks, 2)

	env = doAction(t, r, http.MethodPost, "/api/v1/quests/"+q.ID+"/subtasks/"+q.Subtasks[0].ID+"/toggle", nil)
	assert.True(t, env.State.Quests[0].Subtasks[0].Completed)
	assert.False(t, env.State.Quests[0].Subtasks[1].Completed)
}

func TestDeleteQuest(t *testing.T) {
	r, st := newAPI(t)
	seedUser(t, st)

	env := doAction(t, r, http.MethodPost, "/api/v1/quests", map[string]any{"title": "Doomed"})
	q := env.State.Quests[0]

	env = doAction(t, r, http.MethodDelete, "/api/v1/quests/"+q.ID, nil)
	assert.Empty(t, env.State.Quests)
}
