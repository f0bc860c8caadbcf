package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"questifyAPI/internal/progression"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/habit"
	"questifyAPI/middleware"
	"questifyAPI/services"
)

type HabitHandler struct {
	stateService *services.StateService
}

func NewHabitHandler(stateService *services.StateService) *HabitHandler {
	return &HabitHandler{
		stateService: stateService,
	}
}

func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "Title is required")
		return
	}

	state, out, err := h.stateService.Dispatch(ctx, userID, "create_habit",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.CreateHabit(s, req, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}

// ToggleHabit completes the habit for today, or undoes today's
// completion when it is already ticked.
func (h *HabitHandler) ToggleHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habitID := mux.Vars(r)["id"]

	state, out, err := h.stateService.Dispatch(ctx, userID, "toggle_habit",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.ToggleHabit(s, habitID, now, loc)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}
