package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"questifyAPI/internal/progression"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/user"
	"questifyAPI/middleware"
	"questifyAPI/services"
)

type UserHandler struct {
	stateService *services.StateService
	statsService *services.StatsService
}

func NewUserHandler(stateService *services.StateService, statsService *services.StatsService) *UserHandler {
	return &UserHandler{
		stateService: stateService,
		statsService: statsService,
	}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, out, err := h.stateService.Dispatch(ctx, userID, "update_profile",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.UpdateProfile(s, req, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}

func (h *UserHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userStats, err := h.statsService.UserStats(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, userStats)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
