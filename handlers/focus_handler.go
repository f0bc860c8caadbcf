package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"questifyAPI/internal/progression"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/focus"
	"questifyAPI/middleware"
	"questifyAPI/services"
)

type FocusHandler struct {
	stateService *services.StateService
}

func NewFocusHandler(stateService *services.StateService) *FocusHandler {
	return &FocusHandler{
		stateService: stateService,
	}
}

// CompleteFocusSession records a finished focus session. Timing runs on
// the client; the server only accepts the completed result.
func (h *FocusHandler) CompleteFocusSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req focus.CompleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DurationMinutes <= 0 {
		respondWithError(w, http.StatusBadRequest, "Duration must be positive")
		return
	}

	state, out, err := h.stateService.Dispatch(ctx, userID, "complete_focus_session",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.CompleteFocusSession(s, req.DurationMinutes, req.XPEarned, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}
