package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"questifyAPI/internal/progression"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/user"
	"questifyAPI/middleware"
	"questifyAPI/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// actionResponse is the envelope every mutating endpoint returns: the
// committed snapshot plus what the action did. Clients re-render from
// the snapshot rather than patching local copies.
type actionResponse struct {
	State   *appstate.AppState  `json:"state"`
	Outcome progression.Outcome `json:"outcome"`
}

func respondWithAction(w http.ResponseWriter, state *appstate.AppState, out progression.Outcome) {
	respondWithJSON(w, http.StatusOK, actionResponse{State: state, Outcome: out})
}

type StateHandler struct {
	stateService *services.StateService
	hub          *services.WatchHub
}

func NewStateHandler(stateService *services.StateService, hub *services.WatchHub) *StateHandler {
	return &StateHandler{
		stateService: stateService,
		hub:          hub,
	}
}

func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	state, err := h.stateService.Current(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}

// Watch upgrades to a websocket and streams committed snapshots. The
// auth middleware already resolved the user from the ?token= parameter.
func (h *StateHandler) Watch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	state, err := h.stateService.Current(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Could not upgrade connection: %v", err)
		return
	}

	watcher := h.hub.Attach(userID, conn)

	// Seed the new device with the current snapshot before live frames.
	if frame, err := json.Marshal(services.StateUpdate{Type: "state", State: state}); err == nil {
		watcher.Send <- frame
	}

	go watcher.WritePump()
	go watcher.ReadPump()
}

func (h *StateHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, out, err := h.stateService.Dispatch(ctx, userID, "complete_onboarding",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.CompleteOnboarding(s, req, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}

func (h *StateHandler) SetMood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Mood string `json:"mood"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Mood == "" {
		respondWithError(w, http.StatusBadRequest, "Mood is required")
		return
	}

	state, out, err := h.stateService.Dispatch(ctx, userID, "set_mood",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.SetMood(s, req.Mood, now, loc)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}
