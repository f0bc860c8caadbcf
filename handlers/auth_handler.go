package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"questifyAPI/internal/identity"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/middleware"
	"questifyAPI/services"
)

type AuthHandler struct {
	provider     identity.Provider
	stateService *services.StateService
}

func NewAuthHandler(provider identity.Provider, stateService *services.StateService) *AuthHandler {
	return &AuthHandler{
		provider:     provider,
		stateService: stateService,
	}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type authResponse struct {
	identity.Identity
	State *appstate.AppState `json:"state"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	id, err := h.provider.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondWithAuthError(w, err)
		return
	}

	state, err := h.stateService.Bootstrap(ctx, id.UserID, id)
	if err != nil {
		log.Printf("Failed to bootstrap state for user %s: %v", id.UserID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to initialize user state")
		return
	}

	respondWithJSON(w, http.StatusCreated, authResponse{Identity: *id, State: state})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	id, err := h.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		respondWithAuthError(w, err)
		return
	}

	state, err := h.stateService.Bootstrap(ctx, id.UserID, id)
	if err != nil {
		log.Printf("Failed to bootstrap state for user %s: %v", id.UserID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load user state")
		return
	}

	respondWithJSON(w, http.StatusOK, authResponse{Identity: *id, State: state})
}

// Logout drops the server-side session. The persisted snapshot stays;
// the response carries the anonymous default state for the client to
// render.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	state, err := h.stateService.Logout(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"state": state})
}

func respondWithAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, identity.ErrWeakPassword):
		respondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters")
	case errors.Is(err, identity.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, identity.ErrProviderDisabled):
		respondWithError(w, http.StatusServiceUnavailable, "Authentication is not configured")
	default:
		log.Printf("Auth provider error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Authentication failed")
	}
}
