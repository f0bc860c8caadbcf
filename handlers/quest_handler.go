package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"questifyAPI/internal/progression"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/quest"
	"questifyAPI/middleware"
	"questifyAPI/services"
)

type QuestHandler struct {
	stateService *services.StateService
}

func NewQuestHandler(stateService *services.StateService) *QuestHandler {
	return &QuestHandler{
		stateService: stateService,
	}
}

func (h *QuestHandler) CreateQuest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req quest.CreateQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TemplateID != "" {
		tpl := services.TemplateByID(req.TemplateID)
		if tpl == nil {
			respondWithError(w, http.StatusNotFound, "Unknown quest template")
			return
		}
		req = services.ApplyTemplate(req, tpl)
	}
	if req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "Title is required")
		return
	}

	state, out, err := h.stateService.Dispatch(ctx, userID, "create_quest",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.CreateQuest(s, req, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}

func (h *QuestHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, services.QuestTemplates())
}

func (h *QuestHandler) UpdateQuest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	questID := mux.Vars(r)["id"]

	var req quest.UpdateQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, out, err := h.stateService.Dispatch(ctx, userID, "update_quest",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.UpdateQuest(s, questID, req, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}

func (h *QuestHandler) DeleteQuest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	questID := mux.Vars(r)["id"]

	state, out, err := h.stateService.Dispatch(ctx, userID, "delete_quest",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.DeleteQuest(s, questID, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}

func (h *QuestHandler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	questID := mux.Vars(r)["id"]

	state, out, err := h.stateService.Dispatch(ctx, userID, "complete_quest",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.CompleteQuest(s, questID, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}

func (h *QuestHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	questID := vars["id"]
	subtaskID := vars["subtaskId"]

	state, out, err := h.stateService.Dispatch(ctx, userID, "toggle_subtask",
		func(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, progression.Outcome) {
			return progression.ToggleSubtask(s, questID, subtaskID, now)
		})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithAction(w, state, out)
}
