package handlers

import (
	"net/http"
	"os"
)

// DocHandler serves the small unauthenticated informational endpoints.
type DocHandler struct{}

func NewDocHandler() *DocHandler {
	return &DocHandler{}
}

// GetAppMinVersion tells clients the oldest app build the API still
// supports. Configured via MIN_APP_VERSION; defaults to accepting
// everything.
func (h *DocHandler) GetAppMinVersion(w http.ResponseWriter, r *http.Request) {
	minVersion := os.Getenv("MIN_APP_VERSION")
	if minVersion == "" {
		minVersion = "0.0.0"
	}

	type MinVersion struct {
		MinAppVersion string `json:"min_app_version"`
		UpdateMessage string `json:"update_message"`
	}

	respondWithJSON(w, http.StatusOK, &MinVersion{
		MinAppVersion: minVersion,
		UpdateMessage: "An important update is available. Please update to continue using the app.",
	})
}
