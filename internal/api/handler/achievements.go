// internal/api/handler/achievements.go
package handler

import (
	"net/http"

	"coinquest/internal/service"

	"github.com/sirupsen/logrus"
)

// AchievementHandler handles achievement requests.
type AchievementHandler struct {
	responder
	service service.AchievementService
}

// NewAchievementHandler creates a new AchievementHandler.
func NewAchievementHandler(svc service.AchievementService, logger logrus.FieldLogger) *AchievementHandler {
	return &AchievementHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// List returns the stored achievement states.
// GET /api/achievements
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	achievements, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", achievements)
}

// Check re-evaluates every achievement.
// POST /api/achievements/check
func (h *AchievementHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	achievements, err := h.service.Evaluate(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Achievements updated", achievements)
}
