// internal/api/handler/leaderboard.go
package handler

import (
	"net/http"

	"coinquest/internal/api/types"
	"coinquest/internal/service"

	"github.com/sirupsen/logrus"
)

// LeaderboardHandler handles ranking requests.
type LeaderboardHandler struct {
	responder
	service service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(svc service.LeaderboardService, logger logrus.FieldLogger) *LeaderboardHandler {
	return &LeaderboardHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// Top returns the highest ranked users.
// GET /api/leaderboard?limit=N
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if limit == 0 {
		limit = service.DefaultLeaderboardLimit
	}
	limit = min(limit, service.MaxLeaderboardLimit)

	entries, err := h.service.Top(r.Context(), limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", types.NewListResponse(entries, limit))
}

// Me returns the authenticated user's standing.
// GET /api/leaderboard/me
func (h *LeaderboardHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	entry, err := h.service.Standing(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", entry)
}
