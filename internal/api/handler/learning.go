// internal/api/handler/learning.go
package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"coinquest/internal/content"
	"coinquest/internal/service"
	"coinquest/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// LearningHandler handles lesson, quiz and progress requests.
type LearningHandler struct {
	responder
	service service.LearningService
}

// NewLearningHandler creates a new LearningHandler.
func NewLearningHandler(svc service.LearningService, logger logrus.FieldLogger) *LearningHandler {
	return &LearningHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// QuizSubmission represents the request body for a quiz submission.
type QuizSubmission struct {
	Answers   []int   `json:"answers"`
	TimeSpent float64 `json:"timeSpent"`
}

// Quiz is the response body of a quiz request. Questions carry no answers.
type Quiz struct {
	ModuleID  int                `json:"moduleId"`
	Questions []content.Question `json:"questions"`
}

func moduleIDParam(r *http.Request) (int, error) {
	moduleID, err := strconv.Atoi(chi.URLParam(r, "moduleID"))
	if err != nil || moduleID <= 0 {
		return 0, fmt.Errorf("%w: module id must be a positive integer", util.ErrInvalidInput)
	}
	return moduleID, nil
}

// Modules returns the catalog with the user's progress.
// GET /api/learning/modules
func (h *LearningHandler) Modules(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	overview, err := h.service.ListModules(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", overview)
}

// Progress returns the user's learning progress.
// GET /api/learning/progress
func (h *LearningHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	progress, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", progress)
}

// GetLesson returns a lesson's slides.
// GET /api/learning/lessons/{moduleID}/{lessonID}
func (h *LearningHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	moduleID, err := moduleIDParam(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	lesson, err := h.service.GetLesson(moduleID, chi.URLParam(r, "lessonID"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", lesson)
}

// CompleteLesson marks a lesson done and pays its reward.
// POST /api/learning/lessons/{moduleID}/{lessonID}/complete
func (h *LearningHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	moduleID, err := moduleIDParam(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.CompleteLesson(r.Context(), userID, moduleID, chi.URLParam(r, "lessonID"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Lesson completed", result)
}

// GetQuiz returns a module's questions.
// GET /api/learning/quizzes/{moduleID}
func (h *LearningHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	moduleID, err := moduleIDParam(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	questions, err := h.service.GetQuiz(moduleID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", Quiz{ModuleID: moduleID, Questions: questions})
}

// SubmitQuiz grades a quiz attempt.
// POST /api/learning/quizzes/{moduleID}/submit
func (h *LearningHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	moduleID, err := moduleIDParam(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req QuizSubmission
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), userID, moduleID, req.Answers, req.TimeSpent)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Quiz submitted", result)
}
