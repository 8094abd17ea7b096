// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"coinquest/internal/api/middleware"
	"coinquest/internal/api/types"
	"coinquest/internal/util"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// responder holds the JSON helpers shared by every handler.
type responder struct {
	logger logrus.FieldLogger
}

// Helper function to send JSON responses.
func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	if err := types.WriteJSON(w, code, payload); err != nil {
		h.logger.WithError(err).Error("Failed to write JSON response")
	}
}

// respondWithData sends a success envelope.
func (h responder) respondWithData(w http.ResponseWriter, code int, message string, data interface{}) {
	h.respondWithJSON(w, code, types.Success(message, data))
}

// Helper function to send error responses.
func (h responder) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error() // Use the error message directly for invalid input
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusBadRequest
		message = "Insufficient funds"
	case util.IsError(err, util.ErrInsufficientShares):
		statusCode = http.StatusBadRequest
		message = "Not enough shares to sell"
	case util.IsError(err, util.ErrWalletNotFound):
		statusCode = http.StatusNotFound
		message = "Wallet not found"
	case util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "User not found"
	case util.IsError(err, util.ErrStockNotFound):
		statusCode = http.StatusNotFound
		message = "Stock not found"
	case util.IsError(err, util.ErrModuleNotFound):
		statusCode = http.StatusNotFound
		message = "Module not found"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid email or password"
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Authentication required"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Email is already registered"
	default:
		h.logger.WithError(err).Error("Unhandled service error")
	}

	h.respondWithJSON(w, statusCode, types.Error(message))
}

// decodeJSON reads the request body into dst. Malformed bodies are util.ErrInvalidInput.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", util.ErrInvalidInput)
	}
	return nil
}

// currentUserID returns the id stored by the auth middleware.
func currentUserID(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, util.ErrUnauthorized
	}
	return id, nil
}

// queryLimit parses the optional ?limit= parameter. Zero means "use the default".
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", util.ErrInvalidInput)
	}
	return limit, nil
}
