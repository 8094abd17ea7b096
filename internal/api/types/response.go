// internal/api/types/response.go
package types

import (
	"encoding/json"
	"net/http"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success wraps data in a success envelope.
func Success(message string, data interface{}) Response {
	return Response{Status: StatusSuccess, Message: message, Data: data}
}

// Error builds an error envelope.
func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// ListResponse defines a generic structure for bounded list responses.
// T represents the type of data contained in the 'Items' slice.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Limit int `json:"limit"`
	Count int `json:"count"`
}

// NewListResponse builds a ListResponse, never with a nil Items slice.
func NewListResponse[T any](items []T, limit int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Limit: limit, Count: len(items)}
}

// WriteJSON encodes payload with the given status code.
func WriteJSON(w http.ResponseWriter, code int, payload interface{}) error {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(response)
	return err
}
