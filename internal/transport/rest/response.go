package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"caseflow/internal/domain"
)

type APIResponse struct {
	ErrorCode int         `json:"error_code"`
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

func Response(w http.ResponseWriter, message string, data interface{}, errorCode int, status string, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	response := APIResponse{
		ErrorCode: errorCode,
		Status:    status,
		Message:   message,
		Data:      data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("[HTTP] write response error: %v", err)
	}
}

func Success(w http.ResponseWriter, message string, data interface{}) {
	Response(w, message, data, 0, "success", http.StatusOK)
}

func SuccessCreated(w http.ResponseWriter, message string, data interface{}) {
	Response(w, message, data, 0, "success", http.StatusCreated)
}

func Error(w http.ResponseWriter, message string, errorCode int, httpStatus int) {
	Response(w, message, nil, errorCode, "error", httpStatus)
}

func ErrorBadRequest(w http.ResponseWriter, message string) {
	Error(w, message, 400, http.StatusBadRequest)
}

func ErrorUnauthorized(w http.ResponseWriter, message string) {
	Error(w, message, 401, http.StatusUnauthorized)
}

func ErrorForbidden(w http.ResponseWriter, message string) {
	Error(w, message, 403, http.StatusForbidden)
}

func ErrorNotFound(w http.ResponseWriter, message string) {
	Error(w, message, 404, http.StatusNotFound)
}

func ErrorConflict(w http.ResponseWriter, message string) {
	Error(w, message, 409, http.StatusConflict)
}

func ErrorInternal(w http.ResponseWriter, message string) {
	Error(w, message, 500, http.StatusInternalServerError)
}

// ErrorFromDomain maps the engine's error taxonomy onto distinct HTTP codes.
// Every rejected precondition surfaces as its own kind; nothing collapses into
// a generic failure.
func ErrorFromDomain(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidationError(err):
		ErrorBadRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		ErrorNotFound(w, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		ErrorConflict(w, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		ErrorForbidden(w, err.Error())
	default:
		log.Printf("[HTTP] internal error: %v", err)
		ErrorInternal(w, "internal error")
	}
}
