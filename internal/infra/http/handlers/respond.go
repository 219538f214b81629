package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// writeUseCaseError traduz DomainError/TechnicalError em status HTTP.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, domainStatus(de), errorResponse{Success: false, Error: de.Message, Code: de.Code})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		writeJSON(w, technicalStatus(err), errorResponse{Success: false, Error: te.Message, Code: te.Code})
		return
	}

	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func domainStatus(de *usecase.DomainError) int {
	switch {
	case de.Code == "UNAUTHENTICATED":
		return http.StatusUnauthorized
	case errors.Is(de, entity.ErrLeadNotFound), errors.Is(de, entity.ErrCallNotFound):
		return http.StatusNotFound
	case errors.Is(de, entity.ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.Is(de, entity.ErrUsageLimitExceeded):
		return http.StatusTooManyRequests
	}
	return http.StatusBadRequest
}

func technicalStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrChannelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrChannelRejected):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
