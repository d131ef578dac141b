package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/middleware"
	"github.com/billbatista/chama360/notification"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func statusFor(code chama.Code) int {
	switch code {
	case chama.CodeNotFound:
		return http.StatusNotFound
	case chama.CodeInvalidInput, chama.CodeInvalidAmount:
		return http.StatusBadRequest
	case chama.CodeForbidden:
		return http.StatusForbidden
	case chama.CodeAlreadyMember,
		chama.CodeAlreadyResolved,
		chama.CodeVotingInProgress,
		chama.CodeDuplicateVote,
		chama.CodeExhaustedRetries:
		return http.StatusConflict
	case chama.CodeInsufficientFunds,
		chama.CodeCapacityExceeded,
		chama.CodeInvalidTarget,
		chama.CodeInviteInvalid,
		chama.CodeLoansDisabled,
		chama.CodeInvalidCandidate,
		chama.CodeNoActiveSession,
		chama.CodeSessionExpired:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, notification.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: string(chama.CodeNotFound), Message: err.Error()})
		return
	}

	code := chama.CodeOf(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeJSON(w, status, errorResponse{Code: string(chama.CodeInternal), Message: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: err.Error()})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: string(chama.CodeInvalidInput), Message: message})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		badRequest(w, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// actor is set by middleware.RequireActor on every route that calls it.
func actor(r *http.Request) uuid.UUID {
	id, _ := middleware.GetUserID(r.Context())
	return id
}
