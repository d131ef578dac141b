package api

import (
	"net/http"

	"github.com/billbatista/chama360/voting"
	"github.com/google/uuid"
)

type startVotingRequest struct {
	ProposedAdminID uuid.UUID `json:"proposed_admin_id"`
}

type votingSessionResponse struct {
	Open    bool            `json:"open"`
	Session *voting.Session `json:"session,omitempty"`
}

func (h *Handler) votingSession(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	session, open, err := h.svc.VotingSession(chamaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := votingSessionResponse{Open: open}
	if open {
		resp.Session = &session
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) startVoting(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	var req startVotingRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := h.svc.StartVoting(chamaID, actor(r), req.ProposedAdminID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// castVote returns the session after the vote; a resolved state means the
// proposed member is now admin.
func (h *Handler) castVote(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	session, err := h.svc.CastVote(chamaID, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
