package api

import (
	"net/http"
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/go-chi/chi/v5"
)

type createChamaRequest struct {
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	ContributionAmount    int64           `json:"contribution_amount"`
	ContributionFrequency chama.Frequency `json:"contribution_frequency"`
	IsPublic              bool            `json:"is_public"`
	MaxMembers            int             `json:"max_members"`
	AllowLoans            bool            `json:"allow_loans"`
	LoanInterestRate      float64         `json:"loan_interest_rate"`
}

func (h *Handler) createChama(w http.ResponseWriter, r *http.Request) {
	var req createChamaRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.svc.CreateChama(chama.NewChamaInput{
		Name:                  req.Name,
		Description:           req.Description,
		ContributionAmount:    req.ContributionAmount,
		ContributionFrequency: req.ContributionFrequency,
		IsPublic:              req.IsPublic,
		MaxMembers:            req.MaxMembers,
		AllowLoans:            req.AllowLoans,
		LoanInterestRate:      req.LoanInterestRate,
		CreatorID:             actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) memberChamas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.MemberChamas(actor(r)))
}

func (h *Handler) availableChamas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.AvailableChamas(actor(r)))
}

func (h *Handler) getChama(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	c, err := h.svc.Chama(chamaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) joinChama(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	c, err := h.svc.JoinChama(chamaID, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberID")
	if !ok {
		return
	}
	c, err := h.svc.RemoveMember(chamaID, actor(r), memberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type issueInviteRequest struct {
	TTL     string `json:"ttl"` // Go duration; empty uses the configured default
	MaxUses int    `json:"max_uses"`
}

func (h *Handler) issueInvite(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	var req issueInviteRequest
	if !decode(w, r, &req) {
		return
	}
	var ttl time.Duration
	if req.TTL != "" {
		var err error
		if ttl, err = time.ParseDuration(req.TTL); err != nil || ttl <= 0 {
			badRequest(w, "invalid ttl")
			return
		}
	}

	invite, err := h.svc.IssueInvite(chamaID, actor(r), ttl, req.MaxUses)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

func (h *Handler) listInvites(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	invites, err := h.svc.Invites(chamaID, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

func (h *Handler) revokeInvite(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	invite, err := h.svc.RevokeInvite(chamaID, actor(r), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invite)
}

func (h *Handler) redeemInvite(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.RedeemInvite(chi.URLParam(r, "code"), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
