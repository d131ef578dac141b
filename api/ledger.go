package api

import (
	"log/slog"
	"net/http"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/ledger"
	"github.com/billbatista/chama360/loan"
	"github.com/google/uuid"
)

type amountRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type contributionRequest struct {
	Amount            int64  `json:"amount"`
	ExternalReference string `json:"external_reference"`
}

type transactionRequest struct {
	Type              ledger.Type   `json:"type"`
	Amount            int64         `json:"amount"`
	Description       string        `json:"description"`
	Status            ledger.Status `json:"status"`
	ExternalReference string        `json:"external_reference"`
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	txs, err := h.svc.Transactions(chamaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// recordTransaction records a transaction of any type for the acting member.
// Recording it as approved makes the actor its approver.
func (h *Handler) recordTransaction(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	var req transactionRequest
	if !decode(w, r, &req) {
		return
	}

	e := ledger.Entry{
		MemberID:          actor(r),
		Type:              req.Type,
		Amount:            req.Amount,
		Description:       req.Description,
		Status:            req.Status,
		ExternalReference: req.ExternalReference,
	}
	if req.Status == ledger.StatusApproved {
		e.ApprovedBy = actor(r)
	}

	tx, err := h.svc.RecordTransaction(chamaID, e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) recordContribution(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	var req contributionRequest
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.svc.RecordContribution(chamaID, actor(r), req.Amount, req.ExternalReference)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.svc.RecordExpense(chamaID, actor(r), req.Amount, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) requestWithdrawal(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	tx, err := h.svc.RequestWithdrawal(chamaID, actor(r), req.Amount, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	txID, ok := pathID(w, r, "txID")
	if !ok {
		return
	}
	tx, err := h.svc.Transaction(txID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) approveTransaction(w http.ResponseWriter, r *http.Request) {
	txID, ok := pathID(w, r, "txID")
	if !ok {
		return
	}
	tx, err := h.svc.ApproveTransaction(txID, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) rejectTransaction(w http.ResponseWriter, r *http.Request) {
	txID, ok := pathID(w, r, "txID")
	if !ok {
		return
	}
	tx, err := h.svc.RejectTransaction(txID, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type loanRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type loanResponse struct {
	loan.Request
	AmountDue int64 `json:"amount_due"`
}

type loanApprovalResponse struct {
	Loan        loanResponse       `json:"loan"`
	Transaction ledger.Transaction `json:"transaction"`
}

func newLoanResponse(req loan.Request) loanResponse {
	return loanResponse{Request: req, AmountDue: req.AmountDue()}
}

func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	loans, err := h.svc.LoanRequests(chamaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]loanResponse, len(loans))
	for i, l := range loans {
		out[i] = newLoanResponse(l)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) requestLoan(w http.ResponseWriter, r *http.Request) {
	chamaID, ok := pathID(w, r, "chamaID")
	if !ok {
		return
	}
	var req loanRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.svc.RequestLoan(chamaID, actor(r), req.Amount, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newLoanResponse(l))
}

func (h *Handler) getLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanID")
	if !ok {
		return
	}
	l, err := h.svc.Loan(loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLoanResponse(l))
}

func (h *Handler) approveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanID")
	if !ok {
		return
	}
	l, tx, err := h.svc.ApproveLoan(loanID, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loanApprovalResponse{Loan: newLoanResponse(l), Transaction: tx})
}

func (h *Handler) rejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanID")
	if !ok {
		return
	}
	l, err := h.svc.RejectLoan(loanID, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLoanResponse(l))
}

type paymentCallback struct {
	ChamaID   uuid.UUID `json:"chama_id"`
	MemberID  uuid.UUID `json:"member_id"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
}

// paymentWebhook turns a completed gateway payment into a contribution.
// Retried callbacks carry the same reference and are absorbed by the ledger;
// a reused reference with different details is rejected.
func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var p paymentCallback
	if !decode(w, r, &p) {
		return
	}
	if p.Reference == "" {
		badRequest(w, "reference is required")
		return
	}
	if p.Status != "completed" {
		slog.Info("ignoring payment callback", "reference", p.Reference, "status", p.Status)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	tx, err := h.svc.RecordContribution(p.ChamaID, p.MemberID, p.Amount, p.Reference)
	if err != nil {
		if chama.CodeOf(err) != chama.CodeInternal {
			slog.Warn("payment callback rejected", "reference", p.Reference, "error", err)
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
