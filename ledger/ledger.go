package ledger

import (
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/google/uuid"
)

type Type string

const (
	TypeContribution  Type = "contribution"
	TypeLoan          Type = "loan"
	TypeWithdrawal    Type = "withdrawal"
	TypeExpense       Type = "expense"
	TypeLoanRepayment Type = "loan_repayment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeContribution, TypeLoan, TypeWithdrawal, TypeExpense, TypeLoanRepayment:
		return true
	default:
		return false
	}
}

// debits reports whether an approved transaction of this type leaves the
// chama balance.
func (t Type) debits() bool {
	return t == TypeLoan || t == TypeWithdrawal || t == TypeExpense
}

// Status is shared by transactions and loan requests. The only legal
// transition is pending to approved or rejected, once.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

func (s Status) Resolved() bool {
	return s == StatusApproved || s == StatusRejected
}

// Transition validates moving from s to next.
func (s Status) Transition(next Status) error {
	if s != StatusPending {
		return chama.ErrAlreadyResolved
	}
	if !next.Resolved() {
		return chama.ErrInvalidStatus
	}
	return nil
}

type Transaction struct {
	ID                uuid.UUID  `json:"id"`
	ChamaID           uuid.UUID  `json:"chama_id"`
	MemberID          uuid.UUID  `json:"member_id"`
	Type              Type       `json:"type"`
	Amount            int64      `json:"amount"` // cents
	Description       string     `json:"description,omitempty"`
	Date              time.Time  `json:"date"`
	Status            Status     `json:"status"`
	ApprovedBy        *uuid.UUID `json:"approved_by,omitempty"`
	ExternalReference string     `json:"external_reference,omitempty"`
}

func (t Transaction) clone() Transaction {
	if t.ApprovedBy != nil {
		id := *t.ApprovedBy
		t.ApprovedBy = &id
	}
	return t
}

// Reconcile recomputes a chama balance from its approved transactions.
func Reconcile(txs []Transaction) int64 {
	var balance int64
	for _, tx := range txs {
		if tx.Status != StatusApproved {
			continue
		}
		switch {
		case tx.Type == TypeContribution:
			balance += tx.Amount
		case tx.Type.debits():
			balance -= tx.Amount
		}
	}
	return balance
}

// Totals mirrors the per-member aggregates kept on chama.Member.
type Totals struct {
	Contributions int64
	Loans         int64
	Withdrawals   int64
}

// MemberTotals recomputes per-member aggregates from approved transactions.
func MemberTotals(txs []Transaction) map[uuid.UUID]Totals {
	totals := make(map[uuid.UUID]Totals)
	for _, tx := range txs {
		if tx.Status != StatusApproved {
			continue
		}
		t := totals[tx.MemberID]
		switch tx.Type {
		case TypeContribution:
			t.Contributions += tx.Amount
		case TypeLoan:
			t.Loans += tx.Amount
		case TypeWithdrawal:
			t.Withdrawals += tx.Amount
		}
		totals[tx.MemberID] = t
	}
	return totals
}
