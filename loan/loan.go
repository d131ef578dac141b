// Package loan implements the loan request lifecycle on top of the ledger.
package loan

import (
	"math"
	"strings"
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/ledger"
	"github.com/google/uuid"
)

type Request struct {
	ID            uuid.UUID     `json:"id"`
	ChamaID       uuid.UUID     `json:"chama_id"`
	MemberID      uuid.UUID     `json:"member_id"`
	Amount        int64         `json:"amount"` // cents
	Reason        string        `json:"reason"`
	RequestDate   time.Time     `json:"request_date"`
	Status        ledger.Status `json:"status"`
	ApprovedBy    *uuid.UUID    `json:"approved_by,omitempty"`
	InterestRate  float64       `json:"interest_rate"` // percent, fixed at request time
	DueDate       *time.Time    `json:"due_date,omitempty"`
	TransactionID *uuid.UUID    `json:"transaction_id,omitempty"`
}

// AmountDue is the principal plus simple interest, rounded to the cent.
func (r Request) AmountDue() int64 {
	interest := math.Round(float64(r.Amount) * r.InterestRate / 100)
	return r.Amount + int64(interest)
}

func (r Request) clone() Request {
	if r.ApprovedBy != nil {
		id := *r.ApprovedBy
		r.ApprovedBy = &id
	}
	if r.DueDate != nil {
		d := *r.DueDate
		r.DueDate = &d
	}
	if r.TransactionID != nil {
		id := *r.TransactionID
		r.TransactionID = &id
	}
	return r
}

// Book holds the loan requests of one chama.
type Book struct {
	requests []*Request
	byID     map[uuid.UUID]*Request
}

func NewBook() *Book {
	return &Book{byID: make(map[uuid.UUID]*Request)}
}

// Request files a pending loan request for memberID.
func (b *Book) Request(c *chama.Chama, memberID uuid.UUID, amount int64, reason string, id uuid.UUID, now time.Time) (Request, error) {
	if amount <= 0 {
		return Request{}, chama.ErrInvalidAmount
	}
	if !c.IsActiveMember(memberID) {
		return Request{}, chama.ErrForbidden
	}
	if !c.AllowLoans {
		return Request{}, chama.ErrLoansDisabled
	}
	if amount > c.TotalBalance {
		return Request{}, chama.ErrInsufficientFunds
	}

	r := &Request{
		ID:           id,
		ChamaID:      c.ID,
		MemberID:     memberID,
		Amount:       amount,
		Reason:       strings.TrimSpace(reason),
		RequestDate:  now.UTC(),
		Status:       ledger.StatusPending,
		InterestRate: c.LoanInterestRate,
	}
	b.requests = append(b.requests, r)
	b.byID[r.ID] = r
	return r.clone(), nil
}

// Approve disburses a pending loan through the ledger. term sets the due date
// relative to now; zero leaves it unset.
func (b *Book) Approve(c *chama.Chama, book *ledger.Book, loanID, approverID, txID uuid.UUID, now time.Time, term time.Duration) (Request, ledger.Transaction, error) {
	r, err := b.pending(c, loanID, approverID, ledger.StatusApproved)
	if err != nil {
		return Request{}, ledger.Transaction{}, err
	}

	tx, err := book.Record(c, ledger.Entry{
		MemberID:    r.MemberID,
		Type:        ledger.TypeLoan,
		Amount:      r.Amount,
		Description: r.Reason,
		Status:      ledger.StatusApproved,
		ApprovedBy:  approverID,
	}, txID, now)
	if err != nil {
		return Request{}, ledger.Transaction{}, err
	}

	r.Status = ledger.StatusApproved
	r.ApprovedBy = &approverID
	r.TransactionID = &tx.ID
	if term > 0 {
		due := now.UTC().Add(term)
		r.DueDate = &due
	}
	return r.clone(), tx, nil
}

// Reject closes a pending loan with no ledger effect.
func (b *Book) Reject(c *chama.Chama, loanID, approverID uuid.UUID) (Request, error) {
	r, err := b.pending(c, loanID, approverID, ledger.StatusRejected)
	if err != nil {
		return Request{}, err
	}

	r.Status = ledger.StatusRejected
	r.ApprovedBy = &approverID
	return r.clone(), nil
}

func (b *Book) pending(c *chama.Chama, loanID, approverID uuid.UUID, next ledger.Status) (*Request, error) {
	r, ok := b.byID[loanID]
	if !ok {
		return nil, chama.ErrNotFound
	}
	if !c.IsAdmin(approverID) {
		return nil, chama.ErrForbidden
	}
	if err := r.Status.Transition(next); err != nil {
		return nil, err
	}
	return r, nil
}

func (b *Book) Get(id uuid.UUID) (Request, bool) {
	r, ok := b.byID[id]
	if !ok {
		return Request{}, false
	}
	return r.clone(), true
}

// List returns all requests in filing order.
func (b *Book) List() []Request {
	out := make([]Request, len(b.requests))
	for i, r := range b.requests {
		out[i] = r.clone()
	}
	return out
}
