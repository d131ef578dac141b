package service

import (
	"fmt"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/ledger"
	"github.com/billbatista/chama360/loan"
	"github.com/billbatista/chama360/notification"
	"github.com/google/uuid"
)

func (s *Service) RequestLoan(chamaID, memberID uuid.UUID, amount int64, reason string) (req loan.Request, err error) {
	defer func() { s.metrics.observe("request_loan", err) }()

	var admin uuid.UUID
	err = s.locked(chamaID, func(g *Group) error {
		id := s.newID()
		if err := s.claim(loanKey(id), chamaID); err != nil {
			return err
		}
		var err error
		req, err = g.Loans.Request(g.Chama, memberID, amount, reason, id, s.now())
		if err != nil {
			s.store.Release(loanKey(id))
			return err
		}
		admin = g.Chama.AdminID
		return nil
	})
	if err != nil {
		return loan.Request{}, err
	}

	s.emit(EventLoanRequested, chamaID, memberID, req)
	s.notify([]uuid.UUID{admin}, chamaID, notification.TypeLoanRequest,
		"Loan request", fmt.Sprintf("A member requested a loan of %d cents.", req.Amount))
	return req, nil
}

// ApproveLoan disburses a pending loan and returns the updated request along
// with the loan transaction it produced.
func (s *Service) ApproveLoan(loanID, approverID uuid.UUID) (req loan.Request, tx ledger.Transaction, err error) {
	defer func() { s.metrics.observe("approve_loan", err) }()

	var balance int64
	err = s.lockedBy(loanKey(loanID), func(g *Group) error {
		txID := s.newID()
		if err := s.claim(transactionKey(txID), g.Chama.ID); err != nil {
			return err
		}
		var err error
		req, tx, err = g.Loans.Approve(g.Chama, g.Ledger, loanID, approverID, txID, s.now(), s.loanTerm)
		if err != nil {
			s.store.Release(transactionKey(txID))
			return err
		}
		balance = g.Chama.TotalBalance
		return nil
	})
	if err != nil {
		return loan.Request{}, ledger.Transaction{}, err
	}

	s.metrics.approved(tx)
	s.emit(EventLoanApproved, req.ChamaID, approverID, req)
	s.emit(recordedEventType(tx.Type), req.ChamaID, approverID, ledger.NewRecordedEvent(tx, balance))
	s.notify([]uuid.UUID{req.MemberID}, req.ChamaID, notification.TypeLoanApproved,
		"Loan approved", fmt.Sprintf("Your loan of %d cents was approved. Amount due: %d cents.", req.Amount, req.AmountDue()))
	return req, tx, nil
}

func (s *Service) RejectLoan(loanID, approverID uuid.UUID) (req loan.Request, err error) {
	defer func() { s.metrics.observe("reject_loan", err) }()

	err = s.lockedBy(loanKey(loanID), func(g *Group) error {
		var err error
		req, err = g.Loans.Reject(g.Chama, loanID, approverID)
		return err
	})
	if err != nil {
		return loan.Request{}, err
	}

	s.emit(EventLoanRejected, req.ChamaID, approverID, req)
	s.notify([]uuid.UUID{req.MemberID}, req.ChamaID, notification.TypeGeneral,
		"Loan declined", fmt.Sprintf("Your loan request of %d cents was declined.", req.Amount))
	return req, nil
}

func (s *Service) LoanRequests(chamaID uuid.UUID) (out []loan.Request, err error) {
	err = s.locked(chamaID, func(g *Group) error {
		out = g.Loans.List()
		return nil
	})
	return out, err
}

func (s *Service) Loan(loanID uuid.UUID) (req loan.Request, err error) {
	err = s.lockedBy(loanKey(loanID), func(g *Group) error {
		var ok bool
		if req, ok = g.Loans.Get(loanID); !ok {
			return chama.ErrNotFound
		}
		return nil
	})
	return req, err
}
