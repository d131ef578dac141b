package service

import (
	"fmt"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/ledger"
	"github.com/billbatista/chama360/notification"
	"github.com/google/uuid"
)

// RecordTransaction appends a transaction of any type to a chama's ledger.
func (s *Service) RecordTransaction(chamaID uuid.UUID, e ledger.Entry) (tx ledger.Transaction, err error) {
	defer func() { s.metrics.observe("record_transaction", err) }()
	return s.record(chamaID, e)
}

// RecordContribution credits a completed payment. Replaying an external
// reference already seen in the chama returns the original transaction.
func (s *Service) RecordContribution(chamaID, memberID uuid.UUID, amount int64, externalRef string) (tx ledger.Transaction, err error) {
	defer func() { s.metrics.observe("record_contribution", err) }()
	return s.record(chamaID, ledger.Entry{
		MemberID:          memberID,
		Type:              ledger.TypeContribution,
		Amount:            amount,
		Description:       "Contribution",
		ExternalReference: externalRef,
	})
}

func (s *Service) RecordExpense(chamaID, adminID uuid.UUID, amount int64, description string) (tx ledger.Transaction, err error) {
	defer func() { s.metrics.observe("record_expense", err) }()
	return s.record(chamaID, ledger.Entry{
		MemberID:    adminID,
		Type:        ledger.TypeExpense,
		Amount:      amount,
		Description: description,
	})
}

// RequestWithdrawal files a pending withdrawal for the admin to resolve.
func (s *Service) RequestWithdrawal(chamaID, memberID uuid.UUID, amount int64, description string) (tx ledger.Transaction, err error) {
	defer func() { s.metrics.observe("request_withdrawal", err) }()
	return s.record(chamaID, ledger.Entry{
		MemberID:    memberID,
		Type:        ledger.TypeWithdrawal,
		Amount:      amount,
		Description: description,
		Status:      ledger.StatusPending,
	})
}

func (s *Service) record(chamaID uuid.UUID, e ledger.Entry) (ledger.Transaction, error) {
	var (
		tx        ledger.Transaction
		balance   int64
		admin     uuid.UUID
		duplicate bool
	)
	err := s.locked(chamaID, func(g *Group) error {
		if existing, ok := g.Ledger.ByReference(e.ExternalReference); ok {
			if !isReplay(existing, e) {
				return chama.ErrReferenceConflict
			}
			tx, duplicate = existing, true
			return nil
		}

		id := s.newID()
		if err := s.claim(transactionKey(id), chamaID); err != nil {
			return err
		}
		var err error
		tx, err = g.Ledger.Record(g.Chama, e, id, s.now())
		if err != nil {
			s.store.Release(transactionKey(id))
			return err
		}
		balance = g.Chama.TotalBalance
		admin = g.Chama.AdminID
		return nil
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	if duplicate {
		return tx, nil
	}

	s.metrics.approved(tx)
	s.emit(recordedEventType(tx.Type), chamaID, e.MemberID, ledger.NewRecordedEvent(tx, balance))
	switch {
	case tx.Type == ledger.TypeContribution:
		s.notify([]uuid.UUID{tx.MemberID}, chamaID, notification.TypeContribution,
			"Contribution received", fmt.Sprintf("Your contribution of %d cents was recorded.", tx.Amount))
	case tx.Status == ledger.StatusPending:
		s.notify([]uuid.UUID{admin}, chamaID, notification.TypeGeneral,
			"Approval needed", fmt.Sprintf("A %s of %d cents is waiting for approval.", tx.Type, tx.Amount))
	}
	return tx, nil
}

// isReplay reports whether e repeats the contribution already recorded
// under its external reference.
func isReplay(existing ledger.Transaction, e ledger.Entry) bool {
	return e.Type == ledger.TypeContribution &&
		existing.Type == ledger.TypeContribution &&
		existing.MemberID == e.MemberID &&
		existing.Amount == e.Amount
}

func (s *Service) ApproveTransaction(txID, approverID uuid.UUID) (tx ledger.Transaction, err error) {
	defer func() { s.metrics.observe("approve_transaction", err) }()
	return s.resolve(txID, approverID, true)
}

func (s *Service) RejectTransaction(txID, approverID uuid.UUID) (tx ledger.Transaction, err error) {
	defer func() { s.metrics.observe("reject_transaction", err) }()
	return s.resolve(txID, approverID, false)
}

func (s *Service) resolve(txID, approverID uuid.UUID, approve bool) (ledger.Transaction, error) {
	var (
		tx      ledger.Transaction
		balance int64
	)
	err := s.lockedBy(transactionKey(txID), func(g *Group) error {
		var err error
		if approve {
			tx, err = g.Ledger.Approve(g.Chama, txID, approverID, s.now())
		} else {
			tx, err = g.Ledger.Reject(g.Chama, txID, approverID)
		}
		balance = g.Chama.TotalBalance
		return err
	})
	if err != nil {
		return ledger.Transaction{}, err
	}

	s.metrics.approved(tx)
	s.emit(EventTxResolved, tx.ChamaID, approverID, ledger.NewResolvedEvent(tx, balance))
	s.notify([]uuid.UUID{tx.MemberID}, tx.ChamaID, notification.TypeGeneral,
		"Transaction "+string(tx.Status), fmt.Sprintf("Your %s of %d cents was %s.", tx.Type, tx.Amount, tx.Status))
	return tx, nil
}

func (s *Service) Transactions(chamaID uuid.UUID) (out []ledger.Transaction, err error) {
	err = s.locked(chamaID, func(g *Group) error {
		out = g.Ledger.List()
		return nil
	})
	return out, err
}

// Transaction looks up a single transaction by id.
func (s *Service) Transaction(txID uuid.UUID) (tx ledger.Transaction, err error) {
	err = s.lockedBy(transactionKey(txID), func(g *Group) error {
		var ok bool
		if tx, ok = g.Ledger.Get(txID); !ok {
			return chama.ErrNotFound
		}
		return nil
	})
	return tx, err
}
