package ledger

import (
	"strings"
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/google/uuid"
)

// Entry describes a transaction to record.
type Entry struct {
	MemberID          uuid.UUID
	Type              Type
	Amount            int64
	Description       string
	Status            Status
	ExternalReference string
	// ApprovedBy is required when a loan or withdrawal is recorded already
	// approved.
	ApprovedBy uuid.UUID
}

// Book is the append-only transaction record of one chama. It keeps the
// chama's balance and member totals in step with every approved entry.
type Book struct {
	txs   []*Transaction
	byID  map[uuid.UUID]*Transaction
	byRef map[string]*Transaction
}

func NewBook() *Book {
	return &Book{
		byID:  make(map[uuid.UUID]*Transaction),
		byRef: make(map[string]*Transaction),
	}
}

// Record appends a transaction. Contributions and expenses are approved on
// creation; other types start in the requested status.
func (b *Book) Record(c *chama.Chama, e Entry, id uuid.UUID, now time.Time) (Transaction, error) {
	if e.Amount <= 0 {
		return Transaction{}, chama.ErrInvalidAmount
	}
	if !e.Type.Valid() {
		return Transaction{}, chama.ErrInvalidType
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	if !e.Status.Valid() {
		return Transaction{}, chama.ErrInvalidStatus
	}
	if !c.IsActiveMember(e.MemberID) {
		return Transaction{}, chama.ErrForbidden
	}
	if _, taken := b.ByReference(e.ExternalReference); taken {
		return Transaction{}, chama.ErrReferenceConflict
	}

	tx := &Transaction{
		ID:                id,
		ChamaID:           c.ID,
		MemberID:          e.MemberID,
		Type:              e.Type,
		Amount:            e.Amount,
		Description:       strings.TrimSpace(e.Description),
		Date:              now.UTC(),
		Status:            e.Status,
		ExternalReference: strings.TrimSpace(e.ExternalReference),
	}

	approver := e.ApprovedBy
	switch e.Type {
	case TypeContribution:
		tx.Status = StatusApproved
		approver = e.MemberID
	case TypeExpense:
		if !c.IsAdmin(e.MemberID) {
			return Transaction{}, chama.ErrForbidden
		}
		tx.Status = StatusApproved
		approver = e.MemberID
	default:
		if tx.Status == StatusApproved && !c.IsAdmin(approver) {
			return Transaction{}, chama.ErrForbidden
		}
	}

	if tx.Status == StatusApproved {
		if err := checkFunds(c, tx); err != nil {
			return Transaction{}, err
		}
		apply(c, tx, now)
		tx.ApprovedBy = &approver
	}

	b.append(tx)
	return tx.clone(), nil
}

// Approve resolves a pending transaction and applies its balance effect.
func (b *Book) Approve(c *chama.Chama, txID, approverID uuid.UUID, now time.Time) (Transaction, error) {
	tx, err := b.pending(c, txID, approverID, StatusApproved)
	if err != nil {
		return Transaction{}, err
	}
	if err := checkFunds(c, tx); err != nil {
		return Transaction{}, err
	}

	apply(c, tx, now)
	tx.Status = StatusApproved
	tx.ApprovedBy = &approverID
	return tx.clone(), nil
}

// Reject resolves a pending transaction without touching balances.
func (b *Book) Reject(c *chama.Chama, txID, approverID uuid.UUID) (Transaction, error) {
	tx, err := b.pending(c, txID, approverID, StatusRejected)
	if err != nil {
		return Transaction{}, err
	}

	tx.Status = StatusRejected
	tx.ApprovedBy = &approverID
	return tx.clone(), nil
}

func (b *Book) pending(c *chama.Chama, txID, approverID uuid.UUID, next Status) (*Transaction, error) {
	tx, ok := b.byID[txID]
	if !ok {
		return nil, chama.ErrNotFound
	}
	if !c.IsAdmin(approverID) {
		return nil, chama.ErrForbidden
	}
	if err := tx.Status.Transition(next); err != nil {
		return nil, err
	}
	return tx, nil
}

func (b *Book) append(tx *Transaction) {
	b.txs = append(b.txs, tx)
	b.byID[tx.ID] = tx
	if tx.ExternalReference != "" {
		b.byRef[tx.ExternalReference] = tx
	}
}

func (b *Book) Get(id uuid.UUID) (Transaction, bool) {
	tx, ok := b.byID[id]
	if !ok {
		return Transaction{}, false
	}
	return tx.clone(), true
}

// ByReference finds a transaction by its payment-gateway reference.
func (b *Book) ByReference(ref string) (Transaction, bool) {
	tx, ok := b.byRef[strings.TrimSpace(ref)]
	if !ok || ref == "" {
		return Transaction{}, false
	}
	return tx.clone(), true
}

// List returns all transactions in recording order.
func (b *Book) List() []Transaction {
	out := make([]Transaction, len(b.txs))
	for i, tx := range b.txs {
		out[i] = tx.clone()
	}
	return out
}

func checkFunds(c *chama.Chama, tx *Transaction) error {
	if tx.Type.debits() && tx.Amount > c.TotalBalance {
		return chama.ErrInsufficientFunds
	}
	return nil
}

// apply moves the balance and member totals for an approved transaction.
// Callers must have run checkFunds first.
func apply(c *chama.Chama, tx *Transaction, now time.Time) {
	m, _ := c.Member(tx.MemberID)

	switch tx.Type {
	case TypeContribution:
		c.TotalBalance += tx.Amount
		if m != nil {
			m.TotalContributions += tx.Amount
			at := now.UTC()
			m.LastContributionAt = &at
		}
	case TypeLoan:
		c.TotalBalance -= tx.Amount
		if m != nil {
			m.TotalLoans += tx.Amount
		}
	case TypeWithdrawal:
		c.TotalBalance -= tx.Amount
		if m != nil {
			m.TotalWithdrawals += tx.Amount
		}
	case TypeExpense:
		c.TotalBalance -= tx.Amount
	}
}
