package ledger

import "time"

// TransactionRecordedEvent is journaled when a transaction is appended.
type TransactionRecordedEvent struct {
	TransactionID     string    `json:"transaction_id"`
	MemberID          string    `json:"member_id"`
	Type              Type      `json:"type"`
	AmountCents       int64     `json:"amount_cents"`
	Status            Status    `json:"status"`
	ExternalReference string    `json:"external_reference,omitempty"` // payment gateway receipt
	BalanceCents      int64     `json:"balance_cents"`                // chama balance after the transaction
	Date              time.Time `json:"date"`
}

// TransactionResolvedEvent is journaled when a pending transaction is
// approved or rejected.
type TransactionResolvedEvent struct {
	TransactionID string `json:"transaction_id"`
	ResolvedBy    string `json:"resolved_by"`
	Status        Status `json:"status"`
	BalanceCents  int64  `json:"balance_cents"`
}

func NewRecordedEvent(tx Transaction, balance int64) TransactionRecordedEvent {
	return TransactionRecordedEvent{
		TransactionID:     tx.ID.String(),
		MemberID:          tx.MemberID.String(),
		Type:              tx.Type,
		AmountCents:       tx.Amount,
		Status:            tx.Status,
		ExternalReference: tx.ExternalReference,
		BalanceCents:      balance,
		Date:              tx.Date,
	}
}

func NewResolvedEvent(tx Transaction, balance int64) TransactionResolvedEvent {
	e := TransactionResolvedEvent{
		TransactionID: tx.ID.String(),
		Status:        tx.Status,
		BalanceCents:  balance,
	}
	if tx.ApprovedBy != nil {
		e.ResolvedBy = tx.ApprovedBy.String()
	}
	return e
}
