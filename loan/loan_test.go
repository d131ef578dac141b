package loan

import (
	"testing"
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	chama  *chama.Chama
	ledger *ledger.Book
	loans  *Book
	admin  uuid.UUID
	member uuid.UUID
}

func newFixture(t *testing.T, allowLoans bool, balance int64) *fixture {
	t.Helper()
	admin, member := uuid.New(), uuid.New()
	c, err := chama.New(uuid.New(), chama.NewChamaInput{
		Name:                  "Savings Circle",
		ContributionAmount:    1000,
		ContributionFrequency: chama.FrequencyMonthly,
		AllowLoans:            allowLoans,
		LoanInterestRate:      10,
		CreatorID:             admin,
	}, testNow)
	require.NoError(t, err)
	_, err = c.AddMember(member, testNow)
	require.NoError(t, err)

	f := &fixture{chama: c, ledger: ledger.NewBook(), loans: NewBook(), admin: admin, member: member}
	if balance > 0 {
		_, err = f.ledger.Record(c, ledger.Entry{MemberID: admin, Type: ledger.TypeContribution, Amount: balance}, uuid.New(), testNow)
		require.NoError(t, err)
	}
	return f
}

func TestRequestLoan(t *testing.T) {
	f := newFixture(t, true, 10000)

	r, err := f.loans.Request(f.chama, f.member, 8000, " school fees ", uuid.New(), testNow)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPending, r.Status)
	assert.Equal(t, 10.0, r.InterestRate)
	assert.Equal(t, "school fees", r.Reason)
	assert.Equal(t, int64(8800), r.AmountDue())
	assert.Equal(t, int64(10000), f.chama.TotalBalance, "requests do not move money")
}

func TestRequestLoanFailures(t *testing.T) {
	tests := []struct {
		name       string
		allowLoans bool
		member     func(f *fixture) uuid.UUID
		amount     int64
		wantErr    error
	}{
		{name: "zero amount", allowLoans: true, amount: 0, wantErr: chama.ErrInvalidAmount},
		{name: "loans disabled", allowLoans: false, amount: 100, wantErr: chama.ErrLoansDisabled},
		{name: "above balance", allowLoans: true, amount: 15000, wantErr: chama.ErrInsufficientFunds},
		{name: "non member", allowLoans: true, amount: 100, member: func(*fixture) uuid.UUID { return uuid.New() }, wantErr: chama.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.allowLoans, 10000)
			member := f.member
			if tt.member != nil {
				member = tt.member(f)
			}
			_, err := f.loans.Request(f.chama, member, tt.amount, "", uuid.New(), testNow)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.loans.List())
		})
	}
}

func TestApproveLoan(t *testing.T) {
	f := newFixture(t, true, 10000)

	_, err := f.loans.Request(f.chama, f.member, 15000, "", uuid.New(), testNow)
	require.ErrorIs(t, err, chama.ErrInsufficientFunds)

	r, err := f.loans.Request(f.chama, f.member, 8000, "stock", uuid.New(), testNow)
	require.NoError(t, err)

	_, _, err = f.loans.Approve(f.chama, f.ledger, r.ID, f.member, uuid.New(), testNow, 0)
	require.ErrorIs(t, err, chama.ErrForbidden)

	txID := uuid.New()
	approved, tx, err := f.loans.Approve(f.chama, f.ledger, r.ID, f.admin, txID, testNow, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.admin, *approved.ApprovedBy)
	require.NotNil(t, approved.DueDate)
	assert.Equal(t, testNow.Add(30*24*time.Hour), *approved.DueDate)
	require.NotNil(t, approved.TransactionID)
	assert.Equal(t, txID, *approved.TransactionID)

	assert.Equal(t, ledger.TypeLoan, tx.Type)
	assert.Equal(t, ledger.StatusApproved, tx.Status)
	assert.Equal(t, int64(2000), f.chama.TotalBalance)
	m, _ := f.chama.Member(f.member)
	assert.Equal(t, int64(8000), m.TotalLoans)

	_, _, err = f.loans.Approve(f.chama, f.ledger, r.ID, f.admin, uuid.New(), testNow, 0)
	require.ErrorIs(t, err, chama.ErrAlreadyResolved)
	_, err = f.loans.Reject(f.chama, r.ID, f.admin)
	require.ErrorIs(t, err, chama.ErrAlreadyResolved)

	assert.Len(t, f.ledger.List(), 2, "second approval adds no ledger entry")
	assert.Equal(t, int64(2000), f.chama.TotalBalance)
}

func TestApproveLoanAfterBalanceDropped(t *testing.T) {
	f := newFixture(t, true, 10000)
	r, err := f.loans.Request(f.chama, f.member, 8000, "", uuid.New(), testNow)
	require.NoError(t, err)

	_, err = f.ledger.Record(f.chama, ledger.Entry{MemberID: f.admin, Type: ledger.TypeExpense, Amount: 5000}, uuid.New(), testNow)
	require.NoError(t, err)

	_, _, err = f.loans.Approve(f.chama, f.ledger, r.ID, f.admin, uuid.New(), testNow, 0)
	require.ErrorIs(t, err, chama.ErrInsufficientFunds)

	still, ok := f.loans.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, ledger.StatusPending, still.Status)
	assert.Equal(t, int64(5000), f.chama.TotalBalance)
}

func TestRejectLoan(t *testing.T) {
	f := newFixture(t, true, 10000)
	r, err := f.loans.Request(f.chama, f.member, 3000, "", uuid.New(), testNow)
	require.NoError(t, err)

	_, err = f.loans.Reject(f.chama, r.ID, f.member)
	require.ErrorIs(t, err, chama.ErrForbidden)
	_, err = f.loans.Reject(f.chama, uuid.New(), f.admin)
	require.ErrorIs(t, err, chama.ErrNotFound)

	rejected, err := f.loans.Reject(f.chama, r.ID, f.admin)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusRejected, rejected.Status)
	assert.Nil(t, rejected.TransactionID)

	_, err = f.loans.Reject(f.chama, r.ID, f.admin)
	require.ErrorIs(t, err, chama.ErrAlreadyResolved)
	assert.Len(t, f.ledger.List(), 1)
	assert.Equal(t, int64(10000), f.chama.TotalBalance)
}
