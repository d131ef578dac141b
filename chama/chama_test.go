package chama

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestChama(t *testing.T, maxMembers int) (*Chama, uuid.UUID) {
	t.Helper()
	admin := uuid.New()
	c, err := New(uuid.New(), NewChamaInput{
		Name:                  "Family Investment Group",
		ContributionAmount:    500000,
		ContributionFrequency: FrequencyMonthly,
		MaxMembers:            maxMembers,
		AllowLoans:            true,
		LoanInterestRate:      5,
		CreatorID:             admin,
	}, testNow)
	require.NoError(t, err)
	return c, admin
}

func TestNew(t *testing.T) {
	c, admin := newTestChama(t, 0)

	assert.Equal(t, admin, c.AdminID)
	require.Len(t, c.Members, 1)
	assert.True(t, c.Members[0].IsActive)
	assert.Equal(t, admin, c.Members[0].UserID)
	assert.Zero(t, c.TotalBalance)
	assert.Equal(t, testNow.Add(30*24*time.Hour), c.NextContributionDate)
}

func TestNewValidation(t *testing.T) {
	valid := NewChamaInput{
		Name:                  "Group",
		ContributionAmount:    100,
		ContributionFrequency: FrequencyWeekly,
		CreatorID:             uuid.New(),
	}

	tests := []struct {
		name    string
		mutate  func(in *NewChamaInput)
		wantErr *Error
	}{
		{name: "blank name", mutate: func(in *NewChamaInput) { in.Name = "  " }, wantErr: ErrEmptyName},
		{name: "zero contribution", mutate: func(in *NewChamaInput) { in.ContributionAmount = 0 }, wantErr: ErrInvalidAmount},
		{name: "unknown frequency", mutate: func(in *NewChamaInput) { in.ContributionFrequency = "daily" }, wantErr: ErrInvalidFrequency},
		{name: "negative rate", mutate: func(in *NewChamaInput) { in.LoanInterestRate = -1 }, wantErr: ErrInvalidRate},
		{name: "negative max members", mutate: func(in *NewChamaInput) { in.MaxMembers = -2 }, wantErr: ErrInvalidMaxMembers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := New(uuid.New(), in, testNow)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantErr.Code, CodeOf(err))
		})
	}
}

func TestAddMember(t *testing.T) {
	c, admin := newTestChama(t, 3)
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	_, err := c.AddMember(admin, testNow)
	require.ErrorIs(t, err, ErrAlreadyMember)

	_, err = c.AddMember(alice, testNow)
	require.NoError(t, err)
	_, err = c.AddMember(bob, testNow)
	require.NoError(t, err)

	_, err = c.AddMember(carol, testNow)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Len(t, c.Members, 3)

	ids := c.ActiveMemberIDs()
	assert.Equal(t, []uuid.UUID{admin, alice, bob}, ids, "join order is preserved")
}

func TestDeactivateMember(t *testing.T) {
	c, admin := newTestChama(t, 0)
	alice, bob := uuid.New(), uuid.New()
	_, err := c.AddMember(alice, testNow)
	require.NoError(t, err)
	_, err = c.AddMember(bob, testNow)
	require.NoError(t, err)
	m, _ := c.Member(bob)
	m.TotalContributions = 1200

	require.ErrorIs(t, c.DeactivateMember(bob, alice), ErrForbidden)
	require.ErrorIs(t, c.DeactivateMember(admin, admin), ErrInvalidTarget)
	require.ErrorIs(t, c.DeactivateMember(uuid.New(), admin), ErrInvalidTarget)

	require.NoError(t, c.DeactivateMember(bob, admin))
	m, ok := c.Member(bob)
	require.True(t, ok)
	assert.False(t, m.IsActive)
	assert.Equal(t, int64(1200), m.TotalContributions, "totals are retained")
	assert.Equal(t, 2, c.ActiveMemberCount())

	require.ErrorIs(t, c.DeactivateMember(bob, admin), ErrInvalidTarget)
}

func TestRejoinReactivatesEntry(t *testing.T) {
	c, admin := newTestChama(t, 0)
	alice := uuid.New()
	_, err := c.AddMember(alice, testNow)
	require.NoError(t, err)
	m, _ := c.Member(alice)
	m.TotalContributions = 700
	require.NoError(t, c.DeactivateMember(alice, admin))

	_, err = c.AddMember(alice, testNow.Add(time.Hour))
	require.NoError(t, err)

	assert.Len(t, c.Members, 2)
	m, _ = c.Member(alice)
	assert.True(t, m.IsActive)
	assert.Equal(t, int64(700), m.TotalContributions)
}

func TestSetAdmin(t *testing.T) {
	c, admin := newTestChama(t, 0)
	alice := uuid.New()

	require.ErrorIs(t, c.SetAdmin(alice), ErrInvalidCandidate)
	_, err := c.AddMember(alice, testNow)
	require.NoError(t, err)

	require.NoError(t, c.SetAdmin(alice))
	assert.True(t, c.IsAdmin(alice))
	assert.False(t, c.IsAdmin(admin))
}

func TestClone(t *testing.T) {
	c, _ := newTestChama(t, 0)
	last := testNow
	c.Members[0].LastContributionAt = &last

	cp := c.Clone()
	cp.Members[0].TotalContributions = 99
	*cp.Members[0].LastContributionAt = testNow.Add(time.Hour)

	assert.Zero(t, c.Members[0].TotalContributions)
	assert.Equal(t, testNow, *c.Members[0].LastContributionAt)
}
