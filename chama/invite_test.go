package chama

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(codes ...string) CodeGenerator {
	i := 0
	return func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

func TestRandomCode(t *testing.T) {
	code, err := RandomCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{8}$`), code)
}

func TestIssueInvite(t *testing.T) {
	c, admin := newTestChama(t, 0)
	book := NewInviteBook()

	_, err := book.Issue(c, uuid.New(), time.Hour, 1, testNow, sequence("AAAA1111"), nil)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = book.Issue(c, admin, 0, 1, testNow, sequence("AAAA1111"), nil)
	require.ErrorIs(t, err, ErrInvalidInvite)

	invite, err := book.Issue(c, admin, time.Hour, 2, testNow, sequence("aaaa1111"), nil)
	require.NoError(t, err)
	assert.Equal(t, "AAAA1111", invite.Code)
	assert.Equal(t, c.ID, invite.ChamaID)
	assert.Equal(t, testNow.Add(time.Hour), invite.ExpiresAt)
	assert.True(t, invite.IsActive)
}

func TestIssueInviteRetriesOnCollision(t *testing.T) {
	c, admin := newTestChama(t, 0)
	book := NewInviteBook()

	_, err := book.Issue(c, admin, time.Hour, 1, testNow, sequence("DUPLICAT"), nil)
	require.NoError(t, err)

	invite, err := book.Issue(c, admin, time.Hour, 1, testNow, sequence("DUPLICAT", "DUPLICAT", "FRESH001"), nil)
	require.NoError(t, err)
	assert.Equal(t, "FRESH001", invite.Code)
}

func TestIssueInviteExhaustsRetries(t *testing.T) {
	c, admin := newTestChama(t, 0)
	book := NewInviteBook()

	_, err := book.Issue(c, admin, time.Hour, 1, testNow, sequence("SAMECODE"), nil)
	require.NoError(t, err)

	calls := 0
	gen := func() (string, error) {
		calls++
		return "SAMECODE", nil
	}
	_, err = book.Issue(c, admin, time.Hour, 1, testNow, gen, nil)
	require.ErrorIs(t, err, ErrExhaustedRetries)
	assert.Equal(t, MaxCodeAttempts, calls)
}

func TestIssueInviteHonorsExternalClaim(t *testing.T) {
	c, admin := newTestChama(t, 0)
	book := NewInviteBook()
	claimed := map[string]bool{"OTHERCHM": true}
	claim := func(code string) bool {
		if claimed[code] {
			return false
		}
		claimed[code] = true
		return true
	}

	invite, err := book.Issue(c, admin, time.Hour, 1, testNow, sequence("OTHERCHM", "MINE0001"), claim)
	require.NoError(t, err)
	assert.Equal(t, "MINE0001", invite.Code)
}

func TestIssueInviteGeneratorFailure(t *testing.T) {
	c, admin := newTestChama(t, 0)
	boom := errors.New("entropy unavailable")

	_, err := NewInviteBook().Issue(c, admin, time.Hour, 1, testNow, func() (string, error) { return "", boom }, nil)
	require.ErrorIs(t, err, boom)
}

func TestRedeemInviteSingleUse(t *testing.T) {
	c, admin := newTestChama(t, 0)
	book := NewInviteBook()
	invite, err := book.Issue(c, admin, time.Hour, 1, testNow, sequence("ONCEONLY"), nil)
	require.NoError(t, err)

	alice, bob := uuid.New(), uuid.New()
	m, err := book.Redeem(c, "onceonly ", alice, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, alice, m.UserID)
	assert.True(t, c.IsActiveMember(alice))

	stored, _ := book.Get(invite.Code)
	assert.Equal(t, 1, stored.CurrentUses)
	assert.False(t, stored.IsActive)

	_, err = book.Redeem(c, invite.Code, bob, testNow.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrInviteInvalid)
	assert.False(t, c.IsActiveMember(bob))
}

func TestRedeemInviteFailures(t *testing.T) {
	c, admin := newTestChama(t, 2)
	book := NewInviteBook()
	invite, err := book.Issue(c, admin, time.Hour, 5, testNow, sequence("MULTI001"), nil)
	require.NoError(t, err)

	_, err = book.Redeem(c, "NOPE0000", uuid.New(), testNow)
	require.ErrorIs(t, err, ErrInviteInvalid)

	_, err = book.Redeem(c, invite.Code, uuid.New(), testNow.Add(time.Hour))
	require.ErrorIs(t, err, ErrInviteInvalid, "expiry is exclusive")

	_, err = book.Redeem(c, invite.Code, admin, testNow)
	require.ErrorIs(t, err, ErrAlreadyMember)

	_, err = book.Redeem(c, invite.Code, uuid.New(), testNow)
	require.NoError(t, err)
	_, err = book.Redeem(c, invite.Code, uuid.New(), testNow)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	stored, _ := book.Get(invite.Code)
	assert.Equal(t, 1, stored.CurrentUses, "failed redemptions consume nothing")
}

func TestRevokeInvite(t *testing.T) {
	c, admin := newTestChama(t, 0)
	book := NewInviteBook()
	invite, err := book.Issue(c, admin, time.Hour, 3, testNow, sequence("REVOKEME"), nil)
	require.NoError(t, err)

	_, err = book.Revoke(c, invite.Code, uuid.New())
	require.ErrorIs(t, err, ErrForbidden)
	_, err = book.Revoke(c, "MISSING0", admin)
	require.ErrorIs(t, err, ErrNotFound)

	revoked, err := book.Revoke(c, invite.Code, admin)
	require.NoError(t, err)
	assert.False(t, revoked.IsActive)
	assert.Empty(t, book.Redeemable(testNow))

	_, err = book.Redeem(c, invite.Code, uuid.New(), testNow)
	require.ErrorIs(t, err, ErrInviteInvalid)
}
