package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbox(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	inbox := NewInbox(nil, func() time.Time { return now })
	alice, bob := uuid.New(), uuid.New()
	chamaID := uuid.New()

	inbox.Push([]uuid.UUID{alice, bob}, chamaID, TypeVoting, "Admin vote started", "Vote now")
	inbox.Push([]uuid.UUID{alice}, uuid.Nil, TypeGeneral, "Welcome", "Hello")

	items := inbox.List(alice)
	require.Len(t, items, 2)
	assert.Equal(t, "Welcome", items[0].Title, "newest first")
	assert.Nil(t, items[0].ChamaID)
	require.NotNil(t, items[1].ChamaID)
	assert.Equal(t, chamaID, *items[1].ChamaID)
	assert.Equal(t, now, items[1].CreatedAt)
	assert.Equal(t, 2, inbox.UnreadCount(alice))
	assert.Equal(t, 1, inbox.UnreadCount(bob))

	require.NoError(t, inbox.MarkRead(alice, items[1].ID))
	assert.Equal(t, 1, inbox.UnreadCount(alice))
	require.ErrorIs(t, inbox.MarkRead(bob, items[1].ID), ErrNotFound, "ids are scoped to their owner")

	inbox.MarkAllRead(alice)
	assert.Zero(t, inbox.UnreadCount(alice))

	require.NoError(t, inbox.Delete(alice, items[0].ID))
	require.ErrorIs(t, inbox.Delete(alice, items[0].ID), ErrNotFound)
	remaining := inbox.List(alice)
	require.Len(t, remaining, 1)
	assert.Equal(t, items[1].ID, remaining[0].ID)
}

func TestListReturnsCopy(t *testing.T) {
	inbox := NewInbox(nil, nil)
	user := uuid.New()
	inbox.Push([]uuid.UUID{user}, uuid.Nil, TypeGeneral, "t", "m")

	items := inbox.List(user)
	items[0].IsRead = true

	assert.Equal(t, 1, inbox.UnreadCount(user))
}

func TestPreferencesFilterDelivery(t *testing.T) {
	inbox := NewInbox(nil, nil)
	alice, bob := uuid.New(), uuid.New()
	assert.Equal(t, DefaultPreferences(), inbox.Preferences(alice))

	inbox.SetPreferences(alice, Preferences{ContributionReminders: false, AdminVotingAlerts: true})
	inbox.SetPreferences(bob, Preferences{ContributionReminders: true, AdminVotingAlerts: false})

	users := []uuid.UUID{alice, bob}
	inbox.Push(users, uuid.Nil, TypeContribution, "Contribution received", "m")
	inbox.Push(users, uuid.Nil, TypeVoting, "Admin vote started", "m")
	inbox.Push(users, uuid.Nil, TypeAdminChange, "New admin", "m")
	inbox.Push(users, uuid.Nil, TypeLoanApproved, "Loan approved", "m")

	titles := func(user uuid.UUID) []string {
		var out []string
		for _, n := range inbox.List(user) {
			out = append(out, n.Title)
		}
		return out
	}
	assert.Equal(t, []string{"Loan approved", "New admin", "Admin vote started"}, titles(alice))
	assert.Equal(t, []string{"Loan approved", "Contribution received"}, titles(bob))
}
