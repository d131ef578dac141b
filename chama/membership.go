package chama

import (
	"time"

	"github.com/google/uuid"
)

// CheckJoin reports whether userID could be added right now without
// changing anything.
func (c *Chama) CheckJoin(userID uuid.UUID) error {
	if c.IsActiveMember(userID) {
		return ErrAlreadyMember
	}
	if c.MaxMembers > 0 && c.ActiveMemberCount()+1 > c.MaxMembers {
		return ErrCapacityExceeded
	}
	return nil
}

// AddMember appends userID with zero totals. A previously deactivated user is
// reactivated in place so each user keeps a single entry.
func (c *Chama) AddMember(userID uuid.UUID, now time.Time) (Member, error) {
	if err := c.CheckJoin(userID); err != nil {
		return Member{}, err
	}

	if m, ok := c.Member(userID); ok {
		m.IsActive = true
		return *m, nil
	}

	m := Member{
		UserID:   userID,
		JoinedAt: now.UTC(),
		IsActive: true,
	}
	c.Members = append(c.Members, m)
	return m, nil
}

// DeactivateMember marks memberID inactive. Only the admin may do it, and
// neither the admin nor the requester can be the target.
func (c *Chama) DeactivateMember(memberID, requesterID uuid.UUID) error {
	if !c.IsAdmin(requesterID) {
		return ErrForbidden
	}
	if memberID == c.AdminID || memberID == requesterID {
		return ErrInvalidTarget
	}

	m, ok := c.Member(memberID)
	if !ok || !m.IsActive {
		return ErrInvalidTarget
	}

	m.IsActive = false
	return nil
}

// SetAdmin hands the admin role to an active member.
func (c *Chama) SetAdmin(userID uuid.UUID) error {
	if !c.IsActiveMember(userID) {
		return ErrInvalidCandidate
	}
	c.AdminID = userID
	return nil
}
