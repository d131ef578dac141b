// Package voting runs admin-succession votes. A chama has at most one
// session at a time; expiry is evaluated lazily whenever the machine is
// observed.
package voting

import (
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/google/uuid"
)

// DefaultTTL is how long a session stays open.
const DefaultTTL = 24 * time.Hour

type State string

const (
	StateActive   State = "active"
	StateResolved State = "resolved"
	StateExpired  State = "expired"
)

type Vote struct {
	ID              uuid.UUID `json:"id"`
	ChamaID         uuid.UUID `json:"chama_id"`
	ProposedAdminID uuid.UUID `json:"proposed_admin_id"`
	VoterID         uuid.UUID `json:"voter_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type Session struct {
	ChamaID         uuid.UUID `json:"chama_id"`
	ProposedAdminID uuid.UUID `json:"proposed_admin_id"`
	StartedBy       uuid.UUID `json:"started_by"`
	Votes           []Vote    `json:"votes"`
	RequiredVotes   int       `json:"required_votes"`
	StartedAt       time.Time `json:"started_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	State           State     `json:"state"`
}

func (s Session) IsActive() bool   { return s.State == StateActive }
func (s Session) IsResolved() bool { return s.State == StateResolved }
func (s Session) IsExpired() bool  { return s.State == StateExpired }

func (s Session) HasVoted(voterID uuid.UUID) bool {
	for _, v := range s.Votes {
		if v.VoterID == voterID {
			return true
		}
	}
	return false
}

func (s Session) clone() Session {
	s.Votes = append([]Vote(nil), s.Votes...)
	return s
}

// RequiredVotes is the quorum for n active members: ceil(n/2).
func RequiredVotes(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + 1) / 2
}

// Machine tracks the voting session of one chama. A nil session is the idle
// state. A resolved session is cleared as soon as it is reported; an expired
// one stays until Start replaces it.
type Machine struct {
	ttl     time.Duration
	session *Session
}

func NewMachine(ttl time.Duration) *Machine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Machine{ttl: ttl}
}

// Observe moves an active session past its deadline to the expired state.
// It reports the session only on the call that performs the transition.
func (m *Machine) Observe(now time.Time) (Session, bool) {
	if m.session == nil || !m.session.IsActive() || now.Before(m.session.ExpiresAt) {
		return Session{}, false
	}
	m.session.State = StateExpired
	return m.session.clone(), true
}

// Current returns the active session, if any.
func (m *Machine) Current(now time.Time) (Session, bool) {
	m.Observe(now)
	if m.session == nil || !m.session.IsActive() {
		return Session{}, false
	}
	return m.session.clone(), true
}

// Start opens a session proposing proposedID as admin of c.
func (m *Machine) Start(c *chama.Chama, requesterID, proposedID uuid.UUID, now time.Time) (Session, error) {
	m.Observe(now)
	if m.session != nil && m.session.IsActive() {
		return Session{}, chama.ErrVotingInProgress
	}
	if !c.IsActiveMember(requesterID) {
		return Session{}, chama.ErrForbidden
	}
	if !c.IsActiveMember(proposedID) || c.IsAdmin(proposedID) {
		return Session{}, chama.ErrInvalidCandidate
	}

	m.session = &Session{
		ChamaID:         c.ID,
		ProposedAdminID: proposedID,
		StartedBy:       requesterID,
		Votes:           []Vote{},
		RequiredVotes:   RequiredVotes(c.ActiveMemberCount()),
		StartedAt:       now.UTC(),
		ExpiresAt:       now.UTC().Add(m.ttl),
		State:           StateActive,
	}
	return m.session.clone(), nil
}

// Cast records voterID's vote. When the vote reaches quorum the returned
// session is resolved and the machine is idle again; the caller applies the
// admin change. c is only read.
func (m *Machine) Cast(c *chama.Chama, voterID, voteID uuid.UUID, now time.Time) (Session, error) {
	m.Observe(now)
	if m.session == nil {
		return Session{}, chama.ErrNoActiveSession
	}
	if m.session.IsExpired() {
		return Session{}, chama.ErrSessionExpired
	}
	if !c.IsActiveMember(voterID) {
		return Session{}, chama.ErrForbidden
	}
	if m.session.HasVoted(voterID) {
		return Session{}, chama.ErrDuplicateVote
	}
	if !c.IsActiveMember(m.session.ProposedAdminID) {
		return Session{}, chama.ErrInvalidCandidate
	}

	m.session.Votes = append(m.session.Votes, Vote{
		ID:              voteID,
		ChamaID:         m.session.ChamaID,
		ProposedAdminID: m.session.ProposedAdminID,
		VoterID:         voterID,
		CreatedAt:       now.UTC(),
	})

	if len(m.session.Votes) < m.session.RequiredVotes {
		return m.session.clone(), nil
	}

	resolved := m.session.clone()
	resolved.State = StateResolved
	m.session = nil
	return resolved, nil
}

// Cancel drops the active session, if any.
func (m *Machine) Cancel() (Session, bool) {
	if m.session == nil || !m.session.IsActive() {
		return Session{}, false
	}
	s := m.session.clone()
	m.session = nil
	return s, true
}
