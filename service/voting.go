package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/billbatista/chama360/notification"
	"github.com/billbatista/chama360/voting"
	"github.com/google/uuid"
)

// observeVoting applies lazy expiry to the group's session. The expired
// snapshot is returned only by the call that performs the transition.
func observeVoting(g *Group, now time.Time) *voting.Session {
	if expired, ok := g.Voting.Observe(now); ok {
		return &expired
	}
	return nil
}

func (s *Service) emitExpired(chamaID, actorID uuid.UUID, expired *voting.Session) {
	if expired == nil {
		return
	}
	s.emit(EventVotingExpired, chamaID, actorID, *expired)
}

// StartVoting opens an admin-succession vote proposing proposedID.
func (s *Service) StartVoting(chamaID, requesterID, proposedID uuid.UUID) (session voting.Session, err error) {
	defer func() { s.metrics.observe("start_voting", err) }()

	var (
		expired *voting.Session
		members []uuid.UUID
		name    string
	)
	err = s.locked(chamaID, func(g *Group) error {
		now := s.now()
		expired = observeVoting(g, now)

		var err error
		session, err = g.Voting.Start(g.Chama, requesterID, proposedID, now)
		if err != nil {
			return err
		}
		members = g.Chama.ActiveMemberIDs()
		name = g.Chama.Name
		return nil
	})
	s.emitExpired(chamaID, requesterID, expired)
	if err != nil {
		return voting.Session{}, err
	}

	s.emit(EventVotingStarted, chamaID, requesterID, session)
	s.notify(members, chamaID, notification.TypeVoting,
		"Admin vote started", fmt.Sprintf("A vote for a new admin of %s is open. %d votes are needed.", name, session.RequiredVotes))
	return session, nil
}

// CastVote records voterID's vote for the open session. When the vote reaches
// quorum the proposed member becomes admin before the chama is unlocked.
func (s *Service) CastVote(chamaID, voterID uuid.UUID) (session voting.Session, err error) {
	defer func() { s.metrics.observe("cast_vote", err) }()

	var (
		expired       *voting.Session
		previousAdmin uuid.UUID
		members       []uuid.UUID
		name          string
	)
	err = s.locked(chamaID, func(g *Group) error {
		now := s.now()
		expired = observeVoting(g, now)

		var err error
		session, err = g.Voting.Cast(g.Chama, voterID, s.newID(), now)
		if err != nil {
			return err
		}
		if !session.IsResolved() {
			return nil
		}
		previousAdmin = g.Chama.AdminID
		if err := g.Chama.SetAdmin(session.ProposedAdminID); err != nil {
			return fmt.Errorf("applying admin change: %w", err)
		}
		members = g.Chama.ActiveMemberIDs()
		name = g.Chama.Name
		return nil
	})
	s.emitExpired(chamaID, voterID, expired)
	if err != nil {
		return voting.Session{}, err
	}

	s.emit(EventVoteCast, chamaID, voterID, session.Votes[len(session.Votes)-1])
	if !session.IsResolved() {
		return session, nil
	}

	s.metrics.adminChanges.Inc()
	slog.Info("admin changed by vote", "chama_id", chamaID, "previous_admin_id", previousAdmin, "new_admin_id", session.ProposedAdminID)
	s.emit(EventVotingResolved, chamaID, voterID, session)
	s.emit(EventAdminChanged, chamaID, voterID, adminChangedEvent{
		PreviousAdminID: previousAdmin.String(),
		NewAdminID:      session.ProposedAdminID.String(),
		Votes:           len(session.Votes),
	})
	s.notify(members, chamaID, notification.TypeAdminChange,
		"New admin", fmt.Sprintf("%s has a new admin after a member vote.", name))
	return session, nil
}

// VotingSession returns the active session of a chama, if any.
func (s *Service) VotingSession(chamaID uuid.UUID) (session voting.Session, open bool, err error) {
	var expired *voting.Session
	err = s.locked(chamaID, func(g *Group) error {
		now := s.now()
		expired = observeVoting(g, now)
		session, open = g.Voting.Current(now)
		return nil
	})
	s.emitExpired(chamaID, uuid.Nil, expired)
	return session, open, err
}
