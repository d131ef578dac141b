package service

import (
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/notification"
	"github.com/billbatista/chama360/voting"
	"github.com/google/uuid"
)

// CreateChama registers a new chama with its creator as sole member and
// admin.
func (s *Service) CreateChama(in chama.NewChamaInput) (created chama.Chama, err error) {
	defer func() { s.metrics.observe("create_chama", err) }()

	c, err := chama.New(s.newID(), in, s.now())
	if err != nil {
		return chama.Chama{}, err
	}
	created = c.Clone()

	if err := s.store.Add(NewGroup(c, s.votingTTL)); err != nil {
		return chama.Chama{}, err
	}
	s.metrics.chamas.Inc()
	s.emit(EventChamaCreated, created.ID, in.CreatorID, created)
	return created, nil
}

func (s *Service) Chama(chamaID uuid.UUID) (out chama.Chama, err error) {
	err = s.locked(chamaID, func(g *Group) error {
		out = g.Chama.Clone()
		return nil
	})
	return out, err
}

// AvailableChamas lists public chamas userID could join.
func (s *Service) AvailableChamas(userID uuid.UUID) []chama.Chama {
	out := make([]chama.Chama, 0)
	for _, g := range s.store.List() {
		g.mu.Lock()
		if g.Chama.IsPublic && !g.Chama.IsActiveMember(userID) {
			out = append(out, g.Chama.Clone())
		}
		g.mu.Unlock()
	}
	return out
}

// MemberChamas lists the chamas where userID is an active member.
func (s *Service) MemberChamas(userID uuid.UUID) []chama.Chama {
	out := make([]chama.Chama, 0)
	for _, g := range s.store.List() {
		g.mu.Lock()
		if g.Chama.IsActiveMember(userID) {
			out = append(out, g.Chama.Clone())
		}
		g.mu.Unlock()
	}
	return out
}

// JoinChama adds userID to a public chama. Private chamas are joined by
// invite only.
func (s *Service) JoinChama(chamaID, userID uuid.UUID) (out chama.Chama, err error) {
	defer func() { s.metrics.observe("join_chama", err) }()

	err = s.locked(chamaID, func(g *Group) error {
		if !g.Chama.IsPublic {
			return chama.ErrForbidden
		}
		if _, err := g.Chama.AddMember(userID, s.now()); err != nil {
			return err
		}
		out = g.Chama.Clone()
		return nil
	})
	if err != nil {
		return chama.Chama{}, err
	}

	s.emit(EventMemberJoined, chamaID, userID, memberEvent{UserID: userID.String(), Via: "public"})
	s.notify([]uuid.UUID{out.AdminID}, chamaID, notification.TypeMemberJoined,
		"New member joined", "A new member joined "+out.Name+".")
	return out, nil
}

// IssueInvite creates an invite code for a chama. A zero ttl uses the
// configured default.
func (s *Service) IssueInvite(chamaID, requesterID uuid.UUID, ttl time.Duration, maxUses int) (invite chama.InviteCode, err error) {
	defer func() { s.metrics.observe("issue_invite", err) }()

	if ttl == 0 {
		ttl = s.inviteTTL
	}
	claim := func(code string) bool {
		return s.store.Claim(inviteKey(code), chamaID)
	}

	err = s.locked(chamaID, func(g *Group) error {
		var err error
		invite, err = g.Invites.Issue(g.Chama, requesterID, ttl, maxUses, s.now(), s.newCode, claim)
		return err
	})
	if err != nil {
		return chama.InviteCode{}, err
	}

	s.emit(EventInviteIssued, chamaID, requesterID, invite)
	return invite, nil
}

// RedeemInvite joins userID to the chama that issued code.
func (s *Service) RedeemInvite(code string, userID uuid.UUID) (out chama.Chama, err error) {
	defer func() { s.metrics.observe("redeem_invite", err) }()

	chamaID, ok := s.store.Lookup(inviteKey(code))
	if !ok {
		return chama.Chama{}, chama.ErrInviteInvalid
	}

	err = s.locked(chamaID, func(g *Group) error {
		if _, err := g.Invites.Redeem(g.Chama, code, userID, s.now()); err != nil {
			return err
		}
		out = g.Chama.Clone()
		return nil
	})
	if err != nil {
		return chama.Chama{}, err
	}

	s.emit(EventMemberJoined, chamaID, userID, memberEvent{UserID: userID.String(), Via: "invite", Code: chama.NormalizeCode(code)})
	s.notify([]uuid.UUID{out.AdminID}, chamaID, notification.TypeMemberJoined,
		"New member joined", "A new member joined "+out.Name+" with an invite code.")
	return out, nil
}

func (s *Service) RevokeInvite(chamaID, requesterID uuid.UUID, code string) (invite chama.InviteCode, err error) {
	defer func() { s.metrics.observe("revoke_invite", err) }()

	err = s.locked(chamaID, func(g *Group) error {
		var err error
		invite, err = g.Invites.Revoke(g.Chama, code, requesterID)
		return err
	})
	if err != nil {
		return chama.InviteCode{}, err
	}

	s.emit(EventInviteRevoked, chamaID, requesterID, invite)
	return invite, nil
}

// Invites lists the redeemable invites of a chama. Admin only.
func (s *Service) Invites(chamaID, requesterID uuid.UUID) (out []chama.InviteCode, err error) {
	err = s.locked(chamaID, func(g *Group) error {
		if !g.Chama.IsAdmin(requesterID) {
			return chama.ErrForbidden
		}
		out = g.Invites.Redeemable(s.now())
		return nil
	})
	return out, err
}

// RemoveMember deactivates memberID. An open vote proposing that member is
// canceled in the same step.
func (s *Service) RemoveMember(chamaID, adminID, memberID uuid.UUID) (out chama.Chama, err error) {
	defer func() { s.metrics.observe("remove_member", err) }()

	var (
		expired  *voting.Session
		canceled bool
	)
	err = s.locked(chamaID, func(g *Group) error {
		now := s.now()
		expired = observeVoting(g, now)
		if err := g.Chama.DeactivateMember(memberID, adminID); err != nil {
			return err
		}
		if session, open := g.Voting.Current(now); open && session.ProposedAdminID == memberID {
			g.Voting.Cancel()
			canceled = true
		}
		out = g.Chama.Clone()
		return nil
	})
	s.emitExpired(chamaID, adminID, expired)
	if err != nil {
		return chama.Chama{}, err
	}

	s.emit(EventMemberRemoved, chamaID, adminID, memberEvent{UserID: memberID.String()})
	if canceled {
		s.emit(EventVotingCanceled, chamaID, adminID, memberEvent{UserID: memberID.String()})
	}
	s.notify([]uuid.UUID{memberID}, chamaID, notification.TypeGeneral,
		"Membership ended", "You were removed from "+out.Name+".")
	return out, nil
}
