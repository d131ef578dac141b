package service

import "github.com/billbatista/chama360/ledger"

const (
	EventChamaCreated   = "chama.created"
	EventMemberJoined   = "chama.member_joined"
	EventMemberRemoved  = "chama.member_removed"
	EventInviteIssued   = "chama.invite_issued"
	EventInviteRevoked  = "chama.invite_revoked"
	EventAdminChanged   = "chama.admin_changed"
	EventTxResolved     = "ledger.transaction_resolved"
	EventLoanRequested  = "loan.requested"
	EventLoanApproved   = "loan.approved"
	EventLoanRejected   = "loan.rejected"
	EventVotingStarted  = "voting.started"
	EventVoteCast       = "voting.vote_cast"
	EventVotingResolved = "voting.resolved"
	EventVotingExpired  = "voting.expired"
	EventVotingCanceled = "voting.canceled"
)

// recordedEventType names the event for a newly recorded transaction, e.g.
// "ledger.contribution_recorded".
func recordedEventType(t ledger.Type) string {
	return "ledger." + string(t) + "_recorded"
}

type memberEvent struct {
	UserID string `json:"user_id"`
	Via    string `json:"via,omitempty"` // "public" or "invite"
	Code   string `json:"code,omitempty"`
}

type adminChangedEvent struct {
	PreviousAdminID string `json:"previous_admin_id"`
	NewAdminID      string `json:"new_admin_id"`
	Votes           int    `json:"votes"`
}
