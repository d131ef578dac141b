package chama

import "errors"

// Code classifies a domain failure.
type Code string

const (
	CodeNotFound          Code = "not_found"
	CodeInvalidInput      Code = "invalid_input"
	CodeInvalidAmount     Code = "invalid_amount"
	CodeInsufficientFunds Code = "insufficient_funds"
	CodeForbidden         Code = "forbidden"
	CodeAlreadyMember     Code = "already_member"
	CodeCapacityExceeded  Code = "capacity_exceeded"
	CodeInvalidTarget     Code = "invalid_target"
	CodeInviteInvalid     Code = "invite_invalid"
	CodeLoansDisabled     Code = "loans_disabled"
	CodeAlreadyResolved   Code = "already_resolved"
	CodeVotingInProgress  Code = "voting_in_progress"
	CodeInvalidCandidate  Code = "invalid_candidate"
	CodeNoActiveSession   Code = "no_active_session"
	CodeDuplicateVote     Code = "duplicate_vote"
	CodeSessionExpired    Code = "session_expired"
	CodeExhaustedRetries  Code = "exhausted_retries"
	CodeInternal          Code = "internal"
)

// Error is a classified, recoverable failure returned by the engine.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrNotFound          = newError(CodeNotFound, "not found")
	ErrInvalidAmount     = newError(CodeInvalidAmount, "amount must be positive")
	ErrInsufficientFunds = newError(CodeInsufficientFunds, "insufficient funds")
	ErrForbidden         = newError(CodeForbidden, "action not allowed for this member")
	ErrAlreadyMember     = newError(CodeAlreadyMember, "user is already a member")
	ErrCapacityExceeded  = newError(CodeCapacityExceeded, "chama is full")
	ErrInvalidTarget     = newError(CodeInvalidTarget, "member can't be removed")
	ErrInviteInvalid     = newError(CodeInviteInvalid, "invite code is invalid or expired")
	ErrLoansDisabled     = newError(CodeLoansDisabled, "loans are disabled for this chama")
	ErrAlreadyResolved   = newError(CodeAlreadyResolved, "already resolved")
	ErrVotingInProgress  = newError(CodeVotingInProgress, "admin voting already in progress")
	ErrInvalidCandidate  = newError(CodeInvalidCandidate, "proposed admin is not an eligible member")
	ErrNoActiveSession   = newError(CodeNoActiveSession, "no active voting session")
	ErrDuplicateVote     = newError(CodeDuplicateVote, "member already voted")
	ErrSessionExpired    = newError(CodeSessionExpired, "voting session expired")
	ErrExhaustedRetries  = newError(CodeExhaustedRetries, "could not generate a unique invite code")

	ErrEmptyName         = newError(CodeInvalidInput, "name can't be empty")
	ErrInvalidFrequency  = newError(CodeInvalidInput, "contribution frequency must be weekly or monthly")
	ErrInvalidRate       = newError(CodeInvalidInput, "loan interest rate can't be negative")
	ErrInvalidMaxMembers = newError(CodeInvalidInput, "max members can't be negative")
	ErrInvalidInvite     = newError(CodeInvalidInput, "invite ttl and max uses must be positive")
	ErrInvalidType       = newError(CodeInvalidInput, "unknown transaction type")
	ErrInvalidStatus     = newError(CodeInvalidInput, "unknown transaction status")
	ErrReferenceConflict = newError(CodeInvalidInput, "external reference already used by a different transaction")
)

// CodeOf returns the classification of err, or CodeInternal when err is not
// a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
