package chama

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxCodeAttempts bounds invite code generation on collisions.
	MaxCodeAttempts = 10
	codeLength      = 8
	codeAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

type InviteCode struct {
	Code        string    `json:"code"`
	ChamaID     uuid.UUID `json:"chama_id"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	MaxUses     int       `json:"max_uses"`
	CurrentUses int       `json:"current_uses"`
	IsActive    bool      `json:"is_active"`
}

func (i *InviteCode) Redeemable(now time.Time) bool {
	return i.IsActive && i.CurrentUses < i.MaxUses && now.Before(i.ExpiresAt)
}

// CodeGenerator produces candidate invite codes.
type CodeGenerator func() (string, error)

// RandomCode returns an 8 character code drawn from [0-9A-Z].
func RandomCode() (string, error) {
	var sb strings.Builder
	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	for range codeLength {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeCode canonicalizes user-typed codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// InviteBook holds the invite codes issued by one chama.
type InviteBook struct {
	codes map[string]*InviteCode
}

func NewInviteBook() *InviteBook {
	return &InviteBook{codes: make(map[string]*InviteCode)}
}

// Issue creates a new invite for c. claim is asked to reserve each candidate
// outside this book and must return false when the code is already taken.
func (b *InviteBook) Issue(c *Chama, requesterID uuid.UUID, ttl time.Duration, maxUses int, now time.Time, generate CodeGenerator, claim func(code string) bool) (InviteCode, error) {
	if !c.IsAdmin(requesterID) {
		return InviteCode{}, ErrForbidden
	}
	if ttl <= 0 || maxUses <= 0 {
		return InviteCode{}, ErrInvalidInvite
	}

	for range MaxCodeAttempts {
		code, err := generate()
		if err != nil {
			return InviteCode{}, fmt.Errorf("generating invite code: %w", err)
		}
		code = NormalizeCode(code)
		if code == "" {
			continue
		}
		if _, taken := b.codes[code]; taken {
			continue
		}
		if claim != nil && !claim(code) {
			continue
		}

		invite := &InviteCode{
			Code:      code,
			ChamaID:   c.ID,
			CreatedBy: requesterID,
			CreatedAt: now.UTC(),
			ExpiresAt: now.UTC().Add(ttl),
			MaxUses:   maxUses,
			IsActive:  true,
		}
		b.codes[code] = invite
		return *invite, nil
	}

	return InviteCode{}, ErrExhaustedRetries
}

// Redeem consumes one use of code and adds userID to c.
func (b *InviteBook) Redeem(c *Chama, code string, userID uuid.UUID, now time.Time) (Member, error) {
	invite, ok := b.codes[NormalizeCode(code)]
	if !ok || !invite.Redeemable(now) {
		return Member{}, ErrInviteInvalid
	}
	if err := c.CheckJoin(userID); err != nil {
		return Member{}, err
	}

	invite.CurrentUses++
	if invite.CurrentUses == invite.MaxUses {
		invite.IsActive = false
	}

	return c.AddMember(userID, now)
}

// Revoke deactivates code. Revoking an inactive code is a no-op.
func (b *InviteBook) Revoke(c *Chama, code string, requesterID uuid.UUID) (InviteCode, error) {
	if !c.IsAdmin(requesterID) {
		return InviteCode{}, ErrForbidden
	}
	invite, ok := b.codes[NormalizeCode(code)]
	if !ok {
		return InviteCode{}, ErrNotFound
	}
	invite.IsActive = false
	return *invite, nil
}

func (b *InviteBook) Get(code string) (InviteCode, bool) {
	invite, ok := b.codes[NormalizeCode(code)]
	if !ok {
		return InviteCode{}, false
	}
	return *invite, true
}

// Redeemable lists the codes that can still be used, oldest first.
func (b *InviteBook) Redeemable(now time.Time) []InviteCode {
	out := make([]InviteCode, 0, len(b.codes))
	for _, invite := range b.codes {
		if invite.Redeemable(now) {
			out = append(out, *invite)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code < out[j].Code
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
