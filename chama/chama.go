package chama

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// Period is the time between two scheduled contributions.
func (f Frequency) Period() time.Duration {
	if f == FrequencyWeekly {
		return 7 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

type Member struct {
	UserID             uuid.UUID  `json:"user_id"`
	JoinedAt           time.Time  `json:"joined_at"`
	IsActive           bool       `json:"is_active"`
	TotalContributions int64      `json:"total_contributions"` // cents
	TotalLoans         int64      `json:"total_loans"`         // cents
	TotalWithdrawals   int64      `json:"total_withdrawals"`   // cents
	LastContributionAt *time.Time `json:"last_contribution_at,omitempty"`
}

// Chama is a savings group. Members are kept in join order and never
// removed; deactivated members keep their totals for audit.
type Chama struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description,omitempty"`
	AdminID               uuid.UUID `json:"admin_id"`
	Members               []Member  `json:"members"`
	ContributionAmount    int64     `json:"contribution_amount"` // cents
	ContributionFrequency Frequency `json:"contribution_frequency"`
	TotalBalance          int64     `json:"total_balance"`         // cents
	MaxMembers            int       `json:"max_members,omitempty"` // 0 = unlimited
	AllowLoans            bool      `json:"allow_loans"`
	LoanInterestRate      float64   `json:"loan_interest_rate"` // percent
	IsPublic              bool      `json:"is_public"`
	CreatedAt             time.Time `json:"created_at"`
	NextContributionDate  time.Time `json:"next_contribution_date"`
}

type NewChamaInput struct {
	Name                  string
	Description           string
	ContributionAmount    int64
	ContributionFrequency Frequency
	IsPublic              bool
	MaxMembers            int
	AllowLoans            bool
	LoanInterestRate      float64
	CreatorID             uuid.UUID
}

// New creates a chama whose creator is its sole active member and admin.
func New(id uuid.UUID, input NewChamaInput, now time.Time) (*Chama, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if input.ContributionAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	if !input.ContributionFrequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	if input.LoanInterestRate < 0 {
		return nil, ErrInvalidRate
	}

	if input.MaxMembers < 0 {
		return nil, ErrInvalidMaxMembers
	}

	now = now.UTC()

	return &Chama{
		ID:                    id,
		Name:                  name,
		Description:           strings.TrimSpace(input.Description),
		AdminID:               input.CreatorID,
		Members:               []Member{{UserID: input.CreatorID, JoinedAt: now, IsActive: true}},
		ContributionAmount:    input.ContributionAmount,
		ContributionFrequency: input.ContributionFrequency,
		MaxMembers:            input.MaxMembers,
		AllowLoans:            input.AllowLoans,
		LoanInterestRate:      input.LoanInterestRate,
		IsPublic:              input.IsPublic,
		CreatedAt:             now,
		NextContributionDate:  now.Add(input.ContributionFrequency.Period()),
	}, nil
}

// Member returns the entry for userID, active or not. The pointer aliases
// the chama's member list.
func (c *Chama) Member(userID uuid.UUID) (*Member, bool) {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return &c.Members[i], true
		}
	}
	return nil, false
}

func (c *Chama) IsActiveMember(userID uuid.UUID) bool {
	m, ok := c.Member(userID)
	return ok && m.IsActive
}

func (c *Chama) IsAdmin(userID uuid.UUID) bool {
	return c.AdminID == userID
}

func (c *Chama) ActiveMemberCount() int {
	n := 0
	for _, m := range c.Members {
		if m.IsActive {
			n++
		}
	}
	return n
}

// ActiveMemberIDs lists active members in join order.
func (c *Chama) ActiveMemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members))
	for _, m := range c.Members {
		if m.IsActive {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// Clone returns a deep copy safe to hand out of the chama's lock.
func (c *Chama) Clone() Chama {
	cp := *c
	cp.Members = make([]Member, len(c.Members))
	for i, m := range c.Members {
		if m.LastContributionAt != nil {
			t := *m.LastContributionAt
			m.LastContributionAt = &t
		}
		cp.Members[i] = m
	}
	return cp
}
