package notification

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeContribution Type = "contribution"
	TypeAdminChange  Type = "admin_change"
	TypeVoting       Type = "voting"
	TypeGeneral      Type = "general"
	TypeLoanRequest  Type = "loan_request"
	TypeLoanApproved Type = "loan_approved"
	TypeMemberJoined Type = "member_joined"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ChamaID   *uuid.UUID `json:"chama_id,omitempty"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      Type       `json:"type"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}

// Preferences are a user's notification switches. Types they don't cover
// are always delivered.
type Preferences struct {
	ContributionReminders bool `json:"contribution_reminders"`
	AdminVotingAlerts     bool `json:"admin_voting_alerts"`
}

func DefaultPreferences() Preferences {
	return Preferences{ContributionReminders: true, AdminVotingAlerts: true}
}

func (p Preferences) Allows(typ Type) bool {
	switch typ {
	case TypeContribution:
		return p.ContributionReminders
	case TypeVoting, TypeAdminChange:
		return p.AdminVotingAlerts
	}
	return true
}

// Inbox keeps per-user notifications, newest first. It is independent of
// chama locking and safe for concurrent use.
type Inbox struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID][]Notification
	prefs  map[uuid.UUID]Preferences
	newID  func() uuid.UUID
	now    func() time.Time
}

func NewInbox(newID func() uuid.UUID, now func() time.Time) *Inbox {
	if newID == nil {
		newID = uuid.New
	}
	if now == nil {
		now = time.Now
	}
	return &Inbox{
		byUser: make(map[uuid.UUID][]Notification),
		prefs:  make(map[uuid.UUID]Preferences),
		newID:  newID,
		now:    now,
	}
}

// Push delivers the same notification to every user in userIDs whose
// preferences allow its type.
func (in *Inbox) Push(userIDs []uuid.UUID, chamaID uuid.UUID, typ Type, title, message string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	createdAt := in.now().UTC()
	for _, userID := range userIDs {
		if !in.preferences(userID).Allows(typ) {
			continue
		}
		n := Notification{
			ID:        in.newID(),
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      typ,
			CreatedAt: createdAt,
		}
		if chamaID != uuid.Nil {
			id := chamaID
			n.ChamaID = &id
		}
		in.byUser[userID] = append([]Notification{n}, in.byUser[userID]...)
	}
}

func (in *Inbox) Preferences(userID uuid.UUID) Preferences {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.preferences(userID)
}

func (in *Inbox) preferences(userID uuid.UUID) Preferences {
	if p, ok := in.prefs[userID]; ok {
		return p
	}
	return DefaultPreferences()
}

// SetPreferences replaces userID's preferences. Notifications already
// delivered are kept.
func (in *Inbox) SetPreferences(userID uuid.UUID, p Preferences) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.prefs[userID] = p
}

func (in *Inbox) List(userID uuid.UUID) []Notification {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]Notification(nil), in.byUser[userID]...)
}

func (in *Inbox) UnreadCount(userID uuid.UUID) int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	n := 0
	for _, item := range in.byUser[userID] {
		if !item.IsRead {
			n++
		}
	}
	return n
}

func (in *Inbox) MarkRead(userID, id uuid.UUID) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	items := in.byUser[userID]
	for i := range items {
		if items[i].ID == id {
			items[i].IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func (in *Inbox) MarkAllRead(userID uuid.UUID) {
	in.mu.Lock()
	defer in.mu.Unlock()
	items := in.byUser[userID]
	for i := range items {
		items[i].IsRead = true
	}
}

func (in *Inbox) Delete(userID, id uuid.UUID) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	items := in.byUser[userID]
	for i := range items {
		if items[i].ID == id {
			in.byUser[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
