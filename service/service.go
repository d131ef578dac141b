// Package service is the command layer of the chama engine. It owns the
// store, serializes every write against a chama behind that chama's lock and
// applies the cross-component effects (admin changes, journal events,
// notifications) once a command has been accepted.
package service

import (
	"fmt"
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/eventlogger"
	"github.com/billbatista/chama360/notification"
	"github.com/billbatista/chama360/voting"
	"github.com/google/uuid"
)

const (
	DefaultInviteTTL = 7 * 24 * time.Hour
	DefaultLoanTerm  = 30 * 24 * time.Hour
)

// Journal receives an event for every accepted command.
type Journal interface {
	Log(event eventlogger.Event)
}

type discardJournal struct{}

func (discardJournal) Log(eventlogger.Event) {}

type Service struct {
	store     Store
	journal   Journal
	metrics   *Metrics
	inbox     *notification.Inbox
	now       func() time.Time
	newID     func() uuid.UUID
	newCode   chama.CodeGenerator
	votingTTL time.Duration
	inviteTTL time.Duration
	loanTerm  time.Duration
}

type Option func(*Service)

func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

func WithJournal(journal Journal) Option {
	return func(s *Service) { s.journal = journal }
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

func WithCodeGenerator(gen chama.CodeGenerator) Option {
	return func(s *Service) { s.newCode = gen }
}

func WithVotingTTL(ttl time.Duration) Option {
	return func(s *Service) { s.votingTTL = ttl }
}

// WithInviteTTL sets the lifetime of invites issued without an explicit ttl.
func WithInviteTTL(ttl time.Duration) Option {
	return func(s *Service) { s.inviteTTL = ttl }
}

func WithLoanTerm(term time.Duration) Option {
	return func(s *Service) { s.loanTerm = term }
}

func New(opts ...Option) *Service {
	s := &Service{
		journal:   discardJournal{},
		now:       time.Now,
		newID:     uuid.New,
		newCode:   chama.RandomCode,
		votingTTL: voting.DefaultTTL,
		inviteTTL: DefaultInviteTTL,
		loanTerm:  DefaultLoanTerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	s.inbox = notification.NewInbox(s.newID, s.now)
	return s
}

// locked runs fn with exclusive access to the chama's group.
func (s *Service) locked(chamaID uuid.UUID, fn func(g *Group) error) error {
	g, ok := s.store.Get(chamaID)
	if !ok {
		return chama.ErrNotFound
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g)
}

// claim reserves key for chamaID ahead of the mutation that will use it, so
// a collision fails the command before anything is written.
func (s *Service) claim(key string, chamaID uuid.UUID) error {
	if !s.store.Claim(key, chamaID) {
		return fmt.Errorf("%s already indexed", key)
	}
	return nil
}

// lockedBy resolves a secondary key to its chama before locking it.
func (s *Service) lockedBy(key string, fn func(g *Group) error) error {
	chamaID, ok := s.store.Lookup(key)
	if !ok {
		return chama.ErrNotFound
	}
	return s.locked(chamaID, fn)
}

func (s *Service) emit(eventType string, chamaID, actorID uuid.UUID, data any) {
	s.journal.Log(eventlogger.NewEvent(
		eventlogger.WithType(eventType),
		eventlogger.WithChama(chamaID),
		eventlogger.WithActor(actorID),
		eventlogger.WithData(data),
		eventlogger.WithTime(s.now().UTC()),
	))
}

func (s *Service) notify(userIDs []uuid.UUID, chamaID uuid.UUID, typ notification.Type, title, message string) {
	if len(userIDs) == 0 {
		return
	}
	s.inbox.Push(userIDs, chamaID, typ, title, message)
}

func (s *Service) Inbox() *notification.Inbox {
	return s.inbox
}
