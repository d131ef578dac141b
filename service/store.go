package service

import (
	"errors"
	"sync"
	"time"

	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/ledger"
	"github.com/billbatista/chama360/loan"
	"github.com/billbatista/chama360/voting"
	"github.com/google/uuid"
)

var ErrDuplicateChama = errors.New("chama already stored")

// Group is everything owned by one chama. All of it is mutated under the
// group's lock, one command at a time.
type Group struct {
	mu      sync.Mutex
	Chama   *chama.Chama
	Invites *chama.InviteBook
	Ledger  *ledger.Book
	Loans   *loan.Book
	Voting  *voting.Machine
}

func NewGroup(c *chama.Chama, votingTTL time.Duration) *Group {
	return &Group{
		Chama:   c,
		Invites: chama.NewInviteBook(),
		Ledger:  ledger.NewBook(),
		Loans:   loan.NewBook(),
		Voting:  voting.NewMachine(votingTTL),
	}
}

// Store holds chama groups plus a store-wide index from secondary keys
// (invite codes, transaction and loan ids) to the owning chama.
type Store interface {
	Add(g *Group) error
	Get(id uuid.UUID) (*Group, bool)
	List() []*Group
	// Claim binds key to chamaID and reports false if key is already bound.
	Claim(key string, chamaID uuid.UUID) bool
	// Release unbinds a key claimed by a command that then failed.
	Release(key string)
	Lookup(key string) (uuid.UUID, bool)
}

func inviteKey(code string) string { return "invite:" + chama.NormalizeCode(code) }
func transactionKey(id uuid.UUID) string { return "tx:" + id.String() }
func loanKey(id uuid.UUID) string { return "loan:" + id.String() }

type memoryStore struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]*Group
	order  []uuid.UUID
	index  map[string]uuid.UUID
}

func NewMemoryStore() *memoryStore {
	return &memoryStore{
		groups: make(map[uuid.UUID]*Group),
		index:  make(map[string]uuid.UUID),
	}
}

func (s *memoryStore) Add(g *Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.Chama.ID]; ok {
		return ErrDuplicateChama
	}
	s.groups[g.Chama.ID] = g
	s.order = append(s.order, g.Chama.ID)
	return nil
}

func (s *memoryStore) Get(id uuid.UUID) (*Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	return g, ok
}

// List returns groups in creation order.
func (s *memoryStore) List() []*Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Group, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.groups[id])
	}
	return out
}

func (s *memoryStore) Claim(key string, chamaID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.index[key]; taken {
		return false
	}
	s.index[key] = chamaID
	return true
}

func (s *memoryStore) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.index, key)
}

func (s *memoryStore) Lookup(key string) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.index[key]
	return id, ok
}
