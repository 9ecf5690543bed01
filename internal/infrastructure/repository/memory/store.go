package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
)

// Store is the shared in-process state behind the player and match
// repositories. Transactions hold the write lock for their whole duration and
// restore a snapshot when the callback fails.
type Store struct {
	mu          sync.RWMutex
	players     []player.Player // index i holds id i+1
	byName      map[string]int64
	matches     map[int64]match.Match
	nextMatchID int64
}

func NewStore() *Store {
	return &Store{
		byName:  make(map[string]int64),
		matches: make(map[int64]match.Match),
	}
}

// Ping reports the store as always reachable.
func (s *Store) Ping(context.Context) error {
	return nil
}

type snapshot struct {
	players     []player.Player
	byName      map[string]int64
	matches     map[int64]match.Match
	nextMatchID int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		players:     append([]player.Player(nil), s.players...),
		byName:      make(map[string]int64, len(s.byName)),
		matches:     make(map[int64]match.Match, len(s.matches)),
		nextMatchID: s.nextMatchID,
	}
	for k, v := range s.byName {
		snap.byName[k] = v
	}
	for k, v := range s.matches {
		snap.matches[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.players = snap.players
	s.byName = snap.byName
	s.matches = snap.matches
	s.nextMatchID = snap.nextMatchID
}

func (s *Store) inTx(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) playerByID(id int64) (*player.Player, bool) {
	if id <= 0 || id > int64(len(s.players)) {
		return nil, false
	}
	return &s.players[id-1], true
}

func (s *Store) withNames(m match.Match) match.Match {
	if p, ok := s.playerByID(m.WinnerID); ok {
		m.WinnerName = p.Name
	}
	if p, ok := s.playerByID(m.LoserID); ok {
		m.LoserName = p.Name
	}
	if m.ApprovedAt != nil {
		approvedAt := *m.ApprovedAt
		m.ApprovedAt = &approvedAt
	}
	return m
}
