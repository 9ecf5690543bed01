package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) (match.Match, error) {
	if err := ctx.Err(); err != nil {
		return match.Match{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.playerByID(m.WinnerID); !ok {
		return match.Match{}, fmt.Errorf("winner %d does not exist", m.WinnerID)
	}
	if _, ok := r.store.playerByID(m.LoserID); !ok {
		return match.Match{}, fmt.Errorf("loser %d does not exist", m.LoserID)
	}
	if m.WinnerID == m.LoserID {
		return match.Match{}, match.ErrSelfMatch
	}

	r.store.nextMatchID++
	m.ID = r.store.nextMatchID
	m.IsApproved = false
	m.ApprovedAt = nil
	r.store.matches[m.ID] = m

	return r.store.withNames(m), nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.matches[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return r.store.withNames(m), true, nil
}

func (r *MatchRepository) ListPending(_ context.Context, limit int) ([]match.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, m := range r.store.matches {
		if !m.IsApproved {
			out = append(out, r.store.withNames(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MatchRepository) InTx(ctx context.Context, fn func(tx match.Tx) error) error {
	return r.store.inTx(ctx, func() error {
		return fn(matchTx{store: r.store})
	})
}

type matchTx struct {
	store *Store
}

func (tx matchTx) ClaimPending(ctx context.Context, id int64, approvedAt time.Time) (match.Match, bool, error) {
	if err := ctx.Err(); err != nil {
		return match.Match{}, false, err
	}

	m, ok := tx.store.matches[id]
	if !ok || m.IsApproved {
		return match.Match{}, false, nil
	}
	m.IsApproved = true
	m.ApprovedAt = &approvedAt
	tx.store.matches[id] = m

	return tx.store.withNames(m), true, nil
}

func (tx matchTx) RecordResult(ctx context.Context, playerID int64, won bool) (player.Stats, error) {
	if err := ctx.Err(); err != nil {
		return player.Stats{}, err
	}

	p, ok := tx.store.playerByID(playerID)
	if !ok {
		return player.Stats{}, fmt.Errorf("player %d does not exist", playerID)
	}
	if won {
		p.RecordWin()
	} else {
		p.RecordLoss()
	}

	return p.Stats(), nil
}

func (tx matchTx) SetWinRate(_ context.Context, playerID int64, rate float64) error {
	p, ok := tx.store.playerByID(playerID)
	if !ok {
		return fmt.Errorf("player %d does not exist", playerID)
	}
	p.WinRate = rate
	return nil
}
