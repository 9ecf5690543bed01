package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) GetByName(_ context.Context, name string) (player.Player, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.byName[name]
	if !ok {
		return player.Player{}, false, nil
	}
	p, _ := r.store.playerByID(id)
	return *p, true, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, id int64) (player.Player, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.playerByID(id)
	if !ok {
		return player.Player{}, false, nil
	}
	return *p, true, nil
}

func (r *PlayerRepository) Top(_ context.Context, metric player.Metric, limit int) ([]player.Player, error) {
	r.store.mu.RLock()
	out := append([]player.Player(nil), r.store.players...)
	r.store.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return metric.Less(out[i], out[j]) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PlayerRepository) InTx(ctx context.Context, fn func(tx player.Tx) error) error {
	return r.store.inTx(ctx, func() error {
		return fn(playerTx{store: r.store})
	})
}

// Seed inserts players with preset statistics. Names already present are skipped.
func (r *PlayerRepository) Seed(items ...player.Player) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, item := range items {
		if _, ok := r.store.byName[item.Name]; ok {
			continue
		}
		item.ID = int64(len(r.store.players) + 1)
		item.WinRate = player.WinRate(item.WinCount, item.MatchCount)
		r.store.players = append(r.store.players, item)
		r.store.byName[item.Name] = item.ID
	}
}

type playerTx struct {
	store *Store
}

func (tx playerTx) InsertIfAbsent(ctx context.Context, name string, createdAt time.Time) (player.Player, bool, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, false, err
	}
	if id, ok := tx.store.byName[name]; ok {
		p, _ := tx.store.playerByID(id)
		return *p, false, nil
	}

	p := player.Player{
		ID:        int64(len(tx.store.players) + 1),
		Name:      name,
		CreatedAt: createdAt,
	}
	tx.store.players = append(tx.store.players, p)
	tx.store.byName[name] = p.ID
	return p, true, nil
}
