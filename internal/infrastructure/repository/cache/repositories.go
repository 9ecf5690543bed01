package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	basecache "github.com/riskibarqy/scutta-ladder/internal/platform/cache"
)

// LeaderboardPrefix namespaces every cached leaderboard page.
const LeaderboardPrefix = "leaderboard:"

func leaderboardKey(metric player.Metric, limit int) string {
	return LeaderboardPrefix + string(metric) + ":" + strconv.Itoa(limit)
}

// PlayerRepository caches leaderboard reads. Lookups by name or id go to the
// underlying store so match submission always sees current players.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.ReadThrough
}

func NewPlayerRepository(next player.Repository, cache *basecache.ReadThrough) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByName(ctx context.Context, name string) (player.Player, bool, error) {
	return r.next.GetByName(ctx, name)
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *PlayerRepository) Top(ctx context.Context, metric player.Metric, limit int) ([]player.Player, error) {
	items, err := basecache.GetOrLoad(ctx, r.cache, leaderboardKey(metric, limit), func(ctx context.Context) ([]player.Player, error) {
		return r.next.Top(ctx, metric, limit)
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

// InTx invalidates leaderboards after a commit that created players, since
// short boards can gain zero-stat entries.
func (r *PlayerRepository) InTx(ctx context.Context, fn func(tx player.Tx) error) error {
	created := false
	err := r.next.InTx(ctx, func(tx player.Tx) error {
		return fn(trackingPlayerTx{next: tx, created: &created})
	})
	if err == nil && created {
		r.cache.Invalidate(ctx, LeaderboardPrefix)
	}
	return err
}

type trackingPlayerTx struct {
	next    player.Tx
	created *bool
}

func (t trackingPlayerTx) InsertIfAbsent(ctx context.Context, name string, createdAt time.Time) (player.Player, bool, error) {
	p, ok, err := t.next.InsertIfAbsent(ctx, name, createdAt)
	if ok {
		*t.created = true
	}
	return p, ok, err
}

// MatchRepository invalidates cached leaderboards once an approval commits.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.ReadThrough
}

func NewMatchRepository(next match.Repository, cache *basecache.ReadThrough) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) (match.Match, error) {
	return r.next.Create(ctx, m)
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *MatchRepository) ListPending(ctx context.Context, limit int) ([]match.Match, error) {
	return r.next.ListPending(ctx, limit)
}

func (r *MatchRepository) InTx(ctx context.Context, fn func(tx match.Tx) error) error {
	claimed := false
	err := r.next.InTx(ctx, func(tx match.Tx) error {
		return fn(trackingMatchTx{Tx: tx, claimed: &claimed})
	})
	if err == nil && claimed {
		r.cache.Invalidate(ctx, LeaderboardPrefix)
	}
	return err
}

type trackingMatchTx struct {
	match.Tx
	claimed *bool
}

func (t trackingMatchTx) ClaimPending(ctx context.Context, id int64, approvedAt time.Time) (match.Match, bool, error) {
	m, ok, err := t.Tx.ClaimPending(ctx, id, approvedAt)
	if ok {
		*t.claimed = true
	}
	return m, ok, err
}
