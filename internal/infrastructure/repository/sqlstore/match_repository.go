package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	qb "github.com/riskibarqy/scutta-ladder/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) (match.Match, error) {
	builder, err := qb.InsertModel("matches", matchTableModel{
		WinnerID:  m.WinnerID,
		LoserID:   m.LoserID,
		SetScore:  m.SetScore,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return match.Match{}, errors.Wrap(err, "build insert match model")
	}
	query, args, err := builder.Returning("id").ToSQL()
	if err != nil {
		return match.Match{}, errors.Wrap(err, "build insert match query")
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&m.ID); err != nil {
		return match.Match{}, errors.Wrap(err, "insert match")
	}
	m.IsApproved = false
	m.ApprovedAt = nil
	return m, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := selectMatches().Where(qb.Eq("m.id", id)).Limit(1).ToSQL()
	if err != nil {
		return match.Match{}, false, errors.Wrap(err, "build select match query")
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, errors.Wrap(err, "select match")
	}
	return row.toDomain(), true, nil
}

func (r *MatchRepository) ListPending(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := selectMatches().
		Where(qb.Eq("m.is_approved", false)).
		OrderBy("m.id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build select pending matches query")
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "select pending matches")
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) InTx(ctx context.Context, fn func(tx match.Tx) error) error {
	return withTx(ctx, r.db, "approve matches", func(tx *sqlx.Tx) error {
		return fn(matchTx{tx: tx})
	})
}

func selectMatches() *qb.SelectBuilder {
	return qb.Select(matchSelectColumns...).
		From("matches m").
		Join("players w", "w.id = m.winner_id").
		Join("players l", "l.id = m.loser_id")
}

type matchTx struct {
	tx *sqlx.Tx
}

// ClaimPending is a compare-and-swap on is_approved: of two transactions
// claiming the same id, the second matches no row once the first commits.
func (t matchTx) ClaimPending(ctx context.Context, id int64, approvedAt time.Time) (match.Match, bool, error) {
	query, args, err := qb.Update("matches").
		Set("is_approved", true).
		Set("approved_at", approvedAt).
		Where(qb.Eq("id", id), qb.Eq("is_approved", false)).
		Returning("winner_id", "loser_id").
		ToSQL()
	if err != nil {
		return match.Match{}, false, errors.Wrap(err, "build claim match query")
	}

	out := match.Match{ID: id, IsApproved: true, ApprovedAt: &approvedAt}
	err = t.tx.QueryRowxContext(ctx, query, args...).Scan(&out.WinnerID, &out.LoserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, errors.Wrapf(err, "claim match %d", id)
	}
	return out, true, nil
}

// RecordResult increments in SQL so concurrent approvals sharing a player
// never overwrite each other's counters.
func (t matchTx) RecordResult(ctx context.Context, playerID int64, won bool) (player.Stats, error) {
	counter := "loss_count"
	if won {
		counter = "win_count"
	}

	query, args, err := qb.Update("players").
		Increment(counter).
		Increment("match_count").
		Where(qb.Eq("id", playerID)).
		Returning("win_count", "loss_count", "match_count").
		ToSQL()
	if err != nil {
		return player.Stats{}, errors.Wrap(err, "build record result query")
	}

	var row playerStatsModel
	if err := t.tx.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.Stats{}, errors.Newf("player %d does not exist", playerID)
		}
		return player.Stats{}, errors.Wrapf(err, "record result for player %d", playerID)
	}

	return player.Stats{WinCount: row.WinCount, LossCount: row.LossCount, MatchCount: row.MatchCount}, nil
}

func (t matchTx) SetWinRate(ctx context.Context, playerID int64, rate float64) error {
	query, args, err := qb.Update("players").
		Set("win_rate", rate).
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build set win rate query")
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "set win rate for player %d", playerID)
	}
	return nil
}
