package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	qb "github.com/riskibarqy/scutta-ladder/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByName(ctx context.Context, name string) (player.Player, bool, error) {
	return getPlayer(ctx, r.db, qb.Eq("name", name))
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, bool, error) {
	return getPlayer(ctx, r.db, qb.Eq("id", id))
}

// Top orders by the category column, then by id so earlier registrations win ties.
func (r *PlayerRepository) Top(ctx context.Context, metric player.Metric, limit int) ([]player.Player, error) {
	column := metric.Column()
	if column == "" {
		return nil, errors.Wrapf(player.ErrUnknownMetric, "%q", metric)
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		OrderBy(column+" DESC", "id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build select top players query")
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrapf(err, "select top players by %s", metric)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PlayerRepository) InTx(ctx context.Context, fn func(tx player.Tx) error) error {
	return withTx(ctx, r.db, "register players", func(tx *sqlx.Tx) error {
		return fn(playerTx{tx: tx})
	})
}

type playerTx struct {
	tx *sqlx.Tx
}

// InsertIfAbsent relies on ON CONFLICT DO NOTHING, so a concurrent registration
// of the same name resolves to "already exists" instead of a unique violation.
func (t playerTx) InsertIfAbsent(ctx context.Context, name string, createdAt time.Time) (player.Player, bool, error) {
	builder, err := qb.InsertModel("players", playerInsertModel{Name: name, CreatedAt: createdAt})
	if err != nil {
		return player.Player{}, false, errors.Wrap(err, "build insert player model")
	}
	query, args, err := builder.OnConflictDoNothing("name").Returning("id").ToSQL()
	if err != nil {
		return player.Player{}, false, errors.Wrap(err, "build insert player query")
	}

	var id int64
	err = t.tx.QueryRowxContext(ctx, query, args...).Scan(&id)
	switch {
	case err == nil:
		return player.Player{ID: id, Name: name, CreatedAt: createdAt}, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, found, err := getPlayer(ctx, t.tx, qb.Eq("name", name))
		if err != nil {
			return player.Player{}, false, err
		}
		if !found {
			return player.Player{}, false, errors.Newf("player %q conflicted but was not found", name)
		}
		return existing, false, nil
	default:
		return player.Player{}, false, errors.Wrapf(err, "insert player %q", name)
	}
}

func getPlayer(ctx context.Context, q sqlx.QueryerContext, cond qb.Condition) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, errors.Wrap(err, "build select player query")
	}

	var row playerTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, errors.Wrap(err, "select player")
	}
	return row.toDomain(), true, nil
}
