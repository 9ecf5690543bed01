package querybuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_PendingMatches(t *testing.T) {
	query, args, err := Select("m.id", "w.name AS winner_name").
		From("matches m").
		Join("players w", "w.id = m.winner_id").
		Where(Eq("m.is_approved", false), Eq("m.winner_id", int64(3))).
		OrderBy("m.id ASC").
		Limit(10).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT m.id, w.name AS winner_name FROM matches m JOIN players w ON w.id = m.winner_id WHERE m.is_approved = $1 AND m.winner_id = $2 ORDER BY m.id ASC LIMIT 10", query)
	assert.Equal(t, []any{false, int64(3)}, args)
}

func TestSelect_LeaderboardWithoutWhere(t *testing.T) {
	query, args, err := Select("id", "name").From("players").OrderBy("win_rate DESC", "id ASC").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM players ORDER BY win_rate DESC, id ASC", query)
	assert.Empty(t, args)

	_, _, err = Select().From("players").ToSQL()
	assert.Error(t, err)
}

func TestInsert_OnConflictReturning(t *testing.T) {
	query, args, err := InsertInto("players", []string{"name", "created_at"}, []any{"alice", "2026-01-01"}).
		OnConflictDoNothing("name").
		Returning("id").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO players (name, created_at) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING RETURNING id", query)
	assert.Equal(t, []any{"alice", "2026-01-01"}, args)

	_, _, err = InsertInto("players", []string{"name"}, nil).ToSQL()
	assert.Error(t, err)
}

func TestUpdate_IncrementCounters(t *testing.T) {
	query, args, err := Update("players").
		Increment("win_count").
		Increment("match_count").
		Set("win_rate", 0.5).
		Where(Eq("id", int64(7))).
		Returning("win_count", "match_count").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE players SET win_count = win_count + 1, match_count = match_count + 1, win_rate = $1 WHERE id = $2 RETURNING win_count, match_count", query)
	assert.Equal(t, []any{0.5, int64(7)}, args)

	_, _, err = Update("players").Set("win_rate", 0).ToSQL()
	assert.Error(t, err, "update without where must be rejected")
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID        int64     `db:"id,readonly"`
		WinnerID  int64     `db:"winner_id"`
		SetScore  string    `db:"set_score"`
		CreatedAt time.Time `db:"created_at"`
		note      string
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	builder, err := InsertModel("matches", &row{ID: 9, WinnerID: 1, SetScore: "21-3", CreatedAt: now, note: "x"})
	require.NoError(t, err)
	query, args, err := builder.Returning("id").ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO matches (winner_id, set_score, created_at) VALUES ($1, $2, $3) RETURNING id", query)
	assert.Equal(t, []any{int64(1), "21-3", now}, args)

	_, err = InsertModel("matches", 42)
	assert.Error(t, err)
}
