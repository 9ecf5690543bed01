package sqlstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"github.com/riskibarqy/scutta-ladder/internal/platform/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ladder.db")
	require.NoError(t, migration.Up(migration.DriverSQLite, path))

	db, err := sqlx.Open("sqlite3", SQLiteDSN(path))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func registerPlayers(t *testing.T, repo *PlayerRepository, names ...string) []player.Player {
	t.Helper()

	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	out := make([]player.Player, 0, len(names))
	err := repo.InTx(ctx, func(tx player.Tx) error {
		for _, name := range names {
			p, created, err := tx.InsertIfAbsent(ctx, name, now)
			if err != nil {
				return err
			}
			require.True(t, created, name)
			out = append(out, p)
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestPlayerRepository_SQLite(t *testing.T) {
	db := openSQLite(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	players := registerPlayers(t, repo, "alice", "bob")
	assert.Less(t, players[0].ID, players[1].ID)

	got, found, err := repo.GetByName(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, players[0].ID, got.ID)
	assert.Zero(t, got.MatchCount)
	assert.Nil(t, got.Rank)

	_, found, err = repo.GetByName(ctx, "Alice")
	require.NoError(t, err)
	assert.False(t, found, "names are case sensitive")

	byID, found, err := repo.GetByID(ctx, players[1].ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "bob", byID.Name)

	err = repo.InTx(ctx, func(tx player.Tx) error {
		existing, created, err := tx.InsertIfAbsent(ctx, "alice", time.Now())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, players[0].ID, existing.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestPlayerRepository_SQLiteRollback(t *testing.T) {
	db := openSQLite(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	err := repo.InTx(ctx, func(tx player.Tx) error {
		_, _, err := tx.InsertIfAbsent(ctx, "carol", time.Now().UTC())
		require.NoError(t, err)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, found, err := repo.GetByName(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMatchRepository_SQLiteApprovalFlow(t *testing.T) {
	db := openSQLite(t)
	players := NewPlayerRepository(db)
	matches := NewMatchRepository(db)
	ctx := context.Background()

	registered := registerPlayers(t, players, "alice", "bob", "carol")
	alice, bob := registered[0], registered[1]
	submittedAt := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

	created, err := matches.Create(ctx, match.Match{WinnerID: alice.ID, LoserID: bob.ID, SetScore: "21-17", CreatedAt: submittedAt})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = matches.Create(ctx, match.Match{WinnerID: alice.ID, LoserID: alice.ID, SetScore: "21-0", CreatedAt: submittedAt})
	require.Error(t, err, "check constraint must reject self matches")

	pending, err := matches.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].WinnerName)
	assert.Equal(t, "bob", pending[0].LoserName)
	assert.True(t, pending[0].CreatedAt.Equal(submittedAt))

	approvedAt := submittedAt.Add(time.Hour)
	claim := func() (bool, error) {
		var claimed bool
		err := matches.InTx(ctx, func(tx match.Tx) error {
			m, ok, err := tx.ClaimPending(ctx, created.ID, approvedAt)
			if err != nil || !ok {
				return err
			}
			claimed = true
			winner, err := tx.RecordResult(ctx, m.WinnerID, true)
			if err != nil {
				return err
			}
			if err := tx.SetWinRate(ctx, m.WinnerID, winner.WinRate()); err != nil {
				return err
			}
			loser, err := tx.RecordResult(ctx, m.LoserID, false)
			if err != nil {
				return err
			}
			return tx.SetWinRate(ctx, m.LoserID, loser.WinRate())
		})
		return claimed, err
	}

	claimed, err := claim()
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = claim()
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must be a no-op")

	got, found, err := matches.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.IsApproved)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(approvedAt))

	winner, _, err := players.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, winner.WinCount)
	assert.Equal(t, 1, winner.MatchCount)
	assert.Equal(t, 1.0, winner.WinRate)

	loser, _, err := players.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loser.LossCount)
	assert.Equal(t, 0.0, loser.WinRate)

	top, err := players.Top(ctx, player.MetricLosses, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].Name)
	assert.Equal(t, "alice", top[1].Name, "ties break by registration order")

	pending, err = matches.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMatchRepository_SQLiteRecordResultUnknownPlayer(t *testing.T) {
	db := openSQLite(t)
	matches := NewMatchRepository(db)
	ctx := context.Background()

	err := matches.InTx(ctx, func(tx match.Tx) error {
		_, err := tx.RecordResult(ctx, 404, true)
		return err
	})
	require.Error(t, err)
}

func TestMatchRepository_SQLiteConcurrentClaims(t *testing.T) {
	db := openSQLite(t)
	players := NewPlayerRepository(db)
	matches := NewMatchRepository(db)
	ctx := context.Background()

	registered := registerPlayers(t, players, "alice", "bob")
	created, err := matches.Create(ctx, match.Match{WinnerID: registered[0].ID, LoserID: registered[1].ID, SetScore: "2-1", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		claims int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := matches.InTx(ctx, func(tx match.Tx) error {
				_, ok, err := tx.ClaimPending(ctx, created.ID, time.Now().UTC())
				if ok {
					mu.Lock()
					claims++
					mu.Unlock()
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, claims)
}
