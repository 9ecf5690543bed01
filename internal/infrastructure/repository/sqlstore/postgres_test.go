package sqlstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"github.com/riskibarqy/scutta-ladder/internal/platform/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:16.3-alpine"

func openPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("scutta"),
		postgres.WithUsername("scutta"),
		postgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	// the container is not configured for TLS
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migration.Up(migration.DriverPostgres, dsn))

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgres_ConcurrentApprovalsSharingAPlayer(t *testing.T) {
	db := openPostgres(t)
	players := NewPlayerRepository(db)
	matches := NewMatchRepository(db)
	ctx := context.Background()

	registered := registerPlayers(t, players, "alice", "bob", "carol")
	alice, bob, carol := registered[0], registered[1], registered[2]

	var ids []int64
	for i := 0; i < 10; i++ {
		m1, err := matches.Create(ctx, match.Match{WinnerID: alice.ID, LoserID: bob.ID, SetScore: "21-10", CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
		m2, err := matches.Create(ctx, match.Match{WinnerID: carol.ID, LoserID: alice.ID, SetScore: "21-12", CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
		ids = append(ids, m1.ID, m2.ID)
	}

	approve := func(id int64) error {
		return matches.InTx(ctx, func(tx match.Tx) error {
			m, ok, err := tx.ClaimPending(ctx, id, time.Now().UTC())
			if err != nil || !ok {
				return err
			}
			first, second := m.WinnerID, m.LoserID
			if second < first {
				first, second = second, first
			}
			for _, pid := range []int64{first, second} {
				stats, err := tx.RecordResult(ctx, pid, pid == m.WinnerID)
				if err != nil {
					return err
				}
				if err := tx.SetWinRate(ctx, pid, stats.WinRate()); err != nil {
					return err
				}
			}
			return nil
		})
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for attempt := 0; attempt < 2; attempt++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				assert.NoError(t, approve(id))
			}(id)
		}
	}
	wg.Wait()

	got, found, err := players.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 10, got.WinCount)
	assert.Equal(t, 10, got.LossCount)
	assert.Equal(t, 20, got.MatchCount)
	assert.InDelta(t, 0.5, got.WinRate, 1e-9)

	top, err := players.Top(ctx, player.MetricWins, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "alice", top[0].Name, "alice and carol tie on wins; alice registered first")
	assert.Equal(t, "carol", top[1].Name)
}

func TestPostgres_ConcurrentRegistrationOfSameName(t *testing.T) {
	db := openPostgres(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.InTx(ctx, func(tx player.Tx) error {
				_, ok, err := tx.InsertIfAbsent(ctx, "dana", time.Now().UTC())
				if ok {
					mu.Lock()
					created++
					mu.Unlock()
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
