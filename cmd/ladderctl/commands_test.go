package main

import (
	"bytes"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DOTENV_PATH", filepath.Join(dir, "absent.env"))
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_LOG_LEVEL", "error")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_URL", filepath.Join(dir, "ladder.db"))
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("UPTRACE_ENABLED", "false")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestLadderctl_FullRound(t *testing.T) {
	setupSQLiteEnv(t)

	out, err := runCLI(t, "register", "alice", "bob", "alice")
	require.NoError(t, err)
	var registered registerOutput
	require.NoError(t, sonic.UnmarshalString(out, &registered))
	assert.Equal(t, []string{"alice", "bob"}, registered.Registered)

	out, err = runCLI(t, "submit", "--winner", "bob", "--loser", "alice", "--score", "3:1")
	require.NoError(t, err)
	var submitted matchView
	require.NoError(t, sonic.UnmarshalString(out, &submitted))
	assert.Equal(t, "pending", submitted.Status)
	assert.Equal(t, "bob", submitted.Winner)

	out, err = runCLI(t, "pending")
	require.NoError(t, err)
	var pending []matchView
	require.NoError(t, sonic.UnmarshalString(out, &pending))
	require.Len(t, pending, 1)

	id := strconv.FormatInt(submitted.ID, 10)
	out, err = runCLI(t, "approve", id, id)
	require.NoError(t, err)
	var approved approveView
	require.NoError(t, sonic.UnmarshalString(out, &approved))
	assert.Equal(t, 1, approved.Approved)

	out, err = runCLI(t, "approve", id)
	require.NoError(t, err)
	require.NoError(t, sonic.UnmarshalString(out, &approved))
	assert.Equal(t, 0, approved.Approved)
	assert.Equal(t, []int64{submitted.ID}, approved.SkippedIDs)

	out, err = runCLI(t, "leaderboard", "wins", "--limit", "1")
	require.NoError(t, err)
	var board []playerView
	require.NoError(t, sonic.UnmarshalString(out, &board))
	require.Len(t, board, 1)
	assert.Equal(t, "bob", board[0].Name)
	assert.Equal(t, 1, board[0].WinCount)
	assert.Equal(t, 1.0, board[0].WinRate)
}

func TestLadderctl_Errors(t *testing.T) {
	setupSQLiteEnv(t)

	_, err := runCLI(t, "approve", "abc")
	require.Error(t, err)

	_, err = runCLI(t, "leaderboard", "elo")
	require.Error(t, err)

	_, err = runCLI(t, "submit", "--winner", "ghost", "--loser", "nobody", "--score", "3:0")
	require.Error(t, err)

	_, err = runCLI(t, "register")
	require.Error(t, err)
}
