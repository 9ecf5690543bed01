package usecase

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"github.com/riskibarqy/scutta-ladder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
)

type ladderFixture struct {
	players  *PlayerService
	matches  *MatchService
	recorder *countingRecorder
}

func newLadderFixture(t *testing.T, names ...string) ladderFixture {
	t.Helper()

	store := memory.NewStore()
	playerRepo := memory.NewPlayerRepository(store)
	matchRepo := memory.NewMatchRepository(store)
	recorder := &countingRecorder{}

	f := ladderFixture{
		players:  newTestPlayerService(playerRepo, recorder),
		matches:  NewMatchService(matchRepo, playerRepo, recorder, logging.NewNop()),
		recorder: recorder,
	}
	f.matches.now = func() time.Time { return time.Date(2026, 2, 12, 9, 30, 0, 0, time.UTC) }

	if len(names) > 0 {
		if _, err := f.players.Register(t.Context(), names); err != nil {
			t.Fatalf("register players: %v", err)
		}
	}
	return f
}

func (f ladderFixture) submit(t *testing.T, winner, loser string) match.Match {
	t.Helper()
	m, err := f.matches.Submit(t.Context(), SubmitMatchInput{Winner: winner, Loser: loser, SetScore: "21-15"})
	if err != nil {
		t.Fatalf("submit %s vs %s: %v", winner, loser, err)
	}
	return m
}

func (f ladderFixture) player(t *testing.T, name string) player.Player {
	t.Helper()
	p, err := f.players.FindByName(t.Context(), name)
	if err != nil {
		t.Fatalf("find %s: %v", name, err)
	}
	return p
}

func TestMatchService_Submit_CreatesPendingMatchWithoutTouchingStats(t *testing.T) {
	t.Parallel()

	f := newLadderFixture(t, "alice", "bob")
	m := f.submit(t, "alice", "bob")

	if m.ID == 0 || m.IsApproved || m.ApprovedAt != nil {
		t.Fatalf("expected pending match with id, got %+v", m)
	}
	if m.WinnerName != "alice" || m.LoserName != "bob" || m.SetScore != "21-15" {
		t.Fatalf("unexpected match: %+v", m)
	}
	if !m.CreatedAt.Equal(f.matches.now()) {
		t.Fatalf("unexpected created at: %v", m.CreatedAt)
	}
	if got := f.player(t, "alice"); got.MatchCount != 0 || got.WinCount != 0 {
		t.Fatalf("submission must not change stats: %+v", got)
	}
	if f.recorder.submitted != 1 {
		t.Fatalf("expected one submission recorded, got %d", f.recorder.submitted)
	}
}

func TestMatchService_Submit_Errors(t *testing.T) {
	t.Parallel()

	f := newLadderFixture(t, "alice", "bob")

	tests := []struct {
		name      string
		input     SubmitMatchInput
		targetErr error
	}{
		{name: "missing winner", input: SubmitMatchInput{Loser: "bob", SetScore: "21-3"}, targetErr: ErrInvalidInput},
		{name: "missing score", input: SubmitMatchInput{Winner: "alice", Loser: "bob"}, targetErr: ErrInvalidInput},
		{name: "score too long", input: SubmitMatchInput{Winner: "alice", Loser: "bob", SetScore: "21-3 21-4 21-5"}, targetErr: ErrInvalidInput},
		{name: "unknown winner", input: SubmitMatchInput{Winner: "zed", Loser: "bob", SetScore: "21-3"}, targetErr: ErrNotFound},
		{name: "unknown loser", input: SubmitMatchInput{Winner: "alice", Loser: "zed", SetScore: "21-3"}, targetErr: ErrNotFound},
		{name: "self match", input: SubmitMatchInput{Winner: "alice", Loser: "alice", SetScore: "21-3"}, targetErr: ErrConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.matches.Submit(t.Context(), tc.input)
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
		})
	}

	pending, err := f.matches.ListPending(t.Context(), 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("failed submissions must not create matches, got %d", len(pending))
	}
}

func TestMatchService_Approve_AppliesStatsOnce(t *testing.T) {
	t.Parallel()

	f := newLadderFixture(t, "alice", "bob")
	m := f.submit(t, "alice", "bob")

	result, err := f.matches.Approve(t.Context(), []int64{m.ID})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.Approved() != 1 {
		t.Fatalf("expected 1 approved, got %d", result.Approved())
	}

	alice := f.player(t, "alice")
	if alice.WinCount != 1 || alice.LossCount != 0 || alice.MatchCount != 1 || alice.WinRate != 1 {
		t.Fatalf("unexpected winner stats: %+v", alice)
	}
	bob := f.player(t, "bob")
	if bob.WinCount != 0 || bob.LossCount != 1 || bob.MatchCount != 1 || bob.WinRate != 0 {
		t.Fatalf("unexpected loser stats: %+v", bob)
	}

	again, err := f.matches.Approve(t.Context(), []int64{m.ID})
	if err != nil {
		t.Fatalf("approve again: %v", err)
	}
	if again.Approved() != 0 || len(again.SkippedIDs) != 1 {
		t.Fatalf("second approval must be a no-op: %+v", again)
	}
	if got := f.player(t, "alice"); got.MatchCount != 1 {
		t.Fatalf("stats applied twice: %+v", got)
	}

	approved, err := f.matches.Get(t.Context(), m.ID)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !approved.IsApproved || approved.ApprovedAt == nil {
		t.Fatalf("expected approved match: %+v", approved)
	}
}

func TestMatchService_Approve_SetSemantics(t *testing.T) {
	t.Parallel()

	f := newLadderFixture(t, "alice", "bob", "carol")
	m1 := f.submit(t, "alice", "bob")
	m2 := f.submit(t, "carol", "alice")

	empty, err := f.matches.Approve(t.Context(), nil)
	if err != nil || empty.Approved() != 0 {
		t.Fatalf("empty approval: result=%+v err=%v", empty, err)
	}

	result, err := f.matches.Approve(t.Context(), []int64{m2.ID, m1.ID, m1.ID, 9999})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.Approved() != 2 {
		t.Fatalf("expected 2 approved, got %+v", result)
	}
	if len(result.SkippedIDs) != 1 || result.SkippedIDs[0] != 9999 {
		t.Fatalf("unknown id must be skipped: %+v", result)
	}

	alice := f.player(t, "alice")
	if alice.WinCount != 1 || alice.LossCount != 1 || alice.MatchCount != 2 || alice.WinRate != 0.5 {
		t.Fatalf("unexpected alice stats: %+v", alice)
	}
	if f.recorder.approved != 2 {
		t.Fatalf("expected 2 approvals recorded, got %d", f.recorder.approved)
	}
}

func TestMatchService_Approve_ConcurrentSameMatchAppliesOnce(t *testing.T) {
	t.Parallel()

	f := newLadderFixture(t, "alice", "bob")
	m := f.submit(t, "alice", "bob")

	const workers = 16
	var wg sync.WaitGroup
	counts := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.matches.Approve(t.Context(), []int64{m.ID})
			if err != nil {
				t.Errorf("approve: %v", err)
				return
			}
			counts <- result.Approved()
		}()
	}
	wg.Wait()
	close(counts)

	total := 0
	for c := range counts {
		total += c
	}
	if total != 1 {
		t.Fatalf("expected exactly one approval, got %d", total)
	}
	if got := f.player(t, "bob"); got.LossCount != 1 || got.MatchCount != 1 {
		t.Fatalf("unexpected loser stats: %+v", got)
	}
}

func TestMatchService_Approve_ConcurrentSharedPlayerLosesNoUpdates(t *testing.T) {
	t.Parallel()

	f := newLadderFixture(t, "alice", "bob", "carol")
	ids := make([]int64, 0, 20)
	for i := 0; i < 10; i++ {
		ids = append(ids, f.submit(t, "alice", "bob").ID)
		ids = append(ids, f.submit(t, "carol", "alice").ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := f.matches.Approve(t.Context(), []int64{id}); err != nil {
				t.Errorf("approve %d: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	alice := f.player(t, "alice")
	if alice.WinCount != 10 || alice.LossCount != 10 || alice.MatchCount != 20 || alice.WinRate != 0.5 {
		t.Fatalf("lost updates on alice: %+v", alice)
	}
}

func TestMatchService_Approve_RandomSequencesKeepInvariants(t *testing.T) {
	t.Parallel()

	names := []string{"p1", "p2", "p3", "p4", "p5"}
	f := newLadderFixture(t, names...)
	rng := rand.New(rand.NewSource(7))

	var submitted []int64
	approved := 0
	for step := 0; step < 200; step++ {
		if rng.Intn(3) > 0 || len(submitted) == 0 {
			w := names[rng.Intn(len(names))]
			l := names[rng.Intn(len(names))]
			if w == l {
				continue
			}
			submitted = append(submitted, f.submit(t, w, l).ID)
			continue
		}

		batch := make([]int64, 0, 4)
		for i := 0; i < 1+rng.Intn(4); i++ {
			batch = append(batch, submitted[rng.Intn(len(submitted))])
		}
		result, err := f.matches.Approve(t.Context(), batch)
		if err != nil {
			t.Fatalf("approve %v: %v", batch, err)
		}
		approved += result.Approved()
	}

	wins, losses := 0, 0
	for _, name := range names {
		p := f.player(t, name)
		if p.WinCount+p.LossCount != p.MatchCount {
			t.Fatalf("%s: wins+losses != matches: %+v", name, p)
		}
		if p.WinRate != player.WinRate(p.WinCount, p.MatchCount) {
			t.Fatalf("%s: win rate drifted: %+v", name, p)
		}
		wins += p.WinCount
		losses += p.LossCount
	}
	if wins != approved || losses != approved {
		t.Fatalf("totals mismatch: wins=%d losses=%d approved=%d", wins, losses, approved)
	}

	pending, err := f.matches.ListPending(t.Context(), MaxPendingLimit)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != len(submitted)-approved {
		t.Fatalf("pending mismatch: got=%d want=%d", len(pending), len(submitted)-approved)
	}
}

func TestMatchService_Get_NotFound(t *testing.T) {
	t.Parallel()

	f := newLadderFixture(t)
	if _, err := f.matches.Get(t.Context(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.matches.ListPending(t.Context(), -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
