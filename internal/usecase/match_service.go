package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPendingLimit = 50
	MaxPendingLimit     = 500
)

type SubmitMatchInput struct {
	Winner   string
	Loser    string
	SetScore string
}

type ApproveResult struct {
	ApprovedIDs []int64
	SkippedIDs  []int64
}

// Approved is the number of matches that moved from pending to approved.
func (r ApproveResult) Approved() int {
	return len(r.ApprovedIDs)
}

type MatchService struct {
	matchRepo  match.Repository
	playerRepo player.Repository
	recorder   Recorder
	logger     *logging.Logger
	now        func() time.Time
}

func NewMatchService(matchRepo match.Repository, playerRepo player.Repository, recorder Recorder, logger *logging.Logger) *MatchService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit records a pending match. Player statistics are untouched until approval.
func (s *MatchService) Submit(ctx context.Context, input SubmitMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Submit")
	defer span.End()

	winnerName := strings.TrimSpace(input.Winner)
	loserName := strings.TrimSpace(input.Loser)
	setScore := strings.TrimSpace(input.SetScore)

	var missing []string
	if winnerName == "" {
		missing = append(missing, "winner")
	}
	if loserName == "" {
		missing = append(missing, "loser")
	}
	if setScore == "" {
		missing = append(missing, "set_score")
	}
	if len(missing) > 0 {
		return match.Match{}, errors.Wrapf(ErrInvalidInput, "missing required fields: %s", strings.Join(missing, ", "))
	}

	winner, err := s.resolvePlayer(ctx, winnerName)
	if err != nil {
		return match.Match{}, err
	}
	loser, err := s.resolvePlayer(ctx, loserName)
	if err != nil {
		return match.Match{}, err
	}

	item, err := match.New(winner.ID, loser.ID, setScore, s.now().UTC())
	if err != nil {
		if errors.Is(err, match.ErrSelfMatch) {
			s.logger.WarnContext(ctx, "reject self match", "player", winner.Name)
			return match.Match{}, errors.Mark(errors.Wrapf(err, "player=%s", winner.Name), ErrConflict)
		}
		return match.Match{}, errors.Mark(err, ErrInvalidInput)
	}

	created, err := s.matchRepo.Create(ctx, item)
	if err != nil {
		failSpan(span, err)
		s.logger.ErrorContext(ctx, "create match failed", "winner", winner.Name, "loser", loser.Name, "error", err)
		return match.Match{}, errors.Wrap(err, "create match")
	}
	created.WinnerName = winner.Name
	created.LoserName = loser.Name

	s.recorder.MatchSubmitted()
	s.logger.InfoContext(ctx, "match submitted",
		"match_id", created.ID,
		"winner", winner.Name,
		"loser", loser.Name,
	)

	return created, nil
}

// Approve applies every pending match in ids exactly once. Unknown and already
// approved ids are skipped. All effects commit together or not at all.
func (s *MatchService) Approve(ctx context.Context, ids []int64) (ApproveResult, error) {
	ids = match.NormalizeIDs(ids)
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Approve", attribute.Int("match.batch_size", len(ids)))
	defer span.End()

	if len(ids) == 0 {
		return ApproveResult{ApprovedIDs: []int64{}, SkippedIDs: []int64{}}, nil
	}

	now := s.now().UTC()
	var result ApproveResult
	err := s.matchRepo.InTx(ctx, func(tx match.Tx) error {
		result = ApproveResult{
			ApprovedIDs: make([]int64, 0, len(ids)),
			SkippedIDs:  make([]int64, 0),
		}
		claimed := make([]match.Match, 0, len(ids))
		for _, id := range ids {
			m, ok, err := tx.ClaimPending(ctx, id, now)
			if err != nil {
				return errors.Wrapf(err, "claim match %d", id)
			}
			if !ok {
				result.SkippedIDs = append(result.SkippedIDs, id)
				continue
			}
			claimed = append(claimed, m)
			result.ApprovedIDs = append(result.ApprovedIDs, id)
		}
		return applyResults(ctx, tx, claimed)
	})
	if err != nil {
		failSpan(span, err)
		s.logger.ErrorContext(ctx, "approve matches failed", "match_ids", ids, "error", err)
		return ApproveResult{}, errors.Wrap(err, "approve matches")
	}

	span.SetAttributes(attribute.Int("match.approved", result.Approved()))
	s.recorder.MatchesApproved(result.Approved())
	s.logger.InfoContext(ctx, "matches approved",
		"approved", result.Approved(),
		"skipped", len(result.SkippedIDs),
	)

	return result, nil
}

type playerResult struct {
	playerID int64
	matchID  int64
	won      bool
}

// applyResults updates every player touched by the batch in ascending id
// order, so concurrent approvals lock player rows in one global sequence.
// Each player's win rate is written once, after its last counter update.
func applyResults(ctx context.Context, tx match.Tx, claimed []match.Match) error {
	results := make([]playerResult, 0, 2*len(claimed))
	for _, m := range claimed {
		results = append(results,
			playerResult{playerID: m.WinnerID, matchID: m.ID, won: true},
			playerResult{playerID: m.LoserID, matchID: m.ID, won: false},
		)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].playerID < results[j].playerID })

	for i, r := range results {
		stats, err := tx.RecordResult(ctx, r.playerID, r.won)
		if err != nil {
			return errors.Wrapf(err, "apply match %d: record result for player %d", r.matchID, r.playerID)
		}
		if i+1 < len(results) && results[i+1].playerID == r.playerID {
			continue
		}
		if err := tx.SetWinRate(ctx, r.playerID, stats.WinRate()); err != nil {
			return errors.Wrapf(err, "set win rate for player %d", r.playerID)
		}
	}
	return nil
}

func (s *MatchService) Get(ctx context.Context, id int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get", attribute.Int64("match.id", id))
	defer span.End()

	if id <= 0 {
		return match.Match{}, errors.Wrapf(ErrNotFound, "match id=%d", id)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return match.Match{}, errors.Wrap(err, "get match by id")
	}
	if !exists {
		return match.Match{}, errors.Wrapf(ErrNotFound, "match id=%d", id)
	}

	return item, nil
}

// ListPending returns pending matches, oldest first.
func (s *MatchService) ListPending(ctx context.Context, limit int) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListPending")
	defer span.End()

	switch {
	case limit == 0:
		limit = DefaultPendingLimit
	case limit < 0 || limit > MaxPendingLimit:
		return nil, errors.Wrapf(ErrInvalidInput, "limit must be between 1 and %d", MaxPendingLimit)
	}

	items, err := s.matchRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list pending matches")
	}

	return items, nil
}

func (s *MatchService) resolvePlayer(ctx context.Context, name string) (player.Player, error) {
	item, exists, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return player.Player{}, errors.Wrapf(err, "get player %q", name)
	}
	if !exists {
		s.logger.WarnContext(ctx, "unknown player in match", "player", name)
		return player.Player{}, errors.Wrapf(ErrNotFound, "player=%s", name)
	}
	return item, nil
}
